package domain

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/yndnr/timekeep-go/pkg/token"
)

// Token constants.
const (
	// TokenPrefix is the prefix for session tokens.
	TokenPrefix = "tkst_"

	// TokenHashPrefix is the prefix for token hashes.
	TokenHashPrefix = "tkth_"

	// TokenBodyLength is the Base64 RawURL encoded length (32 bytes -> 43 chars).
	TokenBodyLength = 43

	// TokenLength is the total token length (prefix + body).
	TokenLength = 5 + TokenBodyLength

	// TokenHashLength is the total token hash length (prefix + hex SHA-256).
	TokenHashLength = 5 + 64
)

// GenerateToken generates a session token.
// Returns the plaintext token (tkst_...) and its hash (tkth_...).
//
// The plaintext is handed to the client once, in the login or signup
// response. Never store or log it.
func GenerateToken() (plaintext string, hash string, err error) {
	body, err := token.Generate()
	if err != nil {
		return "", "", ErrInternalServer.WithCause(err)
	}
	plaintext = TokenPrefix + body
	return plaintext, HashToken(plaintext), nil
}

// HashToken computes the SHA-256 hash of a token.
// Returns the hash in format: tkth_{hex_sha256}.
func HashToken(plaintext string) string {
	return TokenHashPrefix + token.Hash(plaintext)
}

// ValidateTokenFormat checks if a string has the session token format.
func ValidateTokenFormat(tok string) bool {
	if len(tok) != TokenLength || !strings.HasPrefix(tok, TokenPrefix) {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(tok[len(TokenPrefix):])
	return err == nil
}

// ValidateTokenHashFormat checks if a string has the token hash format.
func ValidateTokenHashFormat(hash string) bool {
	if len(hash) != TokenHashLength || !strings.HasPrefix(hash, TokenHashPrefix) {
		return false
	}
	_, err := hex.DecodeString(hash[len(TokenHashPrefix):])
	return err == nil
}

// MaskToken masks a token for safe logging.
// Example: tkst_ABC...xyz
func MaskToken(tok string) string {
	if !strings.HasPrefix(tok, TokenPrefix) {
		return "***REDACTED***"
	}
	body := tok[len(TokenPrefix):]
	if len(body) <= 6 {
		return TokenPrefix + "***"
	}
	return TokenPrefix + body[:3] + "..." + body[len(body)-3:]
}
