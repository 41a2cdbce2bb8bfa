package domain

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/yndnr/timekeep-go/pkg/token"
)

// Password digest algorithms.
const (
	DigestSHA256   = "sha256"
	DigestArgon2id = "argon2id"
)

// Argon2id parameters used for new digests.
const (
	argon2Time    = 2
	argon2Memory  = 16 * 1024
	argon2Threads = 2
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

const sha256DigestPrefix = DigestSHA256 + "$"

// Digester turns passwords into one-way digests and checks them.
//
// Verify understands every supported format regardless of the algorithm
// the Digester was built for, so switching algorithms does not lock out
// existing users.
type Digester struct {
	algorithm string
}

// NewDigester returns a Digester for algorithm ("" selects sha256).
func NewDigester(algorithm string) (*Digester, error) {
	switch algorithm {
	case "", DigestSHA256:
		return &Digester{algorithm: DigestSHA256}, nil
	case DigestArgon2id:
		return &Digester{algorithm: DigestArgon2id}, nil
	default:
		return nil, ErrInvalidArgument.WithDetails("unknown password digest " + strconv.Quote(algorithm))
	}
}

// Algorithm returns the algorithm used for new digests.
func (d *Digester) Algorithm() string {
	return d.algorithm
}

// Digest computes the digest of password.
func (d *Digester) Digest(password string) (string, error) {
	if d.algorithm == DigestArgon2id {
		salt, err := token.Random(argon2SaltLen)
		if err != nil {
			return "", ErrInternalServer.WithCause(err)
		}
		key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
		return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
			argon2.Version, argon2Memory, argon2Time, argon2Threads,
			base64.RawStdEncoding.EncodeToString(salt),
			base64.RawStdEncoding.EncodeToString(key)), nil
	}
	return sha256DigestPrefix + token.Hash(password), nil
}

// Verify reports whether password matches digest. Comparison is constant-time.
func (d *Digester) Verify(password, digest string) bool {
	switch {
	case strings.HasPrefix(digest, "$argon2id$"):
		return verifyArgon2id(password, digest)
	case strings.HasPrefix(digest, sha256DigestPrefix):
		return token.Verify(password, digest[len(sha256DigestPrefix):])
	case isLegacyHexDigest(digest):
		return token.Verify(password, strings.ToLower(digest))
	default:
		return false
	}
}

// isLegacyHexDigest matches bare hex SHA-256 digests.
func isLegacyHexDigest(digest string) bool {
	if len(digest) != 64 {
		return false
	}
	_, err := hex.DecodeString(digest)
	return err == nil
}

// verifyArgon2id checks a PHC string: $argon2id$v=19$m=16384,t=2,p=2$<salt>$<key>
func verifyArgon2id(password, digest string) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != DigestArgon2id {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}
	if memory == 0 || time == 0 || threads == 0 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}
