package domain

import (
	"strings"
	"time"
)

// Session represents an authenticated login of a user.
//
// The plaintext token is never stored; a session is found by the hash of
// the token presented in X-SessionId. A user may hold any number of
// sessions at once.
type Session struct {
	// ID is the unique identifier for the session.
	// Format: tkss-{ulid_lowercase}, 31 characters total.
	ID string `json:"id"`

	// UserID identifies the user who owns this session.
	UserID string `json:"user_id"`

	// TokenHash is the SHA-256 hash of the session token.
	// Format: tkth_{hex_sha256}, 69 characters total.
	TokenHash string `json:"token_hash"`

	// CreatedAt is the session creation timestamp (Unix milliseconds).
	CreatedAt int64 `json:"created_at"`

	// ExpiresAt is the absolute expiration timestamp (Unix milliseconds).
	// Zero means the session never expires.
	ExpiresAt int64 `json:"expires_at"`
}

// NewSession creates a Session for userID bound to tokenHash.
// A non-positive ttl produces a session that never expires.
func NewSession(userID, tokenHash string, ttl time.Duration, now time.Time) (*Session, error) {
	id, err := newID(SessionIDPrefix, now)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		CreatedAt: now.UnixMilli(),
	}
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl).UnixMilli()
	}
	return s, nil
}

// IsExpired reports whether the session has expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return now.UnixMilli() >= s.ExpiresAt
}

// TTL returns the remaining lifetime at now.
// Returns 0 if expired or if the session never expires.
func (s *Session) TTL(now time.Time) time.Duration {
	if s.ExpiresAt == 0 {
		return 0
	}
	remaining := s.ExpiresAt - now.UnixMilli()
	if remaining < 0 {
		return 0
	}
	return time.Duration(remaining) * time.Millisecond
}

// Validate validates the session fields.
// Returns a DomainError with code TK-SESS-4001 if validation fails.
func (s *Session) Validate() error {
	var violations []string

	if !IsValidSessionID(s.ID) {
		violations = append(violations, "id is malformed")
	}
	if s.UserID == "" {
		violations = append(violations, "user_id is required")
	}
	if !ValidateTokenHashFormat(s.TokenHash) {
		violations = append(violations, "token_hash is malformed")
	}
	if s.ExpiresAt != 0 && s.ExpiresAt < s.CreatedAt {
		violations = append(violations, "expires_at precedes created_at")
	}

	if len(violations) > 0 {
		return ErrSessionValidation.WithDetails(strings.Join(violations, "; "))
	}
	return nil
}

// Clone returns a copy of the session.
func (s *Session) Clone() *Session {
	clone := *s
	return &clone
}
