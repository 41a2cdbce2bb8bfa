package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// User constraints.
const (
	MaxUsernameLength = 64
	MaxPasswordLength = 256
)

// User is an account that owns sessions and timers.
// Users are immutable after signup.
type User struct {
	// ID is the unique identifier. Format: tkus-{ulid_lowercase}.
	ID string `json:"id"`

	// Username is unique and case-sensitive.
	Username string `json:"username"`

	// PasswordDigest is the one-way digest of the password (see Digester).
	PasswordDigest string `json:"password_digest"`

	// CreatedAt is the signup time.
	CreatedAt time.Time `json:"created_at"`
}

// NewUser creates a User with a generated ID.
func NewUser(username, passwordDigest string) (*User, error) {
	now := time.Now().UTC()
	id, err := newID(UserIDPrefix, now)
	if err != nil {
		return nil, err
	}
	return &User{
		ID:             id,
		Username:       username,
		PasswordDigest: passwordDigest,
		CreatedAt:      now,
	}, nil
}

// Identity returns the public identity of the user.
func (u *User) Identity() *Identity {
	return &Identity{UserID: u.ID, Username: u.Username}
}

// Clone returns a copy of the user.
func (u *User) Clone() *User {
	c := *u
	return &c
}

// Validate validates the stored user record.
func (u *User) Validate() error {
	var violations []string
	if u.ID == "" {
		violations = append(violations, "id is required")
	}
	if err := ValidateUsername(u.Username); err != nil {
		violations = append(violations, err.(*DomainError).Details)
	}
	if u.PasswordDigest == "" {
		violations = append(violations, "password_digest is required")
	}
	if len(violations) > 0 {
		return ErrUserValidation.WithDetails(strings.Join(violations, "; "))
	}
	return nil
}

// ValidateUsername checks the signup constraints for a username.
func ValidateUsername(username string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return ErrUserValidation.WithDetails("username is required")
	case utf8.RuneCountInString(username) > MaxUsernameLength:
		return ErrUserValidation.WithDetails("username exceeds 64 characters")
	}
	return nil
}

// ValidatePassword checks the signup constraints for a password.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return ErrUserValidation.WithDetails("password is required")
	case len(password) > MaxPasswordLength:
		return ErrUserValidation.WithDetails("password exceeds 256 bytes")
	}
	return nil
}

// Identity is the authenticated caller as resolved by the auth gate.
// A nil *Identity means the caller is anonymous.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}
