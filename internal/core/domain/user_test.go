package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("alice", "sha256$abc")
	require.NoError(t, err)

	assert.True(t, IsValidUserID(u.ID))
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "sha256$abc", u.PasswordDigest)
	assert.False(t, u.CreatedAt.IsZero())
	assert.NoError(t, u.Validate())

	id := u.Identity()
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, "alice", id.Username)
}

func TestUser_Validate(t *testing.T) {
	u, err := NewUser("", "")
	require.NoError(t, err)

	err = u.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserValidation)
	assert.Contains(t, err.Error(), "username is required")
	assert.Contains(t, err.Error(), "password_digest is required")
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"simple", "alice", false},
		{"case kept", "Alice", false},
		{"unicode", "алиса", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"max length", strings.Repeat("a", MaxUsernameLength), false},
		{"too long", strings.Repeat("a", MaxUsernameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUserValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("pw1"))
	assert.ErrorIs(t, ValidatePassword(""), ErrUserValidation)
	assert.ErrorIs(t, ValidatePassword(strings.Repeat("x", MaxPasswordLength+1)), ErrUserValidation)
}

func TestUser_Clone(t *testing.T) {
	u, err := NewUser("alice", "sha256$abc")
	require.NoError(t, err)

	c := u.Clone()
	c.Username = "bob"
	assert.Equal(t, "alice", u.Username)
}
