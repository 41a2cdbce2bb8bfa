package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID prefixes. Every identifier is prefix + lowercase ULID (31 characters).
const (
	UserIDPrefix    = "tkus-"
	SessionIDPrefix = "tkss-"
	TimerIDPrefix   = "tktm-"

	idLength = 5 + ulid.EncodedSize
)

// entropy is shared so IDs generated within the same millisecond still sort
// in creation order.
var entropy = &ulid.LockedMonotonicReader{MonotonicReader: ulid.Monotonic(rand.Reader, 0)}

// newID generates a prefixed ULID at the given time.
func newID(prefix string, at time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(at), entropy)
	if err != nil {
		return "", ErrInternalServer.WithCause(err)
	}
	return prefix + strings.ToLower(id.String()), nil
}

// isValidID checks prefix, length and ULID body.
func isValidID(prefix, id string) bool {
	if len(id) != idLength || !strings.HasPrefix(id, prefix) {
		return false
	}
	_, err := ulid.ParseStrict(strings.ToUpper(id[len(prefix):]))
	return err == nil
}

// IsValidUserID reports whether id looks like a user ID.
func IsValidUserID(id string) bool { return isValidID(UserIDPrefix, id) }

// IsValidSessionID reports whether id looks like a session ID.
func IsValidSessionID(id string) bool { return isValidID(SessionIDPrefix, id) }

// IsValidTimerID reports whether id looks like a timer ID.
func IsValidTimerID(id string) bool { return isValidID(TimerIDPrefix, id) }
