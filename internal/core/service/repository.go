package service

import (
	"context"
	"errors"
	"time"

	"github.com/yndnr/timekeep-go/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// CreateUser stores a new user.
	// Returns domain.ErrUsernameTaken if the username already exists.
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUser retrieves a user by ID. Returns domain.ErrUserNotFound.
	GetUser(ctx context.Context, id string) (*domain.User, error)

	// GetUserByUsername retrieves a user by exact username. Returns domain.ErrUserNotFound.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// SessionRepository is the session store. Sessions are keyed by token hash.
type SessionRepository interface {
	// CreateSession stores a new session.
	// Returns domain.ErrSessionConflict if the ID or token hash exists.
	CreateSession(ctx context.Context, session *domain.Session) error

	// GetSessionByTokenHash retrieves a session. Returns domain.ErrSessionNotFound.
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)

	// DeleteSessionByTokenHash removes a session. Deleting a missing session is not an error.
	DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error

	// DeleteExpiredSessions removes sessions expired at now and returns the count.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)
}

// TimerRepository is the timer store.
type TimerRepository interface {
	// CreateTimer stores a new active timer.
	// Returns domain.ErrTimerConflict if the ID exists.
	CreateTimer(ctx context.Context, timer *domain.Timer) error

	// GetTimer retrieves a timer by ID. Returns domain.ErrTimerNotFound.
	GetTimer(ctx context.Context, id string) (*domain.Timer, error)

	// ListTimers returns the timers of userID with IsActive == active,
	// ordered by StartedAt then ID.
	ListTimers(ctx context.Context, userID string, active bool) ([]*domain.Timer, error)

	// StopTimer atomically stops the timer if it is still active, setting
	// StoppedAt and freezing Duration. Returns false if no record changed
	// (missing, already stopped, or lost a concurrent stop).
	StopTimer(ctx context.Context, id string, stoppedAt time.Time) (bool, error)
}

// Observer receives domain events, typically to update metrics.
type Observer interface {
	SessionCreated(reason string)
	LoginFailed()
	TimerStarted()
	TimerStopped(duration time.Duration)
}

// Session creation reasons reported to Observer.
const (
	ReasonLogin  = "login"
	ReasonSignup = "signup"
)

type nopObserver struct{}

func (nopObserver) SessionCreated(string)      {}
func (nopObserver) LoginFailed()               {}
func (nopObserver) TimerStarted()              {}
func (nopObserver) TimerStopped(time.Duration) {}

// storageError wraps a repository failure. Domain errors pass through so
// callers can still match not-found and conflict codes.
func storageError(err error) error {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}
	return domain.ErrStorageError.WithCause(err)
}
