package memory

import (
	"context"
	"time"

	"github.com/yndnr/timekeep-go/internal/core/domain"
	"github.com/yndnr/timekeep-go/pkg/cmap"
)

// Store is the in-memory implementation of the user, session and timer
// repositories. Values are cloned on the way in and out.
type Store struct {
	users     *cmap.Map[string, *domain.User]
	usernames *cmap.Map[string, string] // username -> user ID

	sessions *cmap.Map[string, *domain.Session] // token hash -> session

	timers      *cmap.Map[string, *domain.Timer]
	timerOwners *OwnerIndex
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		users:       cmap.New[string, *domain.User](),
		usernames:   cmap.New[string, string](),
		sessions:    cmap.New[string, *domain.Session](),
		timers:      cmap.New[string, *domain.Timer](),
		timerOwners: NewOwnerIndex(),
	}
}

// ============================================================================
// Users
// ============================================================================

// CreateUser stores a new user. The username index is claimed first so
// two concurrent signups with one name cannot both succeed.
func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	if !s.usernames.SetIfAbsent(user.Username, user.ID) {
		return domain.ErrUsernameTaken
	}
	if !s.users.SetIfAbsent(user.ID, user.Clone()) {
		s.usernames.Delete(user.Username)
		return domain.ErrUserValidation.WithDetails("user id conflict")
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	u, ok := s.users.Get(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

// GetUserByUsername retrieves a user by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	id, ok := s.usernames.Get(username)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return s.GetUser(ctx, id)
}

// ============================================================================
// Sessions
// ============================================================================

// CreateSession stores a new session.
func (s *Store) CreateSession(_ context.Context, session *domain.Session) error {
	if !s.sessions.SetIfAbsent(session.TokenHash, session.Clone()) {
		return domain.ErrSessionConflict
	}
	return nil
}

// GetSessionByTokenHash retrieves a session by token hash.
func (s *Store) GetSessionByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	session, ok := s.sessions.Get(tokenHash)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// DeleteSessionByTokenHash removes a session if present.
func (s *Store) DeleteSessionByTokenHash(_ context.Context, tokenHash string) error {
	s.sessions.Delete(tokenHash)
	return nil
}

// DeleteExpiredSessions removes all sessions expired at now.
func (s *Store) DeleteExpiredSessions(_ context.Context, now time.Time) (int, error) {
	return s.sessions.DeleteFunc(func(_ string, session *domain.Session) bool {
		return session.IsExpired(now)
	}), nil
}

// SessionCount returns the number of stored sessions.
func (s *Store) SessionCount() int {
	return s.sessions.Count()
}

// ============================================================================
// Timers
// ============================================================================

// CreateTimer stores a new timer.
func (s *Store) CreateTimer(_ context.Context, timer *domain.Timer) error {
	if !s.timers.SetIfAbsent(timer.ID, timer.Clone()) {
		return domain.ErrTimerConflict
	}
	s.timerOwners.Add(timer.UserID, timer.ID)
	return nil
}

// GetTimer retrieves a timer by ID.
func (s *Store) GetTimer(_ context.Context, id string) (*domain.Timer, error) {
	t, ok := s.timers.Get(id)
	if !ok {
		return nil, domain.ErrTimerNotFound
	}
	return t.Clone(), nil
}

// ListTimers returns the timers of userID in the requested state.
func (s *Store) ListTimers(_ context.Context, userID string, active bool) ([]*domain.Timer, error) {
	ids := s.timerOwners.Get(userID)
	result := make([]*domain.Timer, 0, len(ids))
	for _, id := range ids {
		t, ok := s.timers.Get(id)
		if !ok || t.IsActive != active {
			continue
		}
		result = append(result, t.Clone())
	}
	domain.SortTimers(result)
	return result, nil
}

// StopTimer stops the timer under its shard lock if it is still active.
// Stored timers are replaced, never mutated, so readers holding a
// previous value are unaffected.
func (s *Store) StopTimer(_ context.Context, id string, stoppedAt time.Time) (bool, error) {
	return s.timers.Compute(id, func(cur *domain.Timer, exists bool) (*domain.Timer, bool) {
		if !exists || !cur.IsActive {
			return cur, false
		}
		next := cur.Clone()
		next.Stop(stoppedAt)
		return next, true
	}), nil
}

// TimerCount returns the number of stored timers.
func (s *Store) TimerCount() int {
	return s.timers.Count()
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}
