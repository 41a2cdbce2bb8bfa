package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yndnr/timekeep-go/internal/core/domain"
)

var errBoom = errors.New("connection reset")

// mockStore implements all three repositories in memory for testing.
type mockStore struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	sessions map[string]*domain.Session // by token hash
	timers   map[string]*domain.Timer

	failNext      error // returned (once) by the next call
	failAfterStop error // armed as failNext once a stop commits
}

func newMockStore() *mockStore {
	return &mockStore{
		users:    make(map[string]*domain.User),
		sessions: make(map[string]*domain.Session),
		timers:   make(map[string]*domain.Timer),
	}
}

func (m *mockStore) fail() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *mockStore) CreateUser(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}
	m.users[user.ID] = user.Clone()
	return nil
}

func (m *mockStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (m *mockStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return nil, err
	}
	for _, u := range m.users {
		if u.Username == username {
			return u.Clone(), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockStore) CreateSession(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	if _, ok := m.sessions[session.TokenHash]; ok {
		return domain.ErrSessionConflict
	}
	m.sessions[session.TokenHash] = session.Clone()
	return nil
}

func (m *mockStore) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return nil, err
	}
	s, ok := m.sessions[tokenHash]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *mockStore) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	delete(m.sessions, tokenHash)
	return nil
}

func (m *mockStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for h, s := range m.sessions {
		if s.IsExpired(now) {
			delete(m.sessions, h)
			n++
		}
	}
	return n, nil
}

func (m *mockStore) CreateTimer(ctx context.Context, timer *domain.Timer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	if _, ok := m.timers[timer.ID]; ok {
		return domain.ErrTimerConflict
	}
	m.timers[timer.ID] = timer.Clone()
	return nil
}

func (m *mockStore) GetTimer(ctx context.Context, id string) (*domain.Timer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return nil, err
	}
	t, ok := m.timers[id]
	if !ok {
		return nil, domain.ErrTimerNotFound
	}
	return t.Clone(), nil
}

func (m *mockStore) ListTimers(ctx context.Context, userID string, active bool) ([]*domain.Timer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return nil, err
	}
	var out []*domain.Timer
	for _, t := range m.timers {
		if t.UserID == userID && t.IsActive == active {
			out = append(out, t.Clone())
		}
	}
	domain.SortTimers(out)
	return out, nil
}

func (m *mockStore) StopTimer(ctx context.Context, id string, stoppedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return false, err
	}
	t, ok := m.timers[id]
	if !ok || !t.Stop(stoppedAt) {
		return false, nil
	}
	m.failNext, m.failAfterStop = m.failAfterStop, nil
	return true, nil
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingObserver counts events.
type recordingObserver struct {
	mu       sync.Mutex
	sessions map[string]int
	failed   int
	started  int
	stopped  []time.Duration
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{sessions: make(map[string]int)}
}

func (o *recordingObserver) SessionCreated(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sessions[reason]++
}

func (o *recordingObserver) LoginFailed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed++
}

func (o *recordingObserver) TimerStarted() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started++
}

func (o *recordingObserver) TimerStopped(d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopped = append(o.stopped, d)
}
