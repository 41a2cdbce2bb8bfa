// Package storagetest holds repository conformance tests shared by every
// storage backend.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/timekeep-go/internal/core/domain"
	"github.com/yndnr/timekeep-go/internal/core/service"
)

// base is a fixed instant with millisecond precision so round trips
// through any backend compare equal.
var base = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

// RunUserTests exercises a UserRepository. newRepo must return an empty repository.
func RunUserTests(t *testing.T, newRepo func(t *testing.T) service.UserRepository) {
	t.Run("CreateAndGet", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		u := newUser(t, "alice")
		require.NoError(t, repo.CreateUser(ctx, u))

		got, err := repo.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, u.PasswordDigest, got.PasswordDigest)
		assert.True(t, u.CreatedAt.Equal(got.CreatedAt))

		byName, err := repo.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byName.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		_, err := repo.GetUser(ctx, "tkus-01arz3ndektsv4rrffq69g5fav")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		_, err = repo.GetUserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("UsernameTaken", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		require.NoError(t, repo.CreateUser(ctx, newUser(t, "alice")))
		assert.ErrorIs(t, repo.CreateUser(ctx, newUser(t, "alice")), domain.ErrUsernameTaken)

		// Case-sensitive.
		assert.NoError(t, repo.CreateUser(ctx, newUser(t, "ALICE")))
	})
}

// RunSessionTests exercises a SessionRepository.
func RunSessionTests(t *testing.T, newRepo func(t *testing.T) service.SessionRepository) {
	t.Run("CreateGetDelete", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		s := newSession(t, "tkus-01arz3ndektsv4rrffq69g5fav", time.Hour, time.Now())
		require.NoError(t, repo.CreateSession(ctx, s))

		got, err := repo.GetSessionByTokenHash(ctx, s.TokenHash)
		require.NoError(t, err)
		assert.Equal(t, s.ID, got.ID)
		assert.Equal(t, s.UserID, got.UserID)
		assert.Equal(t, s.ExpiresAt, got.ExpiresAt)

		require.NoError(t, repo.DeleteSessionByTokenHash(ctx, s.TokenHash))
		_, err = repo.GetSessionByTokenHash(ctx, s.TokenHash)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		// Idempotent.
		assert.NoError(t, repo.DeleteSessionByTokenHash(ctx, s.TokenHash))
	})

	t.Run("Conflict", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		s := newSession(t, "u1", 0, time.Now())
		require.NoError(t, repo.CreateSession(ctx, s))

		dup := s.Clone()
		dup.ID = newSession(t, "u1", 0, time.Now()).ID
		assert.ErrorIs(t, repo.CreateSession(ctx, dup), domain.ErrSessionConflict)
	})

	t.Run("DeleteExpired", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		now := time.Now()

		expired := newSession(t, "u1", time.Minute, now.Add(-time.Hour))
		live := newSession(t, "u1", time.Hour, now)
		forever := newSession(t, "u1", 0, now.Add(-24*time.Hour))
		for _, s := range []*domain.Session{expired, live, forever} {
			require.NoError(t, repo.CreateSession(ctx, s))
		}

		n, err := repo.DeleteExpiredSessions(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = repo.GetSessionByTokenHash(ctx, expired.TokenHash)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
		_, err = repo.GetSessionByTokenHash(ctx, live.TokenHash)
		assert.NoError(t, err)
		_, err = repo.GetSessionByTokenHash(ctx, forever.TokenHash)
		assert.NoError(t, err)
	})
}

// RunTimerTests exercises a TimerRepository.
func RunTimerTests(t *testing.T, newRepo func(t *testing.T) service.TimerRepository) {
	const alice, bob = "tkus-01arz3ndektsv4rrffq69g5fav", "tkus-01arz3ndektsv4rrffq69g5faw"

	t.Run("CreateAndGet", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		tm := newTimer(t, alice, "write report", base)
		require.NoError(t, repo.CreateTimer(ctx, tm))

		got, err := repo.GetTimer(ctx, tm.ID)
		require.NoError(t, err)
		assert.Equal(t, tm.ID, got.ID)
		assert.Equal(t, alice, got.UserID)
		assert.Equal(t, "write report", got.Description)
		assert.True(t, base.Equal(got.StartedAt))
		assert.True(t, got.IsActive)
		assert.Nil(t, got.StoppedAt)
		assert.Nil(t, got.Duration)

		assert.ErrorIs(t, repo.CreateTimer(ctx, tm), domain.ErrTimerConflict)
	})

	t.Run("NotFound", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		_, err := repo.GetTimer(ctx, "tktm-01arz3ndektsv4rrffq69g5fav")
		assert.ErrorIs(t, err, domain.ErrTimerNotFound)

		ok, err := repo.StopTimer(ctx, "tktm-01arz3ndektsv4rrffq69g5fav", base)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("StopOnce", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		tm := newTimer(t, alice, "task", base)
		require.NoError(t, repo.CreateTimer(ctx, tm))

		ok, err := repo.StopTimer(ctx, tm.ID, base.Add(90*time.Second))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.StopTimer(ctx, tm.ID, base.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := repo.GetTimer(ctx, tm.ID)
		require.NoError(t, err)
		assert.False(t, got.IsActive)
		require.NotNil(t, got.StoppedAt)
		require.NotNil(t, got.Duration)
		assert.True(t, base.Add(90*time.Second).Equal(*got.StoppedAt))
		assert.Equal(t, 90*time.Second, *got.Duration)
	})

	t.Run("ConcurrentStop", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		tm := newTimer(t, alice, "task", base)
		require.NoError(t, repo.CreateTimer(ctx, tm))

		const n = 8
		results := make([]bool, n)
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = repo.StopTimer(ctx, tm.ID, base.Add(time.Duration(i+1)*time.Second))
			}(i)
		}
		wg.Wait()

		wins := 0
		for i := range results {
			require.NoError(t, errs[i])
			if results[i] {
				wins++
			}
		}
		assert.Equal(t, 1, wins)
	})

	t.Run("ListFiltersAndOrders", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		first := newTimer(t, alice, "first", base)
		second := newTimer(t, alice, "second", base.Add(time.Minute))
		third := newTimer(t, alice, "third", base.Add(2*time.Minute))
		other := newTimer(t, bob, "other", base)
		for _, tm := range []*domain.Timer{third, first, other, second} {
			require.NoError(t, repo.CreateTimer(ctx, tm))
		}

		ok, err := repo.StopTimer(ctx, second.ID, base.Add(5*time.Minute))
		require.NoError(t, err)
		require.True(t, ok)

		active, err := repo.ListTimers(ctx, alice, true)
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, first.ID, active[0].ID)
		assert.Equal(t, third.ID, active[1].ID)
		for _, tm := range active {
			assert.Nil(t, tm.Duration)
		}

		stopped, err := repo.ListTimers(ctx, alice, false)
		require.NoError(t, err)
		require.Len(t, stopped, 1)
		assert.Equal(t, second.ID, stopped[0].ID)
		require.NotNil(t, stopped[0].Duration)
		assert.Equal(t, 4*time.Minute, *stopped[0].Duration)

		none, err := repo.ListTimers(ctx, "tkus-01arz3ndektsv4rrffq69g5fax", true)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func newUser(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(username, "sha256$"+username)
	require.NoError(t, err)
	u.CreatedAt = u.CreatedAt.Truncate(time.Millisecond)
	return u
}

func newSession(t *testing.T, userID string, ttl time.Duration, now time.Time) *domain.Session {
	t.Helper()
	_, hash, err := domain.GenerateToken()
	require.NoError(t, err)
	s, err := domain.NewSession(userID, hash, ttl, now)
	require.NoError(t, err)
	return s
}

func newTimer(t *testing.T, userID, description string, startedAt time.Time) *domain.Timer {
	t.Helper()
	tm, err := domain.NewTimer(userID, description, startedAt)
	require.NoError(t, err)
	return tm
}
