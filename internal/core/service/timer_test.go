package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/timekeep-go/internal/core/domain"
)

var (
	alice = &domain.Identity{UserID: "tkus-01arz3ndektsv4rrffq69g5fav", Username: "alice"}
	bob   = &domain.Identity{UserID: "tkus-01arz3ndektsv4rrffq69g5faw", Username: "bob"}
)

func newTestTimers(t *testing.T, enforce bool) (*TimerService, *mockStore, *fakeClock, *recordingObserver) {
	t.Helper()
	store := newMockStore()
	clock := newFakeClock()
	obs := newRecordingObserver()
	svc := NewTimerService(store, &TimerServiceConfig{
		EnforceOwnership: enforce,
		Observer:         obs,
		Now:              clock.Now,
	})
	return svc, store, clock, obs
}

func TestTimerService_RequiresIdentity(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestTimers(t, true)

	_, err := svc.Start(ctx, nil, "task")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Stop(ctx, nil, "tktm-01arz3ndektsv4rrffq69g5fav")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.List(ctx, nil, true)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Get(ctx, nil, "tktm-01arz3ndektsv4rrffq69g5fav")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTimerService_Start(t *testing.T) {
	ctx := context.Background()
	svc, store, clock, obs := newTestTimers(t, true)

	tm, err := svc.Start(ctx, alice, "write spec")
	require.NoError(t, err)

	assert.True(t, domain.IsValidTimerID(tm.ID))
	assert.Equal(t, alice.UserID, tm.UserID)
	assert.Equal(t, clock.Now(), tm.StartedAt)
	assert.True(t, tm.IsActive)
	assert.Contains(t, store.timers, tm.ID)
	assert.Equal(t, 1, obs.started)
}

func TestTimerService_StartEmptyDescription(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newTestTimers(t, true)

	_, err := svc.Start(ctx, alice, "   ")
	assert.ErrorIs(t, err, domain.ErrTimerValidation)
	assert.Empty(t, store.timers)
}

func TestTimerService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, clock, obs := newTestTimers(t, true)

	tm, err := svc.Start(ctx, alice, "write spec")
	require.NoError(t, err)

	// Progress increases across queries.
	clock.Advance(10 * time.Second)
	active, err := svc.List(ctx, alice, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.NotNil(t, active[0].Progress)
	assert.Nil(t, active[0].Duration)
	first := *active[0].Progress
	assert.Equal(t, 10*time.Second, first)

	clock.Advance(5 * time.Second)
	active, err = svc.List(ctx, alice, true)
	require.NoError(t, err)
	assert.Greater(t, *active[0].Progress, first)
	last := *active[0].Progress

	// Stop freezes the duration.
	clock.Advance(time.Second)
	stopped, err := svc.Stop(ctx, alice, tm.ID)
	require.NoError(t, err)
	require.NotNil(t, stopped.Duration)
	assert.False(t, stopped.IsActive)
	assert.GreaterOrEqual(t, *stopped.Duration, last)
	assert.Equal(t, []time.Duration{16 * time.Second}, obs.stopped)

	clock.Advance(time.Hour)
	got, err := svc.Get(ctx, alice, tm.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Progress)
	assert.Equal(t, 16*time.Second, *got.Duration)
	assert.Equal(t, 16*time.Second, got.Elapsed())

	active, err = svc.List(ctx, alice, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	old, err := svc.List(ctx, alice, false)
	require.NoError(t, err)
	require.Len(t, old, 1)
	assert.NotNil(t, old[0].Duration)
}

func TestTimerService_StopTwice(t *testing.T) {
	ctx := context.Background()
	svc, _, clock, _ := newTestTimers(t, true)

	tm, err := svc.Start(ctx, alice, "task")
	require.NoError(t, err)

	clock.Advance(time.Minute)
	_, err = svc.Stop(ctx, alice, tm.ID)
	require.NoError(t, err)

	clock.Advance(time.Minute)
	_, err = svc.Stop(ctx, alice, tm.ID)
	assert.ErrorIs(t, err, domain.ErrTimerNotModified)

	got, err := svc.Get(ctx, alice, tm.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, *got.Duration)
}

func TestTimerService_StopDoesNotDependOnReadBack(t *testing.T) {
	ctx := context.Background()
	svc, store, clock, obs := newTestTimers(t, true)

	tm, err := svc.Start(ctx, alice, "task")
	require.NoError(t, err)

	clock.Advance(90 * time.Second)
	store.failAfterStop = errBoom
	stopped, err := svc.Stop(ctx, alice, tm.ID)
	require.NoError(t, err)
	assert.False(t, stopped.IsActive)
	require.NotNil(t, stopped.Duration)
	assert.Equal(t, 90*time.Second, *stopped.Duration)
	assert.Equal(t, []time.Duration{90 * time.Second}, obs.stopped)

	// The response matches what was stored.
	store.failNext = nil
	got, err := svc.Get(ctx, alice, tm.ID)
	require.NoError(t, err)
	assert.Equal(t, stopped.Duration, got.Duration)
	assert.Equal(t, stopped.StoppedAt, got.StoppedAt)
}

func TestTimerService_ConcurrentStop(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestTimers(t, true)

	tm, err := svc.Start(ctx, alice, "task")
	require.NoError(t, err)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Stop(ctx, alice, tm.ID)
		}(i)
	}
	wg.Wait()

	var ok, notModified int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case domain.IsDomainError(err, domain.ErrTimerNotModified.Code):
			notModified++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, notModified)
}

func TestTimerService_StopUnknown(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestTimers(t, true)

	_, err := svc.Stop(ctx, alice, "tktm-01arz3ndektsv4rrffq69g5fav")
	assert.ErrorIs(t, err, domain.ErrTimerNotFound)

	_, err = svc.Stop(ctx, alice, "not-an-id")
	assert.ErrorIs(t, err, domain.ErrTimerNotFound)

	_, err = svc.Stop(ctx, alice, "")
	assert.ErrorIs(t, err, domain.ErrMissingArgument)
}

func TestTimerService_Ownership(t *testing.T) {
	ctx := context.Background()

	t.Run("enforced", func(t *testing.T) {
		svc, _, _, _ := newTestTimers(t, true)
		tm, err := svc.Start(ctx, alice, "task")
		require.NoError(t, err)

		_, err = svc.Stop(ctx, bob, tm.ID)
		assert.ErrorIs(t, err, domain.ErrTimerNotFound)

		_, err = svc.Get(ctx, bob, tm.ID)
		assert.ErrorIs(t, err, domain.ErrTimerNotFound)

		list, err := svc.List(ctx, bob, true)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("permissive stop", func(t *testing.T) {
		svc, _, _, _ := newTestTimers(t, false)
		tm, err := svc.Start(ctx, alice, "task")
		require.NoError(t, err)

		_, err = svc.Stop(ctx, bob, tm.ID)
		assert.NoError(t, err)

		// Reads stay owner-scoped.
		_, err = svc.Get(ctx, bob, tm.ID)
		assert.ErrorIs(t, err, domain.ErrTimerNotFound)
	})
}

func TestTimerService_ListOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, clock, _ := newTestTimers(t, true)

	var ids []string
	for _, d := range []string{"one", "two", "three"} {
		tm, err := svc.Start(ctx, alice, d)
		require.NoError(t, err)
		ids = append(ids, tm.ID)
		clock.Advance(time.Second)
	}

	list, err := svc.List(ctx, alice, true)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, ts := range list {
		assert.Equal(t, ids[i], ts.ID)
	}
}

func TestTimerService_StorageError(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newTestTimers(t, true)

	store.failNext = errBoom
	_, err := svc.Start(ctx, alice, "task")
	assert.ErrorIs(t, err, domain.ErrStorageError)

	store.failNext = errBoom
	_, err = svc.List(ctx, alice, true)
	assert.ErrorIs(t, err, domain.ErrStorageError)
}
