package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func TestNewTimer(t *testing.T) {
	tm, err := NewTimer("tkus-01arz3ndektsv4rrffq69g5fav", "  write report  ", t0)
	require.NoError(t, err)

	assert.True(t, IsValidTimerID(tm.ID))
	assert.Equal(t, "write report", tm.Description)
	assert.Equal(t, t0, tm.StartedAt)
	assert.True(t, tm.IsActive)
	assert.Nil(t, tm.StoppedAt)
	assert.Nil(t, tm.Duration)
	assert.NoError(t, tm.Validate())
}

func TestNewTimer_RejectsEmptyDescription(t *testing.T) {
	for _, d := range []string{"", "   ", "\t\n"} {
		_, err := NewTimer("u", d, t0)
		assert.ErrorIs(t, err, ErrTimerValidation)
	}

	_, err := NewTimer("u", strings.Repeat("ж", MaxDescriptionLength+1), t0)
	assert.ErrorIs(t, err, ErrTimerValidation)

	_, err = NewTimer("u", strings.Repeat("ж", MaxDescriptionLength), t0)
	assert.NoError(t, err)
}

func TestTimer_Progress(t *testing.T) {
	tm, err := NewTimer("u", "task", t0)
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, tm.Progress(t0.Add(90*time.Second)))
	assert.Zero(t, tm.Progress(t0.Add(-time.Second)))

	// Strictly increasing across queries.
	p1 := tm.Progress(t0.Add(time.Second))
	p2 := tm.Progress(t0.Add(2 * time.Second))
	assert.Greater(t, p2, p1)
}

func TestTimer_Stop(t *testing.T) {
	tm, err := NewTimer("u", "task", t0)
	require.NoError(t, err)

	stopAt := t0.Add(5*time.Minute + 250*time.Millisecond)
	require.True(t, tm.Stop(stopAt))

	assert.False(t, tm.IsActive)
	require.NotNil(t, tm.StoppedAt)
	require.NotNil(t, tm.Duration)
	assert.Equal(t, stopAt, *tm.StoppedAt)
	assert.Equal(t, 5*time.Minute+250*time.Millisecond, *tm.Duration)
	assert.Zero(t, tm.Progress(stopAt.Add(time.Hour)))
	assert.NoError(t, tm.Validate())

	// Second stop changes nothing.
	assert.False(t, tm.Stop(stopAt.Add(time.Hour)))
	assert.Equal(t, 5*time.Minute+250*time.Millisecond, *tm.Duration)
	assert.Equal(t, *tm.Duration, tm.Elapsed(stopAt.Add(24*time.Hour)))
}

func TestTimer_StopBeforeStartClampsToZero(t *testing.T) {
	tm, err := NewTimer("u", "task", t0)
	require.NoError(t, err)

	require.True(t, tm.Stop(t0.Add(-time.Minute)))
	assert.Zero(t, *tm.Duration)
	assert.Equal(t, t0, *tm.StoppedAt)
}

func TestTimer_ValidateStateInvariant(t *testing.T) {
	tm, err := NewTimer("u", "task", t0)
	require.NoError(t, err)

	d := time.Minute
	tm.Duration = &d
	assert.ErrorIs(t, tm.Validate(), ErrTimerValidation)

	tm.IsActive = false
	tm.Duration = nil
	err = tm.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped timer lacks a stop time")
}

func TestTimer_Clone(t *testing.T) {
	tm, err := NewTimer("u", "task", t0)
	require.NoError(t, err)
	tm.Stop(t0.Add(time.Minute))

	c := tm.Clone()
	*c.Duration = time.Hour
	c.StoppedAt = nil

	assert.Equal(t, time.Minute, *tm.Duration)
	assert.NotNil(t, tm.StoppedAt)
}

func TestSortTimers(t *testing.T) {
	a := &Timer{ID: "tktm-b", StartedAt: t0}
	b := &Timer{ID: "tktm-a", StartedAt: t0}
	c := &Timer{ID: "tktm-0", StartedAt: t0.Add(time.Second)}
	d := &Timer{ID: "tktm-z", StartedAt: t0.Add(-time.Second)}

	timers := []*Timer{c, a, d, b}
	SortTimers(timers)

	assert.Equal(t, []*Timer{d, b, a, c}, timers)
}
