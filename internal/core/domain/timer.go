package domain

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxDescriptionLength is the maximum timer description length in runes.
const MaxDescriptionLength = 512

// Timer is a named work timer owned by one user.
//
// A timer is created active and stopped exactly once. StoppedAt and
// Duration are set together by Stop and never change afterwards; an
// active timer has neither. Progress is never stored.
type Timer struct {
	// ID is the unique identifier. Format: tktm-{ulid_lowercase}.
	ID string `json:"id"`

	// UserID is the owner.
	UserID string `json:"user_id"`

	// Description is the free text name of the task (non-empty).
	Description string `json:"description"`

	// StartedAt is set at creation.
	StartedAt time.Time `json:"started_at"`

	// IsActive is true until the timer is stopped.
	IsActive bool `json:"is_active"`

	// StoppedAt is present iff !IsActive.
	StoppedAt *time.Time `json:"stopped_at,omitempty"`

	// Duration is StoppedAt - StartedAt, present iff !IsActive.
	Duration *time.Duration `json:"duration,omitempty"`
}

// NewTimer creates an active timer for userID started at now.
// The description is trimmed; an empty description is rejected.
func NewTimer(userID, description string, now time.Time) (*Timer, error) {
	description = strings.TrimSpace(description)
	if err := ValidateDescription(description); err != nil {
		return nil, err
	}

	id, err := newID(TimerIDPrefix, now)
	if err != nil {
		return nil, err
	}

	return &Timer{
		ID:          id,
		UserID:      userID,
		Description: description,
		StartedAt:   now.UTC().Truncate(time.Millisecond),
		IsActive:    true,
	}, nil
}

// ValidateDescription checks a timer description.
func ValidateDescription(description string) error {
	switch {
	case strings.TrimSpace(description) == "":
		return ErrTimerValidation.WithDetails("description is required")
	case utf8.RuneCountInString(description) > MaxDescriptionLength:
		return ErrTimerValidation.WithDetails("description exceeds 512 characters")
	}
	return nil
}

// Progress returns the elapsed time of an active timer at now.
// Returns 0 for a stopped timer or when now precedes StartedAt.
func (t *Timer) Progress(now time.Time) time.Duration {
	if !t.IsActive {
		return 0
	}
	if d := now.Sub(t.StartedAt); d > 0 {
		return d
	}
	return 0
}

// Elapsed returns Progress for an active timer and the frozen Duration
// for a stopped one.
func (t *Timer) Elapsed(now time.Time) time.Duration {
	if t.IsActive {
		return t.Progress(now)
	}
	if t.Duration != nil {
		return *t.Duration
	}
	return 0
}

// Stop transitions the timer to stopped at now and freezes its duration.
// Returns false, leaving the timer untouched, if it was already stopped.
func (t *Timer) Stop(now time.Time) bool {
	if !t.IsActive {
		return false
	}

	stoppedAt := now.UTC().Truncate(time.Millisecond)
	if stoppedAt.Before(t.StartedAt) {
		stoppedAt = t.StartedAt
	}
	duration := stoppedAt.Sub(t.StartedAt)

	t.IsActive = false
	t.StoppedAt = &stoppedAt
	t.Duration = &duration
	return true
}

// Validate checks the stored timer record, including the state invariant.
func (t *Timer) Validate() error {
	var violations []string

	if !IsValidTimerID(t.ID) {
		violations = append(violations, "id is malformed")
	}
	if t.UserID == "" {
		violations = append(violations, "user_id is required")
	}
	if err := ValidateDescription(t.Description); err != nil {
		violations = append(violations, err.(*DomainError).Details)
	}
	if t.StartedAt.IsZero() {
		violations = append(violations, "started_at is required")
	}
	if t.IsActive && (t.StoppedAt != nil || t.Duration != nil) {
		violations = append(violations, "active timer has a stop time")
	}
	if !t.IsActive && (t.StoppedAt == nil || t.Duration == nil) {
		violations = append(violations, "stopped timer lacks a stop time")
	}

	if len(violations) > 0 {
		return ErrTimerValidation.WithDetails(strings.Join(violations, "; "))
	}
	return nil
}

// Clone returns a deep copy of the timer.
func (t *Timer) Clone() *Timer {
	c := *t
	if t.StoppedAt != nil {
		s := *t.StoppedAt
		c.StoppedAt = &s
	}
	if t.Duration != nil {
		d := *t.Duration
		c.Duration = &d
	}
	return &c
}

// SortTimers orders timers by StartedAt, then ID.
func SortTimers(timers []*Timer) {
	slices.SortFunc(timers, func(a, b *Timer) int {
		if c := a.StartedAt.Compare(b.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
