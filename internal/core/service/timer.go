package service

import (
	"context"
	"errors"
	"time"

	"github.com/yndnr/timekeep-go/internal/core/domain"
)

// TimerService implements the timer lifecycle: start, stop, list, get.
type TimerService struct {
	repo             TimerRepository
	enforceOwnership bool
	observer         Observer
	now              func() time.Time
}

// TimerServiceConfig holds configuration for TimerService.
type TimerServiceConfig struct {
	// EnforceOwnership makes Stop reject timers owned by another user
	// (reported as not found). When false any authenticated caller may
	// stop any timer by ID.
	EnforceOwnership bool

	// Observer receives timer events (optional).
	Observer Observer

	// Now overrides the clock (tests).
	Now func() time.Time
}

// DefaultTimerServiceConfig returns default configuration.
func DefaultTimerServiceConfig() *TimerServiceConfig {
	return &TimerServiceConfig{EnforceOwnership: true}
}

// NewTimerService creates a new TimerService.
func NewTimerService(repo TimerRepository, config *TimerServiceConfig) *TimerService {
	if config == nil {
		config = DefaultTimerServiceConfig()
	}

	s := &TimerService{
		repo:             repo,
		enforceOwnership: config.EnforceOwnership,
		observer:         config.Observer,
		now:              config.Now,
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// TimerStatus is a timer as seen at a point in time.
// Progress is set for active timers only and is never persisted.
type TimerStatus struct {
	*domain.Timer
	Progress *time.Duration
}

// Elapsed returns the progress of an active timer or the frozen duration
// of a stopped one.
func (ts *TimerStatus) Elapsed() time.Duration {
	if ts.Progress != nil {
		return *ts.Progress
	}
	if ts.Duration != nil {
		return *ts.Duration
	}
	return 0
}

func statusAt(t *domain.Timer, now time.Time) *TimerStatus {
	ts := &TimerStatus{Timer: t}
	if t.IsActive {
		p := t.Progress(now)
		ts.Progress = &p
	}
	return ts
}

// Start creates an active timer for the caller and returns it.
func (s *TimerService) Start(ctx context.Context, caller *domain.Identity, description string) (*domain.Timer, error) {
	// 1. Require an identity
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}

	// 2. Build the timer (trims and validates the description)
	timer, err := domain.NewTimer(caller.UserID, description, s.now())
	if err != nil {
		return nil, err
	}

	// 3. Persist
	if err := s.repo.CreateTimer(ctx, timer); err != nil {
		return nil, storageError(err)
	}

	s.observer.TimerStarted()
	return timer, nil
}

// Stop transitions an active timer to stopped.
//
// Returns domain.ErrTimerNotFound if the timer does not exist (or belongs
// to another user while ownership is enforced) and domain.ErrTimerNotModified
// if it was already stopped or a concurrent stop won.
func (s *TimerService) Stop(ctx context.Context, caller *domain.Identity, timerID string) (*domain.Timer, error) {
	// 1. Require an identity
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	if timerID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("timer id is required")
	}

	// 2. Look the timer up
	timer, err := s.getVisible(ctx, caller, timerID, s.enforceOwnership)
	if err != nil {
		return nil, err
	}

	// 3. Single conditional update: stop only if still active
	stoppedAt := s.now()
	stopped, err := s.repo.StopTimer(ctx, timerID, stoppedAt)
	if err != nil {
		return nil, storageError(err)
	}
	if !stopped {
		return nil, domain.ErrTimerNotModified.WithDetails(timerID)
	}

	// 4. The stored record is the fetched one stopped at the same instant
	timer.Stop(stoppedAt)
	s.observer.TimerStopped(*timer.Duration)
	return timer, nil
}

// List returns the caller's timers with IsActive == active, ordered by
// start time. Progress of active timers is computed now.
func (s *TimerService) List(ctx context.Context, caller *domain.Identity, active bool) ([]*TimerStatus, error) {
	// 1. Require an identity
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}

	// 2. Filtered scan
	timers, err := s.repo.ListTimers(ctx, caller.UserID, active)
	if err != nil {
		return nil, storageError(err)
	}

	// 3. Attach progress at a single instant
	now := s.now()
	result := make([]*TimerStatus, 0, len(timers))
	for _, t := range timers {
		result = append(result, statusAt(t, now))
	}
	return result, nil
}

// Get returns one of the caller's timers. Timers of other users are
// reported as not found.
func (s *TimerService) Get(ctx context.Context, caller *domain.Identity, timerID string) (*TimerStatus, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}

	timer, err := s.getVisible(ctx, caller, timerID, true)
	if err != nil {
		return nil, err
	}
	return statusAt(timer, s.now()), nil
}

// getVisible fetches a timer and, when owned is set, hides foreign timers.
func (s *TimerService) getVisible(ctx context.Context, caller *domain.Identity, timerID string, owned bool) (*domain.Timer, error) {
	if !domain.IsValidTimerID(timerID) {
		return nil, domain.ErrTimerNotFound.WithDetails(timerID)
	}

	timer, err := s.repo.GetTimer(ctx, timerID)
	if errors.Is(err, domain.ErrTimerNotFound) {
		return nil, domain.ErrTimerNotFound.WithDetails(timerID)
	}
	if err != nil {
		return nil, storageError(err)
	}

	if owned && timer.UserID != caller.UserID {
		return nil, domain.ErrTimerNotFound.WithDetails(timerID)
	}
	return timer, nil
}
