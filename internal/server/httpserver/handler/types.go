package handler

import (
	"time"

	"github.com/yndnr/timekeep-go/internal/core/service"
)

// ErrorResponse is the error body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// CredentialsRequest is the request body for POST /login and /signup.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse is the response body of a successful login or signup.
type SessionResponse struct {
	SessionID string `json:"sessionId"`
}

// CreateTimerRequest is the request body for POST /api/timers.
type CreateTimerRequest struct {
	Description string `json:"description"`
}

// CreateTimerResponse is the response body for POST /api/timers.
type CreateTimerResponse struct {
	ID string `json:"id"`
}

// TimerResponse represents a timer in API responses. Duration and
// Progress are milliseconds; exactly one of them is present.
type TimerResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Description string     `json:"description"`
	StartedAt   time.Time  `json:"startedAt"`
	IsActive    bool       `json:"isActive"`
	StoppedAt   *time.Time `json:"stoppedAt,omitempty"`
	Duration    *int64     `json:"duration,omitempty"`
	Progress    *int64     `json:"progress,omitempty"`
}

// NewTimerResponse converts a timer status to its wire form.
func NewTimerResponse(ts *service.TimerStatus) TimerResponse {
	resp := TimerResponse{
		ID:          ts.ID,
		UserID:      ts.UserID,
		Description: ts.Description,
		StartedAt:   ts.StartedAt,
		IsActive:    ts.IsActive,
		StoppedAt:   ts.StoppedAt,
	}
	if ts.Duration != nil {
		ms := ts.Duration.Milliseconds()
		resp.Duration = &ms
	}
	if ts.Progress != nil {
		ms := ts.Progress.Milliseconds()
		resp.Progress = &ms
	}
	return resp
}

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
