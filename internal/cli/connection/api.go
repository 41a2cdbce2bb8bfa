package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNoSession means the server answered login without a session.
var ErrNoSession = errors.New("user or password not found")

// Timer is a timer as returned by the API.
type Timer struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Description string     `json:"description"`
	StartedAt   time.Time  `json:"startedAt"`
	IsActive    bool       `json:"isActive"`
	StoppedAt   *time.Time `json:"stoppedAt,omitempty"`
	Duration    *int64     `json:"duration,omitempty"`
	Progress    *int64     `json:"progress,omitempty"`
}

// Elapsed returns progress for active timers and duration for stopped ones.
func (t *Timer) Elapsed() time.Duration {
	switch {
	case t.Progress != nil:
		return time.Duration(*t.Progress) * time.Millisecond
	case t.Duration != nil:
		return time.Duration(*t.Duration) * time.Millisecond
	}
	return 0
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionReply struct {
	SessionID string `json:"sessionId"`
	Error     string `json:"error"`
}

// Login exchanges credentials for a session token. Unknown users and
// wrong passwords return ErrNoSession.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	return c.authenticate(ctx, "/login", username, password)
}

// Signup registers a user and returns its first session token.
func (c *HTTPClient) Signup(ctx context.Context, username, password string) (string, error) {
	return c.authenticate(ctx, "/signup", username, password)
}

func (c *HTTPClient) authenticate(ctx context.Context, path, username, password string) (string, error) {
	resp, err := c.Post(ctx, path, &credentials{Username: username, Password: password})
	if err != nil {
		return "", err
	}

	var reply sessionReply
	if err := ParseResponse(resp, &reply); err != nil {
		return "", err
	}
	if reply.SessionID == "" {
		return "", ErrNoSession
	}
	return reply.SessionID, nil
}

// Logout ends the current session on the server.
func (c *HTTPClient) Logout(ctx context.Context) error {
	resp, err := c.Get(ctx, "/logout")
	if err != nil {
		return err
	}
	return ParseResponse(resp, nil)
}

// StartTimer starts a timer and returns its ID.
func (c *HTTPClient) StartTimer(ctx context.Context, description string) (string, error) {
	resp, err := c.Post(ctx, "/api/timers", map[string]string{"description": description})
	if err != nil {
		return "", err
	}

	var reply struct {
		ID string `json:"id"`
	}
	if err := ParseResponse(resp, &reply); err != nil {
		return "", err
	}
	return reply.ID, nil
}

// StopTimer stops a timer.
func (c *HTTPClient) StopTimer(ctx context.Context, id string) error {
	resp, err := c.Post(ctx, "/api/timers/"+url.PathEscape(id)+"/stop", nil)
	if err != nil {
		return err
	}
	return ParseResponse(resp, nil)
}

// ListTimers lists the caller's active or stopped timers.
func (c *HTTPClient) ListTimers(ctx context.Context, active bool) ([]Timer, error) {
	resp, err := c.Get(ctx, "/api/timers?isActive="+strconv.FormatBool(active))
	if err != nil {
		return nil, err
	}

	timers := []Timer{}
	if err := ParseResponse(resp, &timers); err != nil {
		return nil, err
	}
	return timers, nil
}

// GetTimer fetches one of the caller's timers.
func (c *HTTPClient) GetTimer(ctx context.Context, id string) (*Timer, error) {
	resp, err := c.Get(ctx, "/api/timers/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	var timer Timer
	if err := ParseResponse(resp, &timer); err != nil {
		return nil, err
	}
	return &timer, nil
}

// StatusOf returns the HTTP status of an *APIError, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports a 404 answer.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// IsTransport reports that the server could not be reached.
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

// ReadyStatus is the body of GET /ready.
type ReadyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Ready checks server readiness. A 503 answer returns the decoded status
// together with an *APIError.
func (c *HTTPClient) Ready(ctx context.Context) (*ReadyStatus, error) {
	resp, err := c.Get(ctx, "/ready")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var status ReadyStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &status, &APIError{Status: resp.StatusCode, Message: status.Error}
	}
	return &status, nil
}
