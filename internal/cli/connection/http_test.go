package connection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(Options{Server: srv.URL})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewHTTPClient_BaseURL(t *testing.T) {
	tests := []struct {
		name   string
		server string
		want   string
	}{
		{"with http prefix", "http://localhost:4000", "http://localhost:4000"},
		{"with https prefix", "https://localhost:4000", "https://localhost:4000"},
		{"without prefix", "localhost:4000", "http://localhost:4000"},
		{"trailing slash", "http://localhost:4000/", "http://localhost:4000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewHTTPClient(Options{Server: tt.server})
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.BaseURL())
		})
	}
}

func TestNewHTTPClient_BadCAFile(t *testing.T) {
	_, err := NewHTTPClient(Options{Server: "https://localhost:4000", CAFile: "/nonexistent/ca.pem"})
	assert.Error(t, err)
}

func TestHTTPClient_Headers(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tkst_abc", r.Header.Get(SessionHeader))
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "timekeep-cli/"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})
	c.SetSession("tkst_abc")

	resp, err := c.Get(context.Background(), "/logout")
	require.NoError(t, err)
	require.NoError(t, ParseResponse(resp, nil))
}

func TestHTTPClient_NoSessionHeaderWhenEmpty(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header[SessionHeader]
		assert.False(t, present)
		writeJSON(w, http.StatusOK, map[string]string{"sessionId": "tkst_new"})
	})

	token, err := c.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tkst_new", token)
}

func TestLogin_NoSession(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"error": "user or password not found"})
	})

	_, err := c.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSignup_Conflict(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body.Username)
		assert.Equal(t, "/signup", r.URL.Path)

		w.Header().Set("X-Error-Code", "TK-USER-4090")
		writeJSON(w, http.StatusConflict, map[string]string{"error": "username already taken", "code": "TK-USER-4090"})
	})

	_, err := c.Signup(context.Background(), "alice", "pw")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "TK-USER-4090", apiErr.Code)
	assert.Equal(t, "username already taken", apiErr.Message)
}

func TestStartAndStopTimer(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/timers":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "write report", body["description"])
			writeJSON(w, http.StatusCreated, map[string]string{"id": "tktm-1"})
		case r.Method == http.MethodPost && r.URL.Path == "/api/timers/tktm-1/stop":
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/api/timers/tktm-2/stop":
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "timer not modified", "code": "TK-TIMR-4002"})
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "timer not found", "code": "TK-TIMR-4040"})
		}
	})
	ctx := context.Background()

	id, err := c.StartTimer(ctx, "write report")
	require.NoError(t, err)
	assert.Equal(t, "tktm-1", id)

	assert.NoError(t, c.StopTimer(ctx, "tktm-1"))
	assert.Equal(t, http.StatusBadRequest, StatusOf(c.StopTimer(ctx, "tktm-2")))
	assert.True(t, IsNotFound(c.StopTimer(ctx, "tktm-9")))
}

func TestListTimers(t *testing.T) {
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("isActive"))
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "tktm-1", "userId": "tkus-1", "description": "a", "startedAt": started, "isActive": true, "progress": 90_000},
		})
	})

	timers, err := c.ListTimers(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, timers, 1)
	assert.Equal(t, "tktm-1", timers[0].ID)
	assert.True(t, timers[0].StartedAt.Equal(started))
	assert.Equal(t, 90*time.Second, timers[0].Elapsed())
}

func TestGetTimer_Stopped(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/timers/tktm-1", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"id": "tktm-1", "description": "a", "isActive": false, "duration": 3_600_000,
		})
	})

	timer, err := c.GetTimer(context.Background(), "tktm-1")
	require.NoError(t, err)
	assert.False(t, timer.IsActive)
	assert.Equal(t, time.Hour, timer.Elapsed())
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := NewHTTPClient(Options{Server: srv.URL, Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.ListTimers(context.Background(), true)
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Equal(t, 0, StatusOf(err))
}

func TestParseResponse_ErrorWithoutBody(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusInternalServerError)

	err := ParseResponse(rec.Result(), nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "request failed with status 500", apiErr.Error())
}
