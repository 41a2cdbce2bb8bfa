package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/timekeep-go/internal/core/service"
	"github.com/yndnr/timekeep-go/internal/server/httpserver/handler"
	"github.com/yndnr/timekeep-go/internal/storage/memory"
	"github.com/yndnr/timekeep-go/internal/telemetry/metric"
)

func newTestServer(t *testing.T) (*httptest.Server, *metric.Registry) {
	t.Helper()
	store := memory.New()
	registry := metric.NewRegistry()
	auth := service.NewAuthService(store, store, &service.AuthServiceConfig{SessionTTL: time.Hour, Observer: registry})
	timers := service.NewTimerService(store, &service.TimerServiceConfig{EnforceOwnership: true, Observer: registry})

	router := NewRouter(&RouterConfig{
		Handler:        handler.New(auth, timers, store, nil),
		Resolver:       auth,
		Metrics:        registry,
		MetricsHandler: registry.Handler(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, registry
}

type apiClient struct {
	t     *testing.T
	base  string
	token string
}

func (c *apiClient) do(method, path, body string) (*http.Response, string) {
	c.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, c.base+path, r)
	require.NoError(c.t, err)
	if c.token != "" {
		req.Header.Set(handler.SessionHeader, c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, string(data)
}

func (c *apiClient) signup(username string) {
	c.t.Helper()
	resp, body := c.do(http.MethodPost, "/signup", `{"username":"`+username+`","password":"pw"}`)
	require.Equal(c.t, http.StatusOK, resp.StatusCode, body)
	var s handler.SessionResponse
	require.NoError(c.t, json.Unmarshal([]byte(body), &s))
	c.token = s.SessionID
}

func TestRouter_EndToEnd(t *testing.T) {
	srv, _ := newTestServer(t)
	alice := &apiClient{t: t, base: srv.URL}

	// Anonymous access to timers is rejected.
	resp, _ := alice.do(http.MethodGet, "/api/timers?isActive=true", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	alice.signup("alice")

	resp, body := alice.do(http.MethodPost, "/api/timers", `{"description":"deep work"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	var created handler.CreateTimerResponse
	require.NoError(t, json.Unmarshal([]byte(body), &created))

	resp, body = alice.do(http.MethodGet, "/api/timers/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"isActive":true`)
	assert.Contains(t, body, `"progress":`)

	resp, _ = alice.do(http.MethodPost, "/api/timers/"+created.ID+"/stop", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = alice.do(http.MethodPost, "/api/timers/"+created.ID+"/stop", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "TK-TIMR-4002", resp.Header.Get("X-Error-Code"))
	assert.Contains(t, body, `"error":`)

	resp, body = alice.do(http.MethodGet, "/api/timers?isActive=false", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stopped []handler.TimerResponse
	require.NoError(t, json.Unmarshal([]byte(body), &stopped))
	require.Len(t, stopped, 1)
	assert.NotNil(t, stopped[0].Duration)

	// Logout invalidates the token.
	resp, body = alice.do(http.MethodGet, "/logout", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{}`, body)

	resp, _ = alice.do(http.MethodGet, "/api/timers?isActive=true", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_RequestIDOnEveryResponse(t *testing.T) {
	srv, _ := newTestServer(t)
	c := &apiClient{t: t, base: srv.URL}

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/health"},
		{http.MethodGet, "/api/timers"},
		{http.MethodGet, "/no/such/route"},
		{http.MethodDelete, "/api/timers"},
	} {
		resp, _ := c.do(tc.method, tc.path, "")
		assert.NotEmpty(t, resp.Header.Get(RequestIDHeader), "%s %s", tc.method, tc.path)
	}
}

func TestRouter_ConcurrentStops(t *testing.T) {
	srv, _ := newTestServer(t)
	c := &apiClient{t: t, base: srv.URL}
	c.signup("alice")

	_, body := c.do(http.MethodPost, "/api/timers", `{"description":"race"}`)
	var created handler.CreateTimerResponse
	require.NoError(t, json.Unmarshal([]byte(body), &created))

	const n = 8
	statuses := make(chan int, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/timers/"+created.ID+"/stop", nil)
			req.Header.Set(handler.SessionHeader, c.token)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				statuses <- 0
				return
			}
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	counts := map[int]int{}
	for s := range statuses {
		counts[s]++
	}
	assert.Equal(t, 1, counts[http.StatusNoContent])
	assert.Equal(t, n-1, counts[http.StatusBadRequest])
}

func TestRouter_Metrics(t *testing.T) {
	srv, _ := newTestServer(t)
	c := &apiClient{t: t, base: srv.URL}
	c.signup("alice")
	c.do(http.MethodGet, "/api/timers/tktm-01arz3ndektsv4rrffq69g5fav", "")

	resp, body := c.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `route="GET /api/timers/{id}"`)
	assert.Contains(t, body, `route="POST /signup"`)
	assert.NotContains(t, body, "tktm-01arz3ndektsv4rrffq69g5fav")
}

func TestRouter_MetricsDisabled(t *testing.T) {
	store := memory.New()
	auth := service.NewAuthService(store, store, nil)
	timers := service.NewTimerService(store, nil)
	srv := httptest.NewServer(NewRouter(&RouterConfig{
		Handler:  handler.New(auth, timers, store, nil),
		Resolver: auth,
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
