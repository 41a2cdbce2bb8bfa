package command

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yndnr/timekeep-go/internal/core/service"
	"github.com/yndnr/timekeep-go/internal/server/httpserver"
	"github.com/yndnr/timekeep-go/internal/server/httpserver/handler"
	"github.com/yndnr/timekeep-go/internal/storage/memory"
)

// harness runs CLI commands against a real in-memory server.
type harness struct {
	t           *testing.T
	server      string
	sessionFile string
	stdin       string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	store := memory.New()
	auth := service.NewAuthService(store, store, &service.AuthServiceConfig{SessionTTL: time.Hour})
	timers := service.NewTimerService(store, nil)
	srv := httptest.NewServer(httpserver.NewRouter(&httpserver.RouterConfig{
		Handler:  handler.New(auth, timers, store, nil),
		Resolver: auth,
	}))
	t.Cleanup(srv.Close)

	interactive, prompt := isInteractive, promptCredentials
	isInteractive = func() bool { return false }
	t.Cleanup(func() {
		isInteractive, promptCredentials = interactive, prompt
	})

	return &harness{
		t:           t,
		server:      srv.URL,
		sessionFile: filepath.Join(t.TempDir(), "session"),
	}
}

// run executes one CLI invocation and returns its output.
func (h *harness) run(args ...string) string {
	h.t.Helper()
	var buf bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(h.stdin)
	app.Writer = &buf
	app.ErrWriter = &buf

	full := append([]string{Name, "--server", h.server, "--session-file", h.sessionFile}, args...)
	require.NoError(h.t, app.Run(full))
	return buf.String()
}

func (h *harness) token() string {
	h.t.Helper()
	data, err := os.ReadFile(h.sessionFile)
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(h.t, err)
	return strings.TrimSpace(string(data))
}

var startedRe = regexp.MustCompile(`ID: (tktm-[0-9a-z]+)\.`)

func (h *harness) start(description string) string {
	h.t.Helper()
	out := h.run("start", description)
	m := startedRe.FindStringSubmatch(out)
	require.Len(h.t, m, 2, out)
	return m[1]
}
