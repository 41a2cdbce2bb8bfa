package benchmark

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/yndnr/timekeep-go/internal/core/domain"
	"github.com/yndnr/timekeep-go/internal/core/service"
	"github.com/yndnr/timekeep-go/internal/storage"
	"github.com/yndnr/timekeep-go/internal/storage/sqlstore"
)

// SessionCounts are the store sizes used by lookup benchmarks.
var SessionCounts = []int{1000, 10000, 50000}

// Backends benchmarked by the timer benchmarks.
var Backends = []string{storage.BackendMemory, storage.BackendBadger, storage.BackendSQLite}

// openEngine opens a throwaway engine for backend.
func openEngine(b *testing.B, backend string) *storage.Engine {
	b.Helper()

	cfg := storage.DefaultConfig(b.TempDir())
	cfg.Backend = backend
	cfg.CleanupInterval = 0
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg.Badger.InMemory = true
	cfg.Badger.Dir = ""
	cfg.Badger.SyncWrites = false
	if backend == storage.BackendSQLite {
		cfg.DSN = sqlstore.MemoryDSN
	}

	engine, err := storage.Open(context.Background(), cfg)
	if err != nil {
		b.Fatalf("open %s: %v", backend, err)
	}
	b.Cleanup(func() { engine.Close() })
	return engine
}

// newServices builds the services over engine with the sha256 digest.
func newServices(engine *storage.Engine) (*service.AuthService, *service.TimerService) {
	auth := service.NewAuthService(engine.Users(), engine.Sessions(), &service.AuthServiceConfig{SessionTTL: time.Hour})
	timers := service.NewTimerService(engine.Timers(), nil)
	return auth, timers
}

// signupUsers creates count users and returns one session token each.
func signupUsers(b *testing.B, auth *service.AuthService, count int) []string {
	b.Helper()

	ctx := context.Background()
	tokens := make([]string, count)
	for i := range tokens {
		res, err := auth.Signup(ctx, &service.Credentials{
			Username: fmt.Sprintf("user-%d", i),
			Password: "bench-password",
		})
		if err != nil {
			b.Fatalf("signup: %v", err)
		}
		tokens[i] = res.Token
	}
	return tokens
}

// identity returns an identity for a fresh user.
func identity(b *testing.B, auth *service.AuthService) *domain.Identity {
	b.Helper()
	res, err := auth.Signup(context.Background(), &service.Credentials{Username: "bench", Password: "bench-password"})
	if err != nil {
		b.Fatalf("signup: %v", err)
	}
	return res.Identity
}
