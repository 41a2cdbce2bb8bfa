package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/timekeep-go/internal/core/service"
	"github.com/yndnr/timekeep-go/internal/storage/kv"
	"github.com/yndnr/timekeep-go/internal/storage/memory"
	"github.com/yndnr/timekeep-go/internal/storage/redisstore"
	"github.com/yndnr/timekeep-go/internal/storage/sqlstore"
)

// Backend names.
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"

	// SessionStoreRedis moves sessions to Redis; users and timers stay on
	// the main backend.
	SessionStoreRedis = "redis"
)

// Default configuration values.
const (
	DefaultCleanupInterval = 10 * time.Minute
	DefaultSQLiteFile      = "timekeep.db"
	DefaultBadgerDir       = "badger"
)

// Config configures the storage engine.
type Config struct {
	// Backend is one of memory, badger, sqlite, postgres.
	Backend string

	// DataDir is the base directory for file based backends.
	DataDir string

	// DSN is the PostgreSQL connection string, or the SQLite file path
	// (default <DataDir>/timekeep.db).
	DSN string

	// CleanupInterval is the period of the expired session sweep.
	// Zero or negative disables the sweeper.
	CleanupInterval time.Duration

	// Badger tuning, used by the badger backend.
	Badger kv.Config

	// SessionStore is "" (sessions live on Backend) or "redis".
	SessionStore string

	// Redis configures the Redis session store.
	Redis redisstore.Config

	// Logger is the structured logger.
	Logger *slog.Logger

	// Registry receives storage metrics (optional).
	Registry prometheus.Registerer
}

// DefaultConfig returns the default storage configuration.
func DefaultConfig(dataDir string) Config {
	return Config{
		Backend:         BackendBadger,
		DataDir:         dataDir,
		CleanupInterval: DefaultCleanupInterval,
		Badger:          kv.DefaultConfig(filepath.Join(dataDir, DefaultBadgerDir)),
		Redis:           redisstore.Config{Addr: "127.0.0.1:6379", KeyPrefix: redisstore.DefaultKeyPrefix},
		Logger:          slog.Default(),
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// recordCounter is implemented by backends that count records without a
// scan.
type recordCounter interface {
	SessionCount() int
	TimerCount() int
}

// Engine owns the repositories of the configured backend and their
// lifecycle. It is created once at startup and injected into services.
type Engine struct {
	backend  string
	users    service.UserRepository
	sessions service.SessionRepository
	timers   service.TimerRepository

	pingers []pinger
	closers []io.Closer
	counter recordCounter

	cleanupInterval time.Duration
	metricsPurged   prometheus.Counter
	logger          *slog.Logger
	now             func() time.Time

	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Open opens the configured backend and starts the expired session
// sweeper.
func Open(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	e := &Engine{
		backend:         cfg.Backend,
		cleanupInterval: cfg.CleanupInterval,
		logger:          cfg.Logger,
		now:             time.Now,
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
	}

	// Step 1: Main backend
	if err := e.openBackend(ctx, cfg); err != nil {
		e.closeAll()
		return nil, err
	}

	// Step 2: Optional Redis session store
	switch cfg.SessionStore {
	case "", cfg.Backend:
	case SessionStoreRedis:
		rs, err := redisstore.Open(ctx, cfg.Redis)
		if err != nil {
			e.closeAll()
			return nil, fmt.Errorf("storage: open redis session store: %w", err)
		}
		e.sessions = rs
		e.counter = nil
		e.pingers = append(e.pingers, rs)
		e.closers = append(e.closers, rs)
	default:
		e.closeAll()
		return nil, fmt.Errorf("storage: unknown session store %q", cfg.SessionStore)
	}

	// Step 3: Metrics
	if cfg.Registry != nil {
		e.metricsPurged = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "timekeep",
			Subsystem: "storage",
			Name:      "expired_sessions_purged_total",
			Help:      "Expired sessions removed by the background sweeper",
		})
		if err := cfg.Registry.Register(e.metricsPurged); err != nil {
			e.closeAll()
			return nil, fmt.Errorf("storage: register metrics: %w", err)
		}
	}

	// Step 4: Sweeper
	if e.cleanupInterval > 0 {
		go e.sweepLoop()
	} else {
		close(e.doneCh)
	}

	e.logger.Info("storage engine opened",
		"backend", cfg.Backend,
		"session_store", e.sessionStoreName(cfg),
		"cleanup_interval", cfg.CleanupInterval)
	return e, nil
}

func (e *Engine) openBackend(ctx context.Context, cfg Config) error {
	switch cfg.Backend {
	case BackendMemory:
		s := memory.New()
		e.setStore(s, s, nil)
		e.counter = s

	case BackendBadger:
		bcfg := cfg.Badger
		if bcfg.Dir == "" && !bcfg.InMemory {
			if cfg.DataDir == "" {
				return errors.New("storage: data_dir is required")
			}
			bcfg.Dir = filepath.Join(cfg.DataDir, DefaultBadgerDir)
		}
		db, err := kv.OpenDB(bcfg, cfg.Logger)
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		e.setStore(kv.NewStore(db), db, db)
		if cfg.Registry != nil {
			if err := db.RegisterMetrics(cfg.Registry); err != nil {
				return fmt.Errorf("storage: %w", err)
			}
		}

	case BackendSQLite, BackendPostgres:
		dsn := cfg.DSN
		if dsn == "" && cfg.Backend == BackendSQLite {
			if cfg.DataDir == "" {
				return errors.New("storage: data_dir or dsn is required")
			}
			dsn = filepath.Join(cfg.DataDir, DefaultSQLiteFile)
		}
		s, err := sqlstore.Open(ctx, sqlstore.Config{Dialect: sqlstore.Dialect(cfg.Backend), DSN: dsn})
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		e.setStore(s, s, s)

	default:
		return fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
	return nil
}

// repositories is implemented by every main backend.
type repositories interface {
	service.UserRepository
	service.SessionRepository
	service.TimerRepository
}

func (e *Engine) setStore(s repositories, p pinger, c io.Closer) {
	e.users, e.sessions, e.timers = s, s, s
	e.pingers = append(e.pingers, p)
	if c != nil {
		e.closers = append(e.closers, c)
	}
}

func (e *Engine) sessionStoreName(cfg Config) string {
	if cfg.SessionStore == "" {
		return cfg.Backend
	}
	return cfg.SessionStore
}

// Backend returns the configured backend name.
func (e *Engine) Backend() string {
	return e.backend
}

// Users returns the credential store.
func (e *Engine) Users() service.UserRepository {
	return e.users
}

// Sessions returns the session store.
func (e *Engine) Sessions() service.SessionRepository {
	return e.sessions
}

// Timers returns the timer store.
func (e *Engine) Timers() service.TimerRepository {
	return e.timers
}

// RecordCounts returns the number of stored sessions and timers. ok is
// false unless both live on the memory backend.
func (e *Engine) RecordCounts() (sessions, timers int, ok bool) {
	if e.counter == nil {
		return 0, 0, false
	}
	return e.counter.SessionCount(), e.counter.TimerCount(), true
}

// Ping checks every underlying store.
func (e *Engine) Ping(ctx context.Context) error {
	for _, p := range e.pingers {
		if err := p.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

// SweepExpiredSessions removes sessions expired at now and returns the
// count.
func (e *Engine) SweepExpiredSessions(ctx context.Context) (int, error) {
	n, err := e.sessions.DeleteExpiredSessions(ctx, e.now())
	if n > 0 && e.metricsPurged != nil {
		e.metricsPurged.Add(float64(n))
	}
	return n, err
}

// sweepLoop runs SweepExpiredSessions every cleanup interval.
func (e *Engine) sweepLoop() {
	defer close(e.doneCh)

	ticker := time.NewTicker(e.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := e.SweepExpiredSessions(ctx)
			cancel()
			if err != nil {
				e.logger.Error("expired session sweep failed", "error", err)
			} else if n > 0 {
				e.logger.Info("expired sessions purged", "count", n)
			}

		case <-e.stopCh:
			return
		}
	}
}

// Close stops the sweeper and closes every store. Safe to call twice.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.logger.Info("shutting down storage engine")

		close(e.stopCh)
		<-e.doneCh

		e.closeErr = e.closeAll()
		if e.closeErr != nil {
			e.logger.Error("close storage failed", "error", e.closeErr)
			return
		}
		e.logger.Info("storage engine shutdown complete")
	})
	return e.closeErr
}

// closeAll closes stores in reverse open order.
func (e *Engine) closeAll() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
