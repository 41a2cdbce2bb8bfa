// Package kv implements Timekeep storage on Badger.
//
// Records are JSON values under key prefixes:
//
//	user/<id>                 user
//	username/<username>       user id
//	session/<token hash>      session (Badger TTL set from ExpiresAt)
//	timer/<id>                timer
//	owner/<user id>/<id>      timer owner index (empty value)
//
// Transactions run with conflict detection, which is what makes
// StopTimer and the username claim atomic.
package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("kv: db closed")

// Config configures the Badger database.
type Config struct {
	// Dir is the storage directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps everything in memory (tests).
	InMemory bool

	// GCInterval is the interval between value log GC runs (default 10m).
	GCInterval time.Duration

	// GCThreshold is the value log discard ratio (0.0-1.0, default 0.5).
	GCThreshold float64

	// SyncWrites fsyncs every write.
	SyncWrites bool
}

// DefaultConfig returns the default configuration for dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:         dir,
		GCInterval:  10 * time.Minute,
		GCThreshold: 0.5,
		SyncWrites:  true,
	}
}

// DB wraps a Badger database with background value log GC and
// Prometheus gauges.
type DB struct {
	db     *badger.DB
	cfg    Config
	logger *slog.Logger
	closed atomic.Bool

	lastGCTime atomic.Int64  // Unix milliseconds
	gcRuns     atomic.Uint64 // Value log files rewritten

	metricsLSMSize      prometheus.Gauge
	metricsValueLogSize prometheus.Gauge
	metricsLastGCTime   prometheus.Gauge
	metricsGCRuns       prometheus.Counter

	stopCh chan struct{}
	doneCh chan struct{}
}

// OpenDB opens (or creates) the database.
func OpenDB(cfg Config, logger *slog.Logger) (*DB, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = 10 * time.Minute
	}
	if cfg.GCThreshold <= 0 || cfg.GCThreshold >= 1 {
		cfg.GCThreshold = 0.5
	}

	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger: logger}
	opts.SyncWrites = cfg.SyncWrites
	opts.DetectConflicts = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	d := &DB{
		db:     db,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go d.gcLoop()

	logger.Info("badger db opened",
		"dir", cfg.Dir,
		"in_memory", cfg.InMemory,
		"gc_interval", cfg.GCInterval)

	return d, nil
}

// Badger returns the underlying database.
func (d *DB) Badger() *badger.DB {
	return d.db
}

// Ping reports whether the database is usable.
func (d *DB) Ping(context.Context) error {
	if d.closed.Load() || d.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// GC runs value log GC until nothing is left to rewrite and returns the
// number of rewritten files. In-memory databases have no value log.
func (d *DB) GC(ctx context.Context) (int, error) {
	if d.cfg.InMemory {
		return 0, nil
	}

	start := time.Now()
	runs := 0
	for ctx.Err() == nil {
		err := d.db.RunValueLogGC(d.cfg.GCThreshold)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			return runs, fmt.Errorf("gc: %w", err)
		}
		runs++
	}

	d.lastGCTime.Store(time.Now().UnixMilli())
	d.gcRuns.Add(uint64(runs))
	if d.metricsGCRuns != nil {
		d.metricsGCRuns.Add(float64(runs))
	}

	d.logger.Debug("badger gc completed", "rewrites", runs, "elapsed", time.Since(start))
	return runs, nil
}

// Stats contains storage statistics.
type Stats struct {
	LSMSize      int64
	ValueLogSize int64
	LastGCTime   int64 // Unix milliseconds
	GCRuns       uint64
}

// Stats returns storage statistics.
func (d *DB) Stats() Stats {
	lsm, vlog := d.db.Size()
	return Stats{
		LSMSize:      lsm,
		ValueLogSize: vlog,
		LastGCTime:   d.lastGCTime.Load(),
		GCRuns:       d.gcRuns.Load(),
	}
}

// Close stops the GC loop and closes the database.
func (d *DB) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	d.logger.Info("shutting down badger db")

	close(d.stopCh)
	<-d.doneCh

	if err := d.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

// RegisterMetrics registers Badger gauges with registry and starts
// refreshing them.
func (d *DB) RegisterMetrics(registry prometheus.Registerer) error {
	d.metricsLSMSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "timekeep",
		Subsystem: "badger",
		Name:      "lsm_size_bytes",
		Help:      "Badger LSM tree size in bytes",
	})
	d.metricsValueLogSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "timekeep",
		Subsystem: "badger",
		Name:      "value_log_size_bytes",
		Help:      "Badger value log size in bytes",
	})
	d.metricsLastGCTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "timekeep",
		Subsystem: "badger",
		Name:      "last_gc_timestamp_seconds",
		Help:      "Unix timestamp of the last Badger GC run",
	})
	d.metricsGCRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timekeep",
		Subsystem: "badger",
		Name:      "gc_rewrites_total",
		Help:      "Value log files rewritten by Badger garbage collection",
	})

	for _, c := range []prometheus.Collector{d.metricsLSMSize, d.metricsValueLogSize, d.metricsLastGCTime, d.metricsGCRuns} {
		if err := registry.Register(c); err != nil {
			return fmt.Errorf("register badger metrics: %w", err)
		}
	}

	d.updateMetrics()
	go d.metricsUpdateLoop()
	return nil
}

func (d *DB) updateMetrics() {
	stats := d.Stats()
	d.metricsLSMSize.Set(float64(stats.LSMSize))
	d.metricsValueLogSize.Set(float64(stats.ValueLogSize))
	if stats.LastGCTime > 0 {
		d.metricsLastGCTime.Set(float64(stats.LastGCTime) / 1000.0)
	}
}

// metricsUpdateLoop periodically refreshes the gauges.
func (d *DB) metricsUpdateLoop() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.updateMetrics()
		case <-d.stopCh:
			return
		}
	}
}

// gcLoop runs periodic value log GC.
func (d *DB) gcLoop() {
	defer close(d.doneCh)

	ticker := time.NewTicker(d.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if _, err := d.GC(ctx); err != nil {
				d.logger.Error("badger gc failed", "error", err)
			}
			cancel()

		case <-d.stopCh:
			return
		}
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
