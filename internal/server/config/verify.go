package config

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/yndnr/timekeep-go/internal/core/domain"
	"github.com/yndnr/timekeep-go/internal/storage"
	"github.com/yndnr/timekeep-go/internal/telemetry/logger"
)

// Verify validates the configuration and reports every problem found.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyServer(&cfg.Server),
		verifyStorage(&cfg.Storage),
		verifySessions(&cfg.Sessions, cfg.Storage.Engine),
		verifySecurity(&cfg.Security),
		verifyLog(&cfg.Log),
	)
}

func verifyServer(cfg *ServerSection) error {
	var errs []error

	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		errs = append(errs, fmt.Errorf("server.http.addr: %w", err))
	}

	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.http: tls_cert_file and tls_key_file must be set together"))
	}
	for key, path := range map[string]string{
		"server.http.tls_cert_file": cfg.HTTP.TLSCertFile,
		"server.http.tls_key_file":  cfg.HTTP.TLSKeyFile,
	} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}

	if cfg.HTTP.ReadTimeout < 0 || cfg.HTTP.WriteTimeout < 0 {
		errs = append(errs, errors.New("server.http: timeouts must not be negative"))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	return errors.Join(errs...)
}

func verifyStorage(cfg *StorageSection) error {
	var errs []error

	switch cfg.Engine {
	case storage.BackendMemory:
	case storage.BackendBadger:
		if cfg.DataDir == "" {
			errs = append(errs, errors.New("storage.data_dir is required for the badger engine"))
		}
		if cfg.Badger.GCThreshold <= 0 || cfg.Badger.GCThreshold >= 1 {
			errs = append(errs, errors.New("storage.badger.gc_threshold must be between 0 and 1"))
		}
		if cfg.Badger.GCInterval < 0 {
			errs = append(errs, errors.New("storage.badger.gc_interval must not be negative"))
		}
	case storage.BackendSQLite:
		if cfg.DataDir == "" && cfg.DSN == "" {
			errs = append(errs, errors.New("storage.data_dir or storage.dsn is required for the sqlite engine"))
		}
	case storage.BackendPostgres:
		if cfg.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for the postgres engine"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.engine: unknown engine %q", cfg.Engine))
	}

	if cfg.CleanupInterval < 0 {
		errs = append(errs, errors.New("storage.cleanup_interval must not be negative"))
	}
	return errors.Join(errs...)
}

func verifySessions(cfg *SessionsSection, engine string) error {
	var errs []error

	if cfg.TTL < 0 {
		errs = append(errs, errors.New("sessions.ttl must not be negative (0 disables expiry)"))
	}

	switch cfg.Store {
	case "", engine:
	case storage.SessionStoreRedis:
		if cfg.Redis.Addr == "" {
			errs = append(errs, errors.New("sessions.redis.addr is required for the redis session store"))
		}
		if cfg.Redis.DB < 0 {
			errs = append(errs, errors.New("sessions.redis.db must not be negative"))
		}
	default:
		errs = append(errs, fmt.Errorf("sessions.store: unknown store %q", cfg.Store))
	}
	return errors.Join(errs...)
}

func verifySecurity(cfg *SecuritySection) error {
	if _, err := domain.NewDigester(cfg.PasswordDigest); err != nil {
		return fmt.Errorf("security.password_digest: %w", err)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	if !logger.ValidLevel(cfg.Level) {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", cfg.Level))
	}
	if cfg.Format != "json" && cfg.Format != "text" {
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", cfg.Format))
	}
	return errors.Join(errs...)
}
