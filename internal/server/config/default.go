package config

import (
	"time"

	"github.com/yndnr/timekeep-go/internal/core/domain"
	"github.com/yndnr/timekeep-go/internal/storage"
	"github.com/yndnr/timekeep-go/internal/storage/redisstore"
)

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:4000"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultStorageEngine     = storage.BackendBadger
	DefaultDataDir           = "./data"
	DefaultBadgerGCInterval  = 10 * time.Minute
	DefaultBadgerGCThreshold = 0.5

	DefaultSessionTTL = 720 * time.Hour
	DefaultRedisAddr  = "127.0.0.1:6379"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:         DefaultHTTPAddr,
				ReadTimeout:  DefaultReadTimeout,
				WriteTimeout: DefaultWriteTimeout,
			},
			Metrics: MetricsConfig{
				Enabled: true,
			},
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Storage: StorageSection{
			Engine:          DefaultStorageEngine,
			DataDir:         DefaultDataDir,
			CleanupInterval: storage.DefaultCleanupInterval,
			Badger: BadgerConfig{
				GCInterval:  DefaultBadgerGCInterval,
				GCThreshold: DefaultBadgerGCThreshold,
				SyncWrites:  true,
			},
		},
		Sessions: SessionsSection{
			TTL: DefaultSessionTTL,
			Redis: RedisConfig{
				Addr:      DefaultRedisAddr,
				KeyPrefix: redisstore.DefaultKeyPrefix,
			},
		},
		Security: SecuritySection{
			PasswordDigest: domain.DigestSHA256,
		},
		Timers: TimersSection{
			EnforceOwnership: true,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
