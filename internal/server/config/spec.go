package config

import "time"

// ServerConfig is the root configuration for timekeep-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Storage  StorageSection  `koanf:"storage"`
	Sessions SessionsSection `koanf:"sessions"`
	Security SecuritySection `koanf:"security"`
	Timers   TimersSection   `koanf:"timers"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP    HTTPConfig    `koanf:"http"`
	Metrics MetricsConfig `koanf:"metrics"`

	// ShutdownTimeout bounds the graceful shutdown of all components.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// HTTPConfig configures the HTTP server. TLS is enabled when both files
// are set; the pair is reloaded when it changes on disk.
type HTTPConfig struct {
	Addr         string        `koanf:"addr"`
	TLSCertFile  string        `koanf:"tls_cert_file"`
	TLSKeyFile   string        `koanf:"tls_key_file"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// TLSEnabled reports whether a certificate pair is configured.
func (c HTTPConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// MetricsConfig configures the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// StorageSection configures the storage engine.
type StorageSection struct {
	// Engine is one of memory, badger, sqlite, postgres.
	Engine  string `koanf:"engine"`
	DataDir string `koanf:"data_dir"`

	// DSN is the PostgreSQL connection string or the SQLite file path.
	DSN string `koanf:"dsn"`

	// CleanupInterval is the period of the expired session sweep; 0
	// disables it.
	CleanupInterval time.Duration `koanf:"cleanup_interval"`

	Badger BadgerConfig `koanf:"badger"`
}

// BadgerConfig tunes the badger engine.
type BadgerConfig struct {
	GCInterval  time.Duration `koanf:"gc_interval"`
	GCThreshold float64       `koanf:"gc_threshold"`
	SyncWrites  bool          `koanf:"sync_writes"`
}

// SessionsSection configures session lifetime and placement.
type SessionsSection struct {
	// TTL is the session lifetime. 0 means sessions never expire.
	TTL time.Duration `koanf:"ttl"`

	// Store is empty (sessions live on storage.engine) or "redis".
	Store string `koanf:"store"`

	Redis RedisConfig `koanf:"redis"`
}

// RedisConfig configures the Redis session store.
type RedisConfig struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

// SecuritySection configures credential handling.
type SecuritySection struct {
	// PasswordDigest is the algorithm for new digests: sha256 or argon2id.
	PasswordDigest string `koanf:"password_digest"`
}

// TimersSection configures the timer lifecycle.
type TimersSection struct {
	// EnforceOwnership rejects stopping another user's timer.
	EnforceOwnership bool `koanf:"enforce_ownership"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
