package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/timekeep-go/internal/infra/confloader"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.Server.HTTP.Addr, DefaultHTTPAddr)
	}
	if cfg.Server.HTTP.TLSEnabled() {
		t.Error("TLS should be disabled by default")
	}
	if !cfg.Server.Metrics.Enabled {
		t.Error("metrics should be enabled by default")
	}
	if cfg.Storage.Engine != DefaultStorageEngine {
		t.Errorf("Storage.Engine = %q, want %q", cfg.Storage.Engine, DefaultStorageEngine)
	}
	if cfg.Sessions.TTL != DefaultSessionTTL {
		t.Errorf("Sessions.TTL = %v, want %v", cfg.Sessions.TTL, DefaultSessionTTL)
	}
	if cfg.Sessions.Store != "" {
		t.Errorf("Sessions.Store = %q, want empty", cfg.Sessions.Store)
	}
	if cfg.Security.PasswordDigest != "sha256" {
		t.Errorf("PasswordDigest = %q, want sha256", cfg.Security.PasswordDigest)
	}
	if !cfg.Timers.EnforceOwnership {
		t.Error("ownership should be enforced by default")
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) error = %v", err)
	}
}

func TestVerify_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ServerConfig)
		want   string
	}{
		{"bad addr", func(c *ServerConfig) { c.Server.HTTP.Addr = "nope" }, "server.http.addr"},
		{"cert without key", func(c *ServerConfig) { c.Server.HTTP.TLSCertFile = "/tmp/x.crt" }, "must be set together"},
		{"missing cert file", func(c *ServerConfig) {
			c.Server.HTTP.TLSCertFile = "/nonexistent/x.crt"
			c.Server.HTTP.TLSKeyFile = "/nonexistent/x.key"
		}, "tls_cert_file"},
		{"negative timeout", func(c *ServerConfig) { c.Server.HTTP.ReadTimeout = -time.Second }, "timeouts"},
		{"zero shutdown", func(c *ServerConfig) { c.Server.ShutdownTimeout = 0 }, "shutdown_timeout"},
		{"unknown engine", func(c *ServerConfig) { c.Storage.Engine = "mongo" }, "unknown engine"},
		{"badger no dir", func(c *ServerConfig) { c.Storage.DataDir = "" }, "data_dir is required"},
		{"badger threshold", func(c *ServerConfig) { c.Storage.Badger.GCThreshold = 1.5 }, "gc_threshold"},
		{"sqlite no location", func(c *ServerConfig) {
			c.Storage.Engine = "sqlite"
			c.Storage.DataDir = ""
		}, "data_dir or storage.dsn"},
		{"postgres no dsn", func(c *ServerConfig) { c.Storage.Engine = "postgres" }, "storage.dsn is required"},
		{"negative cleanup", func(c *ServerConfig) { c.Storage.CleanupInterval = -time.Minute }, "cleanup_interval"},
		{"negative ttl", func(c *ServerConfig) { c.Sessions.TTL = -time.Hour }, "sessions.ttl"},
		{"unknown session store", func(c *ServerConfig) { c.Sessions.Store = "memcached" }, "unknown store"},
		{"redis no addr", func(c *ServerConfig) {
			c.Sessions.Store = "redis"
			c.Sessions.Redis.Addr = ""
		}, "sessions.redis.addr"},
		{"digest", func(c *ServerConfig) { c.Security.PasswordDigest = "md5" }, "password_digest"},
		{"log level", func(c *ServerConfig) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *ServerConfig) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := Verify(cfg)
			if err == nil {
				t.Fatal("Verify() expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Verify() error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestVerify_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Storage.Engine = "mongo"
	cfg.Log.Level = "loud"

	err := Verify(cfg)
	if err == nil {
		t.Fatal("Verify() expected error")
	}
	if !strings.Contains(err.Error(), "storage.engine") || !strings.Contains(err.Error(), "log.level") {
		t.Errorf("Verify() error = %q, want both problems", err)
	}
}

func TestVerify_ValidVariants(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "tls.crt")
	key := filepath.Join(dir, "tls.key")
	for _, p := range []string{cert, key} {
		if err := os.WriteFile(p, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	variants := map[string]func(*ServerConfig){
		"memory": func(c *ServerConfig) {
			c.Storage.Engine = "memory"
			c.Storage.DataDir = ""
		},
		"sqlite dsn only": func(c *ServerConfig) {
			c.Storage.Engine = "sqlite"
			c.Storage.DataDir = ""
			c.Storage.DSN = "/tmp/t.db"
		},
		"postgres": func(c *ServerConfig) {
			c.Storage.Engine = "postgres"
			c.Storage.DSN = "postgres://u:p@db/timekeep"
		},
		"redis sessions": func(c *ServerConfig) { c.Sessions.Store = "redis" },
		"never expire":   func(c *ServerConfig) { c.Sessions.TTL = 0 },
		"argon2id":       func(c *ServerConfig) { c.Security.PasswordDigest = "argon2id" },
		"tls": func(c *ServerConfig) {
			c.Server.HTTP.TLSCertFile = cert
			c.Server.HTTP.TLSKeyFile = key
		},
		"text debug": func(c *ServerConfig) {
			c.Log.Format = "text"
			c.Log.Level = "debug"
		},
	}
	for name, modify := range variants {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			modify(cfg)
			if err := Verify(cfg); err != nil {
				t.Errorf("Verify() error = %v", err)
			}
		})
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	content := `
server:
  http:
    addr: "0.0.0.0:8080"
    read_timeout: 5s
storage:
  engine: sqlite
  cleanup_interval: 1m
sessions:
  ttl: 0s
timers:
  enforce_ownership: false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TIMEKEEP_LOG__LEVEL", "debug")
	t.Setenv("TIMEKEEP_SESSIONS__REDIS__DB", "3")

	cfg := Default()
	if err := confloader.NewLoader(confloader.WithConfigFile(path)).Load(cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTP.Addr != "0.0.0.0:8080" || cfg.Server.HTTP.ReadTimeout != 5*time.Second {
		t.Errorf("HTTP = %+v", cfg.Server.HTTP)
	}
	if cfg.Server.HTTP.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("WriteTimeout = %v, want default", cfg.Server.HTTP.WriteTimeout)
	}
	if cfg.Storage.Engine != "sqlite" || cfg.Storage.CleanupInterval != time.Minute {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Sessions.TTL != 0 {
		t.Errorf("Sessions.TTL = %v, want 0", cfg.Sessions.TTL)
	}
	if cfg.Timers.EnforceOwnership {
		t.Error("EnforceOwnership should be false")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Sessions.Redis.DB != 3 {
		t.Errorf("Redis.DB = %d, want 3", cfg.Sessions.Redis.DB)
	}
	if err := Verify(cfg); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	cfg.Sessions.Redis.Password = "super-secret-password"
	cfg.Storage.DSN = "postgres://timekeep:hunter22@db:5432/timekeep?sslmode=disable"

	sanitized := Sanitize(cfg)

	if cfg.Sessions.Redis.Password != "super-secret-password" {
		t.Error("original config should not be modified")
	}
	if sanitized.Sessions.Redis.Password == cfg.Sessions.Redis.Password {
		t.Error("redis password should be masked")
	}
	if len(sanitized.Sessions.Redis.Password) != len(cfg.Sessions.Redis.Password) {
		t.Error("masked password should keep its length")
	}
	if strings.Contains(sanitized.Storage.DSN, "hunter22") {
		t.Errorf("DSN password leaked: %q", sanitized.Storage.DSN)
	}
	if !strings.Contains(sanitized.Storage.DSN, "timekeep:xxxxx@db:5432") {
		t.Errorf("DSN should keep user and host: %q", sanitized.Storage.DSN)
	}
}

func TestMaskDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"/var/lib/timekeep/timekeep.db", "/var/lib/timekeep/timekeep.db"},
		{"host=db user=tk password=secret dbname=tk", "host=db user=tk password=xxxxx dbname=tk"},
		{"host=db password='a b' dbname=tk", "host=db password=xxxxx dbname=tk"},
		{"postgres://tk@db/tk", "postgres://tk@db/tk"},
	}
	for _, tt := range tests {
		if got := maskDSN(tt.in); got != tt.want {
			t.Errorf("maskDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	if got := maskSecret("abc"); got != "****" {
		t.Errorf("maskSecret(short) = %q", got)
	}
	if got := maskSecret("abcdefgh"); got != "ab****gh" {
		t.Errorf("maskSecret() = %q", got)
	}
}
