package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yndnr/timekeep-go/internal/infra/confloader"
)

// EnvPrefix is the environment variable prefix of CLI settings.
const EnvPrefix = "TIMEKEEP_CLI_"

// Dir returns ~/.timekeep, or .timekeep when the home directory is unknown.
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".timekeep"
	}
	return filepath.Join(homeDir, ".timekeep")
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(Dir(), "cli.yaml")
}

// DefaultSessionFile returns the default session token file.
func DefaultSessionFile() string {
	return filepath.Join(Dir(), "session")
}

// Load reads defaults, the config file and the environment. An explicit
// path must exist; the default path is optional.
func Load(path string) (*CLIConfig, error) {
	opt := confloader.WithConfigFile(path)
	if path == "" {
		opt = confloader.WithOptionalConfigFile(DefaultConfigPath())
	}

	cfg := Default()
	if err := confloader.NewLoader(confloader.WithEnvPrefix(EnvPrefix), opt).Load(cfg); err != nil {
		return nil, err
	}
	if err := Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Verify checks the configuration.
func Verify(cfg *CLIConfig) error {
	if cfg.Server == "" {
		return fmt.Errorf("server is required")
	}
	if cfg.SessionFile == "" {
		return fmt.Errorf("session_file is required")
	}
	switch cfg.Output {
	case OutputTable, OutputJSON:
	default:
		return fmt.Errorf("unknown output format %q (want table or json)", cfg.Output)
	}
	return nil
}
