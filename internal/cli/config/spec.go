package config

// CLIConfig is the configuration for timekeep-cli.
type CLIConfig struct {
	// Server is the base URL of the timekeep server.
	Server string `koanf:"server"`

	// SessionFile holds the session token between invocations.
	SessionFile string `koanf:"session_file"`

	// Output is table or json.
	Output string `koanf:"output"`

	// CAFile adds PEM roots for https servers.
	CAFile string `koanf:"ca_file"`

	// Insecure skips TLS certificate verification.
	Insecure bool `koanf:"insecure"`
}

// Default values.
const (
	DefaultServer = "http://127.0.0.1:4000"
	DefaultOutput = "table"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:      DefaultServer,
		SessionFile: DefaultSessionFile(),
		Output:      DefaultOutput,
	}
}
