// Package config provides the timekeep-server configuration.
//
//   - spec.go: ServerConfig struct definition (koanf tags)
//   - default.go: default values
//   - verify.go: validation run once after loading
//   - sanitize.go: copy with secrets masked, for logging
//
// Configuration is loaded via internal/infra/confloader from defaults, a
// YAML file and TIMEKEEP_ environment variables, in that order.
package config
