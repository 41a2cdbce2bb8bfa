// Package config defines the timekeep-cli configuration.
//
// Sources, lowest precedence first:
//
//   - built-in defaults (Default)
//   - ~/.timekeep/cli.yaml, or the file given with --config
//   - TIMEKEEP_CLI_* environment variables (TIMEKEEP_CLI_SERVER, ...)
//   - command-line flags, applied by the command package
package config
