// Package main provides the entry point for timekeep-server.
//
// The server exposes the timekeep HTTP API:
//
//   - /signup, /login, /logout for session management
//   - /api/timers for starting, stopping and listing work timers
//   - /health, /ready and /metrics for operations
//
// Usage:
//
//	timekeep-server [flags]
//	timekeep-server --config /path/to/config.yaml
//
// The server loads configuration, opens storage, builds the services and
// serves HTTP until SIGINT or SIGTERM, then shuts down in reverse order.
package main
