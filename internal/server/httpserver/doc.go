// Package httpserver provides the HTTP/HTTPS server for timekeep.
//
// This package implements the external API using stdlib net/http:
//
//   - Auth endpoints: /login, /signup, /logout
//   - Timer endpoints: /api/timers, /api/timers/{id}, /api/timers/{id}/stop
//   - Health endpoints: /health, /ready, /metrics
//
// Features:
//
//   - TLS support with automatic certificate reload
//   - Middleware chain: RequestID, Recover, AccessLog, Metrics, Session
//   - Graceful shutdown with configurable timeout
package httpserver
