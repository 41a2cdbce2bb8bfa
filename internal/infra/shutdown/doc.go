// Package shutdown coordinates graceful process termination.
//
// Components register named hooks as they start; Wait blocks until
// SIGINT/SIGTERM (or Trigger) and runs the hooks in reverse registration
// order under one deadline, so the HTTP server stops accepting requests
// before storage is closed.
package shutdown
