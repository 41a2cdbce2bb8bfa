// Package storage opens the configured storage backend and manages its
// lifecycle.
//
// Backends:
//
//   - memory: sharded maps, nothing survives a restart
//   - badger: embedded key-value store (default)
//   - sqlite, postgres: database/sql with embedded migrations
//
// Sessions can be moved to Redis independently of the main backend. The
// Engine also runs the periodic sweep of expired sessions.
package storage
