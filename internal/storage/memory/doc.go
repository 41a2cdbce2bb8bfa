// Package memory provides in-memory storage for Timekeep.
//
// It implements the user, session and timer repositories on top of
// pkg/cmap sharded maps. Data does not survive a restart; use it for
// development and tests.
//
// Indexes:
//
//   - Users by ID, plus a username to ID index that enforces uniqueness
//   - Sessions by token hash
//   - Timers by ID, plus an owner index (user ID to timer IDs)
//
// Thread Safety:
//
// All operations are thread-safe. StopTimer is a compare-and-update under
// the shard lock of the timer, so concurrent stops of one timer have
// exactly one winner.
package memory
