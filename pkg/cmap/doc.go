// Package cmap provides a concurrent map sharded by key hash.
//
// Keys are strings (or string-kinded types); the shard is picked with
// murmur3 so the distribution does not depend on the process seed.
// Each shard has its own RWMutex, and the conditional helpers
// (SetIfAbsent, Compute, DeleteFunc) run entirely under the shard lock,
// which makes them usable as atomic compare-and-update primitives.
//
// Usage:
//
//	m := cmap.New[string, *Timer]()
//	m.SetIfAbsent("tktm-...", timer)
//	val, ok := m.Get("tktm-...")
package cmap
