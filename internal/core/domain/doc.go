// Package domain defines the core domain models for Timekeep.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling. This package contains:
//
//   - User: account with a username and a password digest
//   - Session: opaque bearer token bound to a user
//   - Timer: named work timer with an active/stopped lifecycle
//   - Token and Digest helpers for session tokens and passwords
//   - Errors: domain error codes shared by every transport
package domain
