// Package service provides domain services for Timekeep.
//
// Domain services contain pure business logic and orchestrate operations
// on domain models. They define interfaces for storage dependencies,
// allowing for dependency injection and testability.
//
// This package contains:
//
//   - AuthService: the auth gate (token to identity), signup, login, logout
//   - TimerService: timer start, stop, list and lookup
//
// Every operation is a sequence of fallible steps with early return.
// Services are stateless and safe for concurrent use.
package service
