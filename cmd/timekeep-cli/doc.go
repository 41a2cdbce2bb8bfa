// Package main provides the entry point for timekeep-cli.
//
// timekeep-cli logs in to a timekeep server and starts, stops and lists
// work timers. The session token is kept in ~/.timekeep/session.
//
// Usage:
//
//	timekeep-cli signup --username alice
//	timekeep-cli start "Write the report"
//	timekeep-cli status
//	timekeep-cli stop <timer-id>
//	timekeep-cli shell
package main
