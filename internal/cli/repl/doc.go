// Package repl provides the interactive shell of timekeep-cli.
//
//   - repl.go: read loop, built-ins (help, history, exit) and dispatch
//   - split.go: shell-like argument splitting with quotes
//   - completer.go: command lookup and suggestions
//   - history.go: command history persistence
//
// Each line is split into arguments and handed to an Exec function, which
// runs it as a regular timekeep-cli invocation.
package repl
