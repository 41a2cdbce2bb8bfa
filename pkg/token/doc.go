// Package token provides random secret generation and hashing helpers.
//
// Secrets are Base64 RawURL encoded so they can travel in headers and
// URLs unchanged. Hashes are hex encoded SHA-256 and are compared in
// constant time.
package token
