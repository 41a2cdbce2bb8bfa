// Package connection talks to the timekeep server for timekeep-cli.
//
// HTTPClient sends JSON requests and attaches the stored session token as
// X-SessionId. SessionFile keeps that token between invocations in a
// single-line file readable only by its owner.
package connection
