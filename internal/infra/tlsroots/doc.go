// Package tlsroots loads TLS material for the server and the CLI.
//
//   - roots.go: CA bundles for the CLI's HTTPS client
//   - reloader.go: server certificate hot reload via fsnotify
package tlsroots
