// Package handler provides the HTTP request handlers of timekeep-server.
//
// Routes and their middleware are wired in the parent httpserver package;
// handlers only decode requests, call the services and encode responses.
// Errors are converted at this boundary: a DomainError code maps to an
// HTTP status by its numeric suffix and is echoed in X-Error-Code.
package handler
