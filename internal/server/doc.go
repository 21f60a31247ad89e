// Package server provides the HTTP server for the Launchpad landing page and API.
//
// This package is internal to Launchpad and handles all HTTP concerns:
//
//   - Landing page: Serves the embedded HTML page at "/"
//   - Health check: Plain-text probe at "/healthz"
//   - REST API: JSON snapshot of process state at "/api/status"
//   - Server-Sent Events: One status sample per second at "/events"
//
// Every inbound request passes through the counting middleware before it is
// dispatched, so the request counter reflects all traffic, including the
// event stream's own long-lived connection.
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
package server
