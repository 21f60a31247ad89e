// Package launchpad provides a single-process demo web application: a
// decorative landing page backed by a live status API and a one-second
// server-push stream of process counters.
//
// Launchpad is designed as an SDK-first library: configure an [App] with
// functional options and run it until the context is cancelled. A standalone
// binary with YAML configuration is provided under cmd/launchpad.
//
// # Quick Start
//
// Create an app and run it with graceful shutdown:
//
//	app, _ := launchpad.New(launchpad.WithPort(8080))
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	app.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// Launchpad uses the functional options pattern for configuration:
//
//	app, err := launchpad.New(
//	    launchpad.WithTitle("My Launch"),
//	    launchpad.WithPort(9090),
//	    launchpad.WithSampleInterval(time.Second),
//	)
//
// # Architecture
//
// Launchpad consists of several internal packages (under internal/):
//
//   - internal/metrics: The mutex-guarded process-wide request counter
//   - internal/server: HTTP server with the page, REST API, and Server-Sent Events
//   - dashboard: Embedded landing page assets
//
// The internal packages are not part of the public API and may change
// without notice. The library is designed for single-binary deployment
// using Go's embed directive for static assets.
package launchpad
