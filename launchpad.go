package launchpad

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ZeynixTech/Azure-flask-hello/dashboard"
	"github.com/ZeynixTech/Azure-flask-hello/internal/metrics"
	"github.com/ZeynixTech/Azure-flask-hello/internal/server"
)

const (
	defaultPort           = 8080
	defaultSampleInterval = 1 * time.Second
	defaultAppName        = "launchpad"

	// siteNameEnv is set by the hosting platform when deployed.
	siteNameEnv = "WEBSITE_SITE_NAME"
)

// App is the main orchestrator for the Launchpad web application.
//
// App owns the process-lifetime request counter and the HTTP server that
// serves the landing page, the status API, and the live event stream. It is
// created using [New] with functional options and run with [App.Start].
//
// The caller controls the lifecycle via the context passed to Start. Cancel
// the context to trigger graceful shutdown.
type App struct {
	title          string
	appName        string
	port           int
	sampleInterval time.Duration
	siteName       string
	logger         *slog.Logger
}

// New creates a new [App] instance with the given options.
//
// All options have sensible defaults:
//   - Port: 8080
//   - Sample interval: 1 second
//   - Site name: $WEBSITE_SITE_NAME, or "local" when unset
//   - Logger: slog.Default()
//
// Returns an error if any option is invalid.
func New(opts ...Option) (*App, error) {
	cfg := &appConfig{
		port:           defaultPort,
		sampleInterval: defaultSampleInterval,
		appName:        defaultAppName,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.port < 1 || cfg.port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.port)
	}

	siteName := cfg.siteName
	if siteName == "" {
		siteName = os.Getenv(siteNameEnv)
	}
	if siteName == "" {
		siteName = "local"
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &App{
		title:          cfg.title,
		appName:        cfg.appName,
		port:           cfg.port,
		sampleInterval: cfg.sampleInterval,
		siteName:       siteName,
		logger:         logger,
	}, nil
}

// Start runs the application until the provided context is cancelled.
//
// Start is a blocking call. On startup it creates the request counter with
// the current time as the process start time, assigns a fresh instance ID,
// and begins serving HTTP on the configured port. Returns nil on graceful
// shutdown; returns an error if the HTTP server fails to start.
func (a *App) Start(ctx context.Context) error {
	instanceID := uuid.NewString()

	a.logger.Info("launchpad starting",
		"instance", instanceID,
		"site_name", a.siteName,
		"sample_interval", a.sampleInterval.String(),
	)
	a.logger.Info("page available", "url", fmt.Sprintf("http://localhost:%d", a.port))

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	counter := metrics.NewRequestCounter(time.Now().UTC())

	httpServer := server.NewServer(counter, server.Config{
		Port:           a.port,
		Title:          a.title,
		AppName:        a.appName,
		SiteName:       a.siteName,
		InstanceID:     instanceID,
		SampleInterval: a.sampleInterval,
	}, dashboard.Assets, a.logger)

	if err := httpServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	a.logger.Info("launchpad stopped")
	return nil
}

// Port returns the configured HTTP port.
func (a *App) Port() int {
	return a.port
}

// SampleInterval returns the configured interval between event stream samples.
func (a *App) SampleInterval() time.Duration {
	return a.sampleInterval
}
