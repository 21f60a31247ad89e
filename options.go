package launchpad

import (
	"errors"
	"log/slog"
	"time"
)

// appConfig holds mutable state during App construction.
type appConfig struct {
	title          string
	appName        string
	port           int
	sampleInterval time.Duration
	siteName       string
	logger         *slog.Logger
}

// Option is a function that configures an [App] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithTitle], [WithAppName], [WithPort],
// [WithSampleInterval], [WithSiteName], [WithLogger].
type Option func(*appConfig) error

// WithTitle sets the landing page title displayed in the browser tab and header.
//
// If not specified, defaults to "Launchpad".
func WithTitle(title string) Option {
	return func(cfg *appConfig) error {
		cfg.title = title
		return nil
	}
}

// WithAppName sets the application identifier reported by the status API.
//
// Defaults to "launchpad" if not specified.
//
// Returns an error if the name is empty.
func WithAppName(name string) Option {
	return func(cfg *appConfig) error {
		if name == "" {
			return errors.New("app name cannot be empty")
		}
		cfg.appName = name
		return nil
	}
}

// WithPort sets the HTTP port for the web server.
//
// The page, API, and event stream will be available at http://localhost:<port>.
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *appConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithSampleInterval sets how often the event stream emits a status sample.
//
// Each connected stream client receives one message per interval. Defaults
// to 1 second if not specified.
//
// Returns an error if the duration is zero or negative.
func WithSampleInterval(d time.Duration) Option {
	return func(cfg *appConfig) error {
		if d <= 0 {
			return errors.New("sample interval must be positive")
		}
		cfg.sampleInterval = d
		return nil
	}
}

// WithSiteName sets the hosting site identifier reported by the status API.
//
// If not specified, the WEBSITE_SITE_NAME environment variable is consulted,
// falling back to "local".
func WithSiteName(name string) Option {
	return func(cfg *appConfig) error {
		cfg.siteName = name
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the App.
//
// This allows SDK consumers to control where logs are written and in what
// format. If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}
