package config

import (
	launchpad "github.com/ZeynixTech/Azure-flask-hello"
)

// BuildOptions converts a parsed [Config] into SDK options for [launchpad.New].
//
// Zero-valued fields are omitted so the SDK's own defaults apply. The
// returned slice can be appended to (e.g. to add a logger) before passing
// it to New.
func BuildOptions(cfg *Config) []launchpad.Option {
	opts := []launchpad.Option{
		launchpad.WithPort(cfg.Port),
		launchpad.WithSampleInterval(cfg.SampleInterval.Duration()),
	}

	if cfg.Title != "" {
		opts = append(opts, launchpad.WithTitle(cfg.Title))
	}
	if cfg.AppName != "" {
		opts = append(opts, launchpad.WithAppName(cfg.AppName))
	}
	if cfg.SiteName != "" {
		opts = append(opts, launchpad.WithSiteName(cfg.SiteName))
	}

	return opts
}
