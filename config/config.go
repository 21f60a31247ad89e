// Package config provides YAML configuration parsing for Launchpad.
//
// This package enables running Launchpad as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Chapel Launch
//	app_name: chapel-launch
//	port: 8080
//	sample_interval: 1s
//	site_name: ${WEBSITE_SITE_NAME:-local}
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Sample interval bounds. The floor prevents a config typo from turning the
// event stream into a busy loop; the ceiling keeps the live pills live.
const (
	minSampleInterval = 100 * time.Millisecond
	maxSampleInterval = 1 * time.Minute
)

// Config is the root configuration structure for Launchpad.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the landing page title. Defaults to "Launchpad" if not set.
	Title string `yaml:"title"`

	// AppName is the application identifier reported by /api/status.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	AppName string `yaml:"app_name"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// SampleInterval is the time between event stream samples.
	// Accepts duration strings like "1s", "500ms". Defaults to 1s.
	SampleInterval Duration `yaml:"sample_interval"`

	// SiteName is the hosting site identifier reported by /api/status.
	// Supports environment variable substitution.
	SiteName string `yaml:"site_name"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in AppName, SiteName, and Title values.
// Defaults are applied for Port (8080) and SampleInterval (1s).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.SampleInterval == 0 {
		cfg.SampleInterval = Duration(1 * time.Second)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	interval := c.SampleInterval.Duration()
	if interval < minSampleInterval {
		return fmt.Errorf("sample_interval must be at least %s, got %s", minSampleInterval, interval)
	}
	if interval > maxSampleInterval {
		return fmt.Errorf("sample_interval must not exceed %s, got %s", maxSampleInterval, interval)
	}

	for _, field := range []struct {
		name  string
		value *string
	}{
		{"title", &c.Title},
		{"app_name", &c.AppName},
		{"site_name", &c.SiteName},
	} {
		expanded, err := expandEnvVars(*field.value)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}

	return nil
}
