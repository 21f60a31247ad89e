// Package main is the entry point for the launchpad CLI.
//
// Launchpad can be run either as a library (SDK) or as a standalone binary,
// optionally with YAML configuration. This CLI provides the standalone
// binary approach.
//
// Usage:
//
//	launchpad serve                     # Start with defaults on :8080
//	launchpad serve -c config.yaml      # Start with a config file
//	launchpad validate -c config.yaml   # Validate configuration
//	launchpad version                   # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "launchpad",
	Short: "A single-binary demo status web application",
	Long: `Launchpad is a single-process demo web application.

It serves a decorative landing page, a JSON status API, a health check,
and a live Server-Sent Events stream of process counters.

Quick start:
  1. Run: launchpad serve
  2. Open http://localhost:8080 in your browser

Example config:
  title: Chapel Launch
  port: 8080
  sample_interval: 1s
  site_name: ${WEBSITE_SITE_NAME:-local}`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this launchpad binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("launchpad %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
