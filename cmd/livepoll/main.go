// Package main is the entry point for the livepoll CLI.
//
// livepoll can be used either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	livepoll watch -c config.yaml     # Poll the configured sessions
//	livepoll validate -c config.yaml  # Validate configuration
//	livepoll version                  # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "livepoll",
	Short: "A resilient continuous-polling client",
	Long: `livepoll repeatedly fetches status resources over HTTP.

Each session issues its first request immediately, waits at most max_wait
for a response, and schedules the next request after the configured
interval. Consecutive failures stretch the delay to 5s and then 15s;
the next success restores the interval.

Quick start:
  1. Create a config file (livepoll.yaml)
  2. Run: livepoll watch -c livepoll.yaml --print-body

Example config:
  max_wait: 2m
  interval: 2s
  relay:
    port: 8080
  sessions:
    - name: console
      uri: http://localhost:8081/ajaxstatus`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error
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
	Long:  `Print the version, commit hash, and build date of this livepoll binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "livepoll %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
