package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/livepoll/config"
)

// validateCmd validates a config file without polling anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a livepoll configuration file without starting any session.

This command parses the YAML, expands environment variables, applies
defaults, and validates all fields. It's useful for CI/CD pipelines or
pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  livepoll validate -c livepoll.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	lifetime := "unbounded"
	if d := cfg.LifetimeDuration(); d > 0 {
		lifetime = d.String()
	}
	relay := "disabled"
	if cfg.Relay != nil {
		relay = fmt.Sprintf("port %d", cfg.Relay.Port)
	}

	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Lifetime: %s\n", lifetime)
	fmt.Fprintf(out, "  Relay:    %s\n", relay)
	fmt.Fprintf(out, "  Sessions: %d\n", len(cfg.Sessions))
	for _, sc := range cfg.Sessions {
		fmt.Fprintf(out, "    - %s (max_wait %s, interval %s)\n",
			sc.Name, sc.MaxWait.Duration(), sc.Interval.Duration())
	}

	return nil
}
