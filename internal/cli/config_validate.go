package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/energyprophet/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and catalog",
		Long: `Validates the effective configuration (file, environment and flags) and checks
that the configured catalog can be opened.`,
		Example: `  # Validate current configuration
  energyprophet config validate

  # Validate and show detailed information
  energyprophet config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.GetGlobalConfig()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cat, err := openCatalog(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg, cat.Len())
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config, countries int) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Growth rate: %.2f%%/yr\n", cfg.Simulation.GrowthRate*percentScale)
	cmd.Printf("  Target year: %d\n", cfg.Simulation.TargetYear)
	cmd.Printf("  Catalog: %s (%d countries)\n", cfg.Catalog.Source, countries)
	cmd.Printf("  Balancer: %d steps, debounce %s\n", cfg.Balancer.Steps, cfg.DebounceInterval())
	cmd.Printf("  Output format: %s\n", cfg.Output.DefaultFormat)
	cmd.Printf("  Output precision: %d\n", cfg.Output.Precision)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	if cfg.Logging.File != "" {
		cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	}

	switch {
	case !cfg.Narrative.Enabled:
		cmd.Println("  Narrative: disabled")
	case cfg.Narrative.APIKey == "":
		cmd.Printf("  Narrative: %s (no %s set)\n", cfg.Narrative.Model, config.EnvAPIKey)
	default:
		cmd.Printf("  Narrative: %s\n", cfg.Narrative.Model)
	}
}
