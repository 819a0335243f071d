package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/energyprophet/internal/config"
	"github.com/rshade/energyprophet/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the energyprophet CLI.
// It wires up configuration, logging, tracing and the subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:     "energyprophet",
		Short:   "Energy-mix policy simulator",
		Long:    "energyprophet: project a country's electricity mix to a target year and analyze proposed changes",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file (default $ENERGYPROPHET_HOME/config.yaml)")
	cmd.PersistentFlags().String("catalog", "",
		"catalog source: builtin, a YAML/JSON file, or an SQLite database (overrides config)")

	cmd.AddCommand(
		NewCountriesCmd(),
		NewSimulateCmd(),
		NewAnalyzeCmd(),
		NewBalanceCmd(),
		newCatalogCmd(),
		newConfigCmd(),
		newCacheCmd(),
		NewVersionCmd(ver),
	)

	return cmd
}

const rootCmdExample = `  # List the countries in the catalog
  energyprophet countries list

  # Project Switzerland to 2050 with 60% solar and 40% wind
  energyprophet simulate --country che --share solar=0.6 --share wind=0.4

  # Compare several countries as JSON
  energyprophet simulate --country che --country fra --share nuclear=0.5 --output json

  # Analyze proposed generation changes
  energyprophet analyze --country deu --changes changes.json

  # Balance a mix interactively
  energyprophet balance --country ita

  # Use a custom catalog
  energyprophet --catalog ./catalog.yaml countries list`

// loadConfig resolves the effective configuration for this invocation:
// --config replaces the file lookup and --catalog overrides the catalog source.
func loadConfig(cmd *cobra.Command) error {
	cfg := config.GetGlobalConfig()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	effective := *cfg
	if source, _ := cmd.Flags().GetString("catalog"); source != "" {
		effective.Catalog.Source = source
	}

	if err := effective.Validate(); err != nil {
		return err
	}
	config.SetGlobalConfig(&effective)
	return nil
}

// newCatalogCmd creates the catalog command group.
func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "catalog", Short: "Catalog management commands"}
	cmd.AddCommand(NewCatalogExportCmd())
	return cmd
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigValidateCmd())
	return cmd
}

// newCacheCmd creates the cache command group.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Narrative cache commands"}
	cmd.AddCommand(NewCacheClearCmd())
	return cmd
}
