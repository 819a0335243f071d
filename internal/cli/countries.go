package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/energyprophet/internal/catalog"
	"github.com/rshade/energyprophet/internal/config"
	"github.com/rshade/energyprophet/internal/greenops"
)

const (
	tabPadding   = 2
	percentScale = 100
)

// NewCountriesCmd creates the countries command group.
func NewCountriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "countries",
		Aliases: []string{"country"},
		Short:   "Browse the country catalog",
	}
	cmd.AddCommand(newCountriesListCmd(), newCountriesShowCmd())
	return cmd
}

func newCountriesListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the countries in the catalog",
		Example: `  # List countries
  energyprophet countries list

  # List countries as JSON
  energyprophet countries list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.GetGlobalConfig()

			cat, err := openCatalog(ctx, cfg)
			if err != nil {
				return err
			}
			countries, err := cat.ListCountries(ctx)
			if err != nil {
				return fmt.Errorf("listing countries: %w", err)
			}

			if resolveFormat(output, cfg) == config.FormatJSON {
				return writeJSON(cmd.OutOrStdout(), countries)
			}
			return renderCountriesTable(cmd.OutOrStdout(), countries)
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "output format: table or json (default from config)")
	return cmd
}

func newCountriesShowCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <country-id>",
		Short: "Show a country's current generation mix",
		Args:  cobra.ExactArgs(1),
		Example: `  # Show Germany's technologies
  energyprophet countries show deu`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.GetGlobalConfig()

			cat, err := openCatalog(ctx, cfg)
			if err != nil {
				return err
			}
			country, err := cat.GetCountry(ctx, args[0])
			if err != nil {
				return err
			}

			if resolveFormat(output, cfg) == config.FormatJSON {
				return writeJSON(cmd.OutOrStdout(), country)
			}
			return renderCountryDetail(cmd.OutOrStdout(), country, cfg.Output.Precision)
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "output format: table or json (default from config)")
	return cmd
}

func renderCountriesTable(w io.Writer, countries []catalog.Country) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tGENERATION(TWh)\tTECHNOLOGIES")
	fmt.Fprintln(tw, "--\t----\t---------------\t------------")
	for _, c := range countries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n",
			c.ID, c.DisplayName(), greenops.FormatFloat(c.TotalGeneration, 1), len(c.Technologies))
	}
	return tw.Flush()
}

func renderCountryDetail(w io.Writer, c *catalog.Country, precision int) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintf(tw, "%s (%s)\t%s TWh\n\n", c.DisplayName(), c.ID, greenops.FormatFloat(c.TotalGeneration, precision))
	fmt.Fprintln(tw, "TECHNOLOGY\tSHARE\tGENERATION(TWh)\tEMISSIONS\tCOST(USD/MWh)\tIMPORTS")
	fmt.Fprintln(tw, "----------\t-----\t---------------\t---------\t-------------\t-------")
	for i := range c.Technologies {
		t := &c.Technologies[i]
		fmt.Fprintf(tw, "%s\t%.1f%%\t%s\t%s\t%s\t%s\n",
			t.Name,
			t.Share*percentScale,
			greenops.FormatFloat(t.Share*c.TotalGeneration, precision),
			formatEmission(t.Emission()),
			greenops.FormatFloat(t.UnitCost, 0),
			formatImports(t),
		)
	}
	return tw.Flush()
}

func formatEmission(f greenops.Factor) string {
	if f.Value == nil || f.Unit == greenops.UnitUnknown {
		return "n/a"
	}
	return fmt.Sprintf("%g %s", *f.Value, f.Unit)
}

func formatImports(t *catalog.Technology) string {
	if !t.Imports() {
		return "-"
	}
	return fmt.Sprintf("%g t/MWh %s", t.ImportFactor, t.ImportResource)
}

// resolveFormat returns the --output flag value, or the configured default.
func resolveFormat(flag string, cfg *config.Config) string {
	if f := strings.ToLower(strings.TrimSpace(flag)); f != "" {
		return f
	}
	return cfg.Output.DefaultFormat
}

// validateFormat rejects output formats other than table and json.
func validateFormat(format string) error {
	switch format {
	case config.FormatTable, config.FormatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (want %q or %q)", format, config.FormatTable, config.FormatJSON)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
