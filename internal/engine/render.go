package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rshade/energyprophet/internal/greenops"
	"github.com/rshade/energyprophet/internal/units"
)

// tabwriterPadding is the minimum padding between table columns.
const tabwriterPadding = 2

// percentScale converts a share to a percentage.
const percentScale = 100

// FormatSignedTWh formats a generation delta with an explicit sign.
func FormatSignedTWh(v float64, precision int) string {
	return formatSignedFloat(v, precision)
}

// RenderMixAsTable writes mix as an aligned table. When baseline is non-nil a
// delta column compares each technology against it.
func RenderMixAsTable(w io.Writer, mix *ProjectedMix, baseline *ProjectedMix, precision int) error {
	if mix == nil {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)

	if _, err := fmt.Fprintf(tw, "%s (%s)\t%d -> %d\tgrowth %.2f%%/yr\t%s TWh -> %s TWh\n",
		mix.CountryName, mix.CountryID, mix.BaseYear, mix.TargetYear, mix.GrowthRate*percentScale,
		greenops.FormatFloat(mix.BaseGeneration, precision),
		greenops.FormatFloat(mix.ProjectedGeneration, precision),
	); err != nil {
		return fmt.Errorf("writing title: %w", err)
	}

	header := "TECHNOLOGY\tSHARE\tGENERATION(TWh)"
	sep := "----------\t-----\t---------------"
	if baseline != nil {
		header += "\tTODAY(TWh)\tDELTA"
		sep += "\t----------\t-----"
	}
	if _, err := fmt.Fprintf(tw, "%s\n%s\n", header, sep); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, id := range units.SortedKeys(mix.Shares) {
		line := fmt.Sprintf("%s\t%.1f%%\t%s", id, mix.Shares[id]*percentScale,
			greenops.FormatFloat(mix.Generation[id], precision))
		if baseline != nil {
			before := baseline.Generation[id]
			line += fmt.Sprintf("\t%s\t%s", greenops.FormatFloat(before, precision),
				FormatSignedTWh(mix.Generation[id]-before, precision))
		}
		if _, err := fmt.Fprintln(tw, line); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	if err := renderMixFooter(tw, mix, baseline); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return tw.Flush()
}

func renderMixFooter(tw *tabwriter.Writer, mix *ProjectedMix, baseline *ProjectedMix) error {
	co2 := fmt.Sprintf("%.3f Mt CO2", mix.TotalCO2Mt)
	cost := fmt.Sprintf("%.3f bn USD", mix.TotalCostBillionUSD)
	if baseline != nil {
		co2 += fmt.Sprintf(" (%+.3f)", mix.TotalCO2Mt-baseline.TotalCO2Mt)
		cost += fmt.Sprintf(" (%+.3f)", mix.TotalCostBillionUSD-baseline.TotalCostBillionUSD)
	}
	if _, err := fmt.Fprintf(tw, "\nSUMMARY\t%s\t%s\n", co2, cost); err != nil {
		return err
	}

	for _, resource := range units.SortedKeys(mix.ImportsTonnes) {
		if _, err := fmt.Fprintf(tw, "IMPORTS\t%s\t%s t\n", resource,
			greenops.FormatFloat(mix.ImportsTonnes[resource], 0)); err != nil {
			return err
		}
	}

	for _, warning := range mix.Warnings {
		if _, err := fmt.Fprintf(tw, "WARNING\t%s\n", warning); err != nil {
			return err
		}
	}
	return nil
}

// SimulationJSONOutput is the JSON document written for simulations.
type SimulationJSONOutput struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Mixes       []ProjectedMix `json:"mixes"`
	Baselines   []ProjectedMix `json:"baselines,omitempty"`
}

// RenderMixesAsJSON writes the simulated mixes and optional baselines as one
// indented JSON document.
func RenderMixesAsJSON(w io.Writer, mixes []ProjectedMix, baselines []ProjectedMix) error {
	if mixes == nil {
		mixes = []ProjectedMix{}
	}
	output := SimulationJSONOutput{
		GeneratedAt: time.Now().UTC(),
		Mixes:       mixes,
		Baselines:   baselines,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// RenderSummaryAsTable writes an analysis summary as an aligned table followed
// by totals, an emissions equivalency line and any warnings.
func RenderSummaryAsTable(w io.Writer, summary *AnalysisSummary) error {
	if summary == nil {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)

	if _, err := fmt.Fprintf(tw, "%s (%s)\t%s TWh today\n\n",
		summary.CountryName, summary.CountryID,
		greenops.FormatFloat(summary.CountryTotalGeneration, 1)); err != nil {
		return fmt.Errorf("writing title: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "TECHNOLOGY\tPREV(TWh)\tNEW(TWh)\tDELTA\tCO2(t)\tCOST(M USD)\n"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "----------\t---------\t--------\t-----\t------\t-----------\n"); err != nil {
		return fmt.Errorf("writing separator: %w", err)
	}

	for _, c := range summary.Changes {
		co2 := "n/a"
		if c.DeltaCO2Tonnes != nil {
			co2 = greenops.FormatSigned(*c.DeltaCO2Tonnes)
		}
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n",
			c.Name, c.PrevGeneration, c.NewGeneration,
			greenops.FormatSigned(c.DeltaGeneration), co2,
			formatSignedFloat(c.DeltaCostMillionUSD, 1)); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	if _, err := fmt.Fprintf(tw, "\nTOTAL\t%d\t%d\t%s\t%s\t%s\n",
		summary.TotalPrevGeneration, summary.TotalNewGeneration,
		greenops.FormatSigned(summary.TotalDeltaGeneration),
		greenops.FormatSigned(summary.TotalDeltaCO2Tonnes),
		formatSignedFloat(summary.TotalDeltaCostMillionUSD, 1)); err != nil {
		return fmt.Errorf("writing totals: %w", err)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	var footer strings.Builder
	fmt.Fprintf(&footer, "Net CO2 change: %s\n", greenops.FormatTonnes(float64(summary.TotalDeltaCO2Tonnes)))
	for _, resource := range units.SortedKeys(summary.DeltaImportsTonnes) {
		fmt.Fprintf(&footer, "Imports %s: %s t\n", resource,
			formatSignedFloat(summary.DeltaImportsTonnes[resource], 0))
	}
	if eq := greenops.Equivalency(float64(summary.TotalDeltaCO2Tonnes)); !eq.IsEmpty {
		footer.WriteString(eq.DisplayText + "\n")
	}
	for _, warning := range summary.Warnings {
		fmt.Fprintf(&footer, "Warning: %s\n", warning)
	}
	_, err := io.WriteString(w, "\n"+footer.String())
	return err
}

// RenderAnalysisAsJSON writes result as indented JSON.
func RenderAnalysisAsJSON(w io.Writer, result *AnalysisResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// formatSignedFloat prefixes positive values with "+" and renders values that
// round to zero without a sign.
func formatSignedFloat(v float64, precision int) string {
	if units.RoundTo(v, precision) > 0 {
		return "+" + greenops.FormatFloat(v, precision)
	}
	if units.RoundTo(math.Abs(v), precision) == 0 {
		return greenops.FormatFloat(0, precision)
	}
	return greenops.FormatFloat(v, precision)
}
