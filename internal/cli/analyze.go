package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/energyprophet/internal/config"
	"github.com/rshade/energyprophet/internal/engine"
	"github.com/rshade/energyprophet/internal/narrative"
)

// ErrNoChanges is returned when analyze is run without a --changes source.
var ErrNoChanges = errors.New("--changes is required (a JSON file, or - for stdin)")

// analysisRequest is the object form of a changes file. A bare JSON array of
// changes is accepted as well.
type analysisRequest struct {
	CountryID string              `json:"country_id"`
	Changes   []engine.UserChange `json:"changes"`
}

type analyzeParams struct {
	country     string
	changes     string
	noNarrative bool
	output      string
}

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	var params analyzeParams

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze proposed generation changes",
		Long: `Diffs proposed per-technology generation changes against a country's current
mix and reports the change in generation, CO2, cost and fuel imports.

When GOOGLE_API_KEY is set, a narrative assessment of the scenario is
generated as well. A failed narrative never hides the numeric summary.

The changes file is either a JSON array of changes or an object with
"country_id" and "changes". Each change has an "id" and any of "prev_twh",
"new_twh", "prev_share" and "new_share".`,
		Example: `  # Analyze changes from a file
  energyprophet analyze --country deu --changes changes.json

  # Read changes from stdin, skip the narrative
  cat changes.json | energyprophet analyze --country deu --changes - --no-narrative`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, params)
		},
	}

	cmd.Flags().StringVar(&params.country, "country", "", "country id (default from the changes file)")
	cmd.Flags().StringVar(&params.changes, "changes", "", "JSON changes file, or - for stdin")
	cmd.Flags().BoolVar(&params.noNarrative, "no-narrative", false, "skip the narrative assessment")
	cmd.Flags().StringVar(&params.output, "output", "", "output format: table or json (default from config)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, params analyzeParams) error {
	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()

	format := resolveFormat(params.output, cfg)
	if err := validateFormat(format); err != nil {
		return err
	}
	if params.changes == "" {
		return ErrNoChanges
	}

	req, err := readAnalysisRequest(cmd.InOrStdin(), params.changes)
	if err != nil {
		return err
	}
	countryID := strings.TrimSpace(params.country)
	if countryID == "" {
		countryID = req.CountryID
	}
	if countryID == "" {
		return ErrNoCountry
	}

	narrate := !params.noNarrative
	eng, _, err := newEngine(ctx, cfg, narrate)
	if err != nil {
		return err
	}

	result, err := eng.Analyze(ctx, countryID, req.Changes)
	if err != nil {
		return err
	}

	logger.Debug().Ctx(ctx).
		Str("operation", "analyze").
		Str("request_id", result.Summary.RequestID).
		Bool("narrative", result.NarrativeAvailable).
		Msg("analysis finished")

	if format == config.FormatJSON {
		return engine.RenderAnalysisAsJSON(cmd.OutOrStdout(), result)
	}
	return renderAnalysis(cmd.OutOrStdout(), result, narrate, narrativeConfigured(cfg))
}

// renderAnalysis writes the summary table followed by the narrative section.
func renderAnalysis(w io.Writer, result *engine.AnalysisResult, narrate, configured bool) error {
	if err := engine.RenderSummaryAsTable(w, result.Summary); err != nil {
		return err
	}
	if !narrate {
		return nil
	}

	var text string
	switch {
	case result.NarrativeAvailable:
		text = result.Narrative
	case !configured:
		text = "Narrative disabled: set " + config.EnvAPIKey + " to enable it."
	default:
		text = narrative.FailureMessage
	}
	_, err := fmt.Fprintf(w, "\nANALYSIS\n========\n%s\n", text)
	return err
}

// readAnalysisRequest reads a changes document from path, or from stdin when
// path is "-".
func readAnalysisRequest(stdin io.Reader, path string) (*analysisRequest, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading changes: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("changes document is empty")
	}

	var req analysisRequest
	if data[0] == '[' {
		err = json.Unmarshal(data, &req.Changes)
	} else {
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing changes: %w", err)
	}
	if req.Changes == nil {
		req.Changes = []engine.UserChange{}
	}
	return &req, nil
}
