package engine

import (
	"context"
	"fmt"

	"github.com/rshade/energyprophet/internal/logging"
)

// Analyze enriches changes for the given country and, when a narrator is
// configured, asks it for a narrative. A narrative failure is recorded as a
// warning on the summary; only a failed country lookup or a nil change list
// returns an error.
func (e *Engine) Analyze(ctx context.Context, countryID string, changes []UserChange) (*AnalysisResult, error) {
	log := logging.FromContext(ctx)

	country, err := e.catalog.GetCountry(ctx, countryID)
	if err != nil {
		return nil, fmt.Errorf("analyzing %q: %w", countryID, err)
	}

	summary, err := e.Enrich(country, changes)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Ctx(ctx).
		Str("component", "engine").
		Str("operation", "analyze").
		Str("country", country.ID).
		Str("request_id", summary.RequestID).
		Int("changes", len(summary.Changes)).
		Int64("total_delta_twh", summary.TotalDeltaGeneration).
		Msg("analysis summary built")

	result := &AnalysisResult{Summary: summary}
	if e.narrator == nil {
		return result, nil
	}

	text, err := e.narrator.Narrate(ctx, country, summary)
	if err != nil {
		log.Warn().
			Ctx(ctx).
			Str("component", "engine").
			Str("operation", "analyze").
			Str("request_id", summary.RequestID).
			Err(err).
			Msg("narrative unavailable")
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("narrative unavailable: %v", err))
		return result, nil
	}

	result.Narrative = text
	result.NarrativeAvailable = true
	return result, nil
}
