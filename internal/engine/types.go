// Package engine projects a country's electricity mix to a target year and
// diffs user-proposed generation changes against the current mix.
//
// Everything except the Engine methods is a pure function over immutable
// inputs: results are freshly allocated and safe to use from any goroutine.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rshade/energyprophet/internal/catalog"
	"github.com/rshade/energyprophet/internal/greenops"
)

// Caller contract violations. Data-quality problems never produce errors;
// they become warnings on the result instead.
var (
	// ErrNilCountry is returned when enrichment is called without a country.
	ErrNilCountry = errors.New("country cannot be nil")

	// ErrNilChanges is returned when enrichment is called with a nil change list.
	ErrNilChanges = errors.New("changes cannot be nil")
)

// PolicyInput is a one-shot simulation request.
type PolicyInput struct {
	CountryID string `json:"country_id" yaml:"country_id"`

	// TargetShares maps technology id to desired share. It may be partial and
	// need not sum to 1.
	TargetShares map[string]float64 `json:"target_shares" yaml:"target_shares"`

	// TargetYear of 0 or less selects the engine default.
	TargetYear int `json:"target_year,omitempty" yaml:"target_year,omitempty"`

	// GrowthRate overrides the engine's annual demand growth when set.
	GrowthRate *float64 `json:"growth_rate,omitempty" yaml:"growth_rate,omitempty"`
}

// ProjectedMix is the synthesized generation mix for one country and year.
type ProjectedMix struct {
	CountryID   string `json:"country_id"`
	CountryName string `json:"country_name,omitempty"`

	BaseYear   int     `json:"base_year,omitempty"`
	TargetYear int     `json:"target_year"`
	Years      int     `json:"years"`
	GrowthRate float64 `json:"growth_rate"`

	BaseGeneration      float64 `json:"base_generation_twh"`
	ProjectedGeneration float64 `json:"projected_generation_twh"`

	// Shares is the normalized share map the mix was built from.
	Shares map[string]float64 `json:"shares"`

	// Generation is per-technology generation in TWh.
	Generation map[string]float64 `json:"generation_twh"`

	TotalCO2Mt          float64            `json:"total_co2_mt"`
	TotalCostBillionUSD float64            `json:"total_cost_billion_usd"`
	ImportsTonnes       map[string]float64 `json:"imports_tonnes"`

	Warnings []string `json:"warnings,omitempty"`
}

// UserChange is one proposed edit to a technology's generation.
type UserChange struct {
	ID string `json:"id"`

	PrevShare      *float64 `json:"prev_share,omitempty"`
	PrevGeneration *float64 `json:"prev_twh,omitempty"`

	NewShare      *float64 `json:"new_share,omitempty"`
	NewGeneration *float64 `json:"new_twh,omitempty"`
}

// EnrichedChange is a UserChange resolved against the catalog. Generation
// values are whole TWh and DeltaGeneration is always NewGeneration minus
// PrevGeneration.
type EnrichedChange struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	PrevShare float64 `json:"prev_share"`
	NewShare  float64 `json:"new_share"`

	PrevGeneration  int64 `json:"prev_twh"`
	NewGeneration   int64 `json:"new_twh"`
	DeltaGeneration int64 `json:"delta_twh"`

	EmissionFactor *float64              `json:"emission_factor"`
	EmissionUnit   greenops.EmissionUnit `json:"emission_unit"`

	// DeltaCO2Tonnes is nil when the emission factor could not be resolved.
	DeltaCO2Tonnes *int64 `json:"delta_co2_tonnes"`

	DeltaCostMillionUSD float64 `json:"delta_cost_million_usd"`
	DeltaImportsTonnes  float64 `json:"delta_imports_tonnes,omitempty"`
	ImportResource      string  `json:"import_resource,omitempty"`
}

// AnalysisSummary is the diff report handed to the narrative generator.
type AnalysisSummary struct {
	RequestID   string    `json:"request_id"`
	RequestedAt time.Time `json:"requested_at_utc"`

	CountryID              string  `json:"country_id"`
	CountryName            string  `json:"country_name"`
	CountryTotalGeneration float64 `json:"country_total_generation_twh"`
	TargetYear             int     `json:"target_year,omitempty"`

	Changes []EnrichedChange `json:"changes"`

	// Totals are sums of the per-change integers above.
	TotalPrevGeneration  int64 `json:"total_prev_twh"`
	TotalNewGeneration   int64 `json:"total_new_twh"`
	TotalDeltaGeneration int64 `json:"total_delta_twh"`

	// TotalDeltaCO2Tonnes sums the changes whose delta CO2 is known.
	TotalDeltaCO2Tonnes int64 `json:"total_delta_co2_tonnes"`

	TotalDeltaCostMillionUSD float64            `json:"total_delta_cost_million_usd"`
	DeltaImportsTonnes       map[string]float64 `json:"delta_imports_tonnes,omitempty"`

	Warnings []string `json:"warnings"`
}

// AnalysisResult pairs a summary with its narrative. A missing narrative
// never discards the summary.
type AnalysisResult struct {
	Summary            *AnalysisSummary `json:"summary"`
	Narrative          string           `json:"narrative,omitempty"`
	NarrativeAvailable bool             `json:"narrative_available"`
}

// Narrator turns an analysis summary into prose.
type Narrator interface {
	Narrate(ctx context.Context, country *catalog.Country, summary *AnalysisSummary) (string, error)
}
