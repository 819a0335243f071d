package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rshade/energyprophet/internal/catalog"
	"github.com/rshade/energyprophet/internal/logging"
)

const (
	// DefaultGrowthRate is the annual demand growth applied when none is
	// configured.
	DefaultGrowthRate = 0.02

	// DefaultTargetYear is used when a request does not name one.
	DefaultTargetYear = 2050

	// simulateConcurrencyLimit bounds SimulateMany fan-out.
	simulateConcurrencyLimit = 8
)

// Engine runs simulations and analyses against a read-only catalog.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	catalog    catalog.Catalog
	narrator   Narrator
	growthRate float64
	targetYear int
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithGrowthRate sets the annual demand growth rate.
func WithGrowthRate(rate float64) Option {
	return func(e *Engine) { e.growthRate = rate }
}

// WithTargetYear sets the target year used when a request has none.
func WithTargetYear(year int) Option {
	return func(e *Engine) {
		if year > 0 {
			e.targetYear = year
		}
	}
}

// WithNarrator sets the narrative generator used by Analyze. Without one,
// Analyze returns summaries only.
func WithNarrator(n Narrator) Option {
	return func(e *Engine) { e.narrator = n }
}

// WithClock overrides the time source. Exposed for testing.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an Engine over c.
func New(c catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:    c,
		growthRate: DefaultGrowthRate,
		targetYear: DefaultTargetYear,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GrowthRate returns the configured annual growth rate.
func (e *Engine) GrowthRate() float64 {
	return e.growthRate
}

// TargetYear returns the default target year.
func (e *Engine) TargetYear() int {
	return e.targetYear
}

// Country looks up a country in the engine's catalog.
func (e *Engine) Country(ctx context.Context, id string) (*catalog.Country, error) {
	return e.catalog.GetCountry(ctx, id)
}

// Simulate projects the requested country to its target year under the
// requested shares.
//
// Share ids that the country lacks but the global technology catalog knows
// are added to the mix with a current share of 0. Other unknown ids are
// ignored with a warning.
func (e *Engine) Simulate(ctx context.Context, input PolicyInput) (*ProjectedMix, error) {
	log := logging.FromContext(ctx)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	country, err := e.catalog.GetCountry(ctx, input.CountryID)
	if err != nil {
		return nil, fmt.Errorf("simulating %q: %w", input.CountryID, err)
	}

	targetYear := input.TargetYear
	if targetYear <= 0 {
		targetYear = e.targetYear
	}
	rate := e.growthRate
	if input.GrowthRate != nil {
		rate = *input.GrowthRate
	}

	now := e.now().UTC()
	years := YearsUntil(targetYear, now)

	log.Debug().
		Ctx(ctx).
		Str("component", "engine").
		Str("operation", "simulate").
		Str("country", country.ID).
		Int("target_year", targetYear).
		Int("years", years).
		Float64("growth_rate", rate).
		Int("share_count", len(input.TargetShares)).
		Msg("starting simulation")

	extended, warnings := e.withPolicyTechnologies(ctx, country, input.TargetShares)

	projected := Project(country.TotalGeneration, rate, years)
	shares := NormalizeShares(input.TargetShares, extended.TechnologyIDs())

	mix := Synthesize(extended, shares, projected)
	mix.BaseYear = now.Year()
	mix.TargetYear = targetYear
	mix.Years = years
	mix.GrowthRate = rate
	mix.Warnings = append(warnings, mix.Warnings...)

	log.Info().
		Ctx(ctx).
		Str("component", "engine").
		Str("operation", "simulate").
		Str("country", country.ID).
		Float64("projected_twh", projected).
		Float64("co2_mt", mix.TotalCO2Mt).
		Float64("cost_busd", mix.TotalCostBillionUSD).
		Int("warnings", len(mix.Warnings)).
		Msg("simulation complete")

	return &mix, nil
}

// SimulateMany runs independent simulations concurrently. Results are in input
// order; the first failure cancels the rest.
func (e *Engine) SimulateMany(ctx context.Context, inputs []PolicyInput) ([]*ProjectedMix, error) {
	results := make([]*ProjectedMix, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(simulateConcurrencyLimit)

	for i, input := range inputs {
		g.Go(func() error {
			mix, err := e.Simulate(gctx, input)
			if err != nil {
				return err
			}
			results[i] = mix
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Baseline returns the country's current mix.
func (e *Engine) Baseline(ctx context.Context, countryID string) (*ProjectedMix, error) {
	country, err := e.catalog.GetCountry(ctx, countryID)
	if err != nil {
		return nil, fmt.Errorf("baseline for %q: %w", countryID, err)
	}
	mix := Baseline(country)
	year := e.now().UTC().Year()
	mix.BaseYear = year
	mix.TargetYear = year
	return &mix, nil
}

// Enrich diffs changes against country using the engine clock.
func (e *Engine) Enrich(country *catalog.Country, changes []UserChange) (*AnalysisSummary, error) {
	summary, err := EnrichAt(country, changes, e.now())
	if err != nil {
		return nil, err
	}
	summary.TargetYear = e.targetYear
	return summary, nil
}

// withPolicyTechnologies returns country extended with the global-catalog
// technologies that shares names but the country lacks.
func (e *Engine) withPolicyTechnologies(
	ctx context.Context,
	country *catalog.Country,
	shares map[string]float64,
) (*catalog.Country, []string) {
	var missing []string
	for id := range shares {
		if country.Technology(id) == nil {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return country, nil
	}

	log := logging.FromContext(ctx)
	techs, err := e.catalog.Technologies(ctx)
	if err != nil {
		log.Warn().
			Ctx(ctx).
			Str("component", "engine").
			Str("country", country.ID).
			Err(err).
			Msg("failed to load technology catalog")
		techs = nil
	}

	extended := country.Clone()
	var warnings []string
	slices.Sort(missing)
	for _, id := range missing {
		if extended.Technology(id) != nil {
			continue
		}
		added := false
		for _, t := range techs {
			if strings.EqualFold(t.ID, id) {
				t.Share = 0
				extended.Technologies = append(extended.Technologies, t)
				added = true
				break
			}
		}
		if !added {
			warnings = append(warnings, fmt.Sprintf("unknown technology %q ignored", id))
		}
	}
	return &extended, warnings
}
