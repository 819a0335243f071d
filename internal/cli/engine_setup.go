package cli

import (
	"context"
	"fmt"

	"github.com/rshade/energyprophet/internal/catalog"
	"github.com/rshade/energyprophet/internal/config"
	"github.com/rshade/energyprophet/internal/engine"
	"github.com/rshade/energyprophet/internal/logging"
	"github.com/rshade/energyprophet/internal/narrative"
	"github.com/rshade/energyprophet/internal/narrative/cache"
)

// openCatalog opens the configured catalog source.
func openCatalog(ctx context.Context, cfg *config.Config) (*catalog.Memory, error) {
	cat, err := catalog.Open(ctx, cfg.Catalog.Source)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %q: %w", cfg.Catalog.Source, err)
	}
	logging.FromContext(ctx).Debug().
		Ctx(ctx).
		Str("component", "cli").
		Str("source", cfg.Catalog.Source).
		Int("countries", cat.Len()).
		Msg("catalog opened")
	return cat, nil
}

// newEngine builds an engine over the configured catalog. When narrate is set
// and the narrative service is configured, Analyze also produces prose.
func newEngine(ctx context.Context, cfg *config.Config, narrate bool) (*engine.Engine, *catalog.Memory, error) {
	cat, err := openCatalog(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []engine.Option{
		engine.WithGrowthRate(cfg.Simulation.GrowthRate),
		engine.WithTargetYear(cfg.Simulation.TargetYear),
	}
	if narrate {
		if n := newNarrator(ctx, cfg); n != nil {
			opts = append(opts, engine.WithNarrator(n))
		}
	}
	return engine.New(cat, opts...), cat, nil
}

// newNarrator returns nil when narratives are disabled or no API key is set.
// Setup failures are logged; analysis then proceeds without a narrative.
func newNarrator(ctx context.Context, cfg *config.Config) *narrative.Narrator {
	log := logging.FromContext(ctx)

	if !narrativeConfigured(cfg) {
		log.Debug().Ctx(ctx).Str("component", "cli").Msg("narratives disabled or no API key configured")
		return nil
	}

	gen, err := narrative.NewGenAI(ctx, cfg.GenAIConfig())
	if err != nil {
		log.Warn().Ctx(ctx).Str("component", "cli").Err(err).Msg("narrative generator unavailable")
		return nil
	}
	n := narrative.NewNarrator(gen, cfg.NarrativeTimeout())

	if !cfg.Narrative.CacheEnabled {
		return n
	}
	store, err := openNarrativeCache(cfg)
	if err != nil {
		log.Warn().Ctx(ctx).Str("component", "cli").Err(err).Msg("narrative cache unavailable")
		return n
	}
	return n.WithCache(store, gen.Model())
}

// openNarrativeCache opens the file cache under the config directory.
func openNarrativeCache(cfg *config.Config) (*cache.FileStore, error) {
	dir, err := config.CacheDir()
	if err != nil {
		return nil, err
	}
	return cache.NewFileStore(dir, cfg.Narrative.CacheEnabled, cfg.NarrativeCacheTTL())
}

// narrativeConfigured reports whether narratives are enabled and have a key.
func narrativeConfigured(cfg *config.Config) bool {
	return cfg.Narrative.Enabled && cfg.Narrative.APIKey != ""
}
