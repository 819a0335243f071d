// Package narrative produces the prose analysis of an engine.AnalysisSummary
// through a text-generation service. Failures are reported as ErrNoNarrative
// so callers can keep the numeric summary and show FailureMessage instead.
package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rshade/energyprophet/internal/catalog"
	"github.com/rshade/energyprophet/internal/engine"
	"github.com/rshade/energyprophet/internal/logging"
	"github.com/rshade/energyprophet/internal/narrative/cache"
)

// FailureMessage is shown to users in place of a narrative that could not be
// generated.
const FailureMessage = "The AI service is temporarily unavailable or has reached a rate limit. " +
	"Please try again later."

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 60 * time.Second

var (
	// ErrNoNarrative wraps every generation failure.
	ErrNoNarrative = errors.New("no narrative available")

	// ErrEmptyResponse is returned when the service answers with no text.
	ErrEmptyResponse = errors.New("empty response from text generation service")

	// ErrMissingAPIKey is returned when a GenAI generator is built without a key.
	ErrMissingAPIKey = errors.New("GOOGLE_API_KEY is not set")
)

// Generator submits a prompt and returns the generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Generate calls gen with a timeout. Any failure, including an empty answer,
// is returned wrapped in ErrNoNarrative.
func Generate(ctx context.Context, gen Generator, prompt string, timeout time.Duration) (string, error) {
	if gen == nil {
		return "", fmt.Errorf("%w: no generator configured", ErrNoNarrative)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	text, err := gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoNarrative, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: %w", ErrNoNarrative, ErrEmptyResponse)
	}
	return text, nil
}

// Narrator builds prompts from analysis summaries and sends them to a
// Generator. It implements engine.Narrator.
type Narrator struct {
	gen     Generator
	timeout time.Duration

	store Store
	model string
}

// Store caches generated narratives. *cache.FileStore implements it.
type Store interface {
	Get(key string) (*cache.Entry, error)
	Set(key, model, text string) error
}

// NewNarrator returns a Narrator over gen. A timeout of 0 selects
// DefaultTimeout.
func NewNarrator(gen Generator, timeout time.Duration) *Narrator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Narrator{gen: gen, timeout: timeout}
}

// WithCache makes n consult store before generating and save successful
// narratives to it. model is part of the cache key.
func (n *Narrator) WithCache(store Store, model string) *Narrator {
	n.store = store
	n.model = model
	return n
}

var _ engine.Narrator = (*Narrator)(nil)

// Narrate implements engine.Narrator.
func (n *Narrator) Narrate(ctx context.Context, country *catalog.Country, summary *engine.AnalysisSummary) (string, error) {
	log := logging.FromContext(ctx)
	start := time.Now()

	prompt, err := BuildPrompt(country, summary)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoNarrative, err)
	}

	key := n.cacheKey(country, summary)
	if key != "" {
		if entry, getErr := n.store.Get(key); getErr == nil {
			log.Debug().
				Ctx(ctx).
				Str("component", "narrative").
				Str("operation", "narrate").
				Str("cache_key", key).
				Msg("narrative served from cache")
			return entry.Text, nil
		}
	}

	text, err := Generate(ctx, n.gen, prompt, n.timeout)
	event := log.Debug()
	if err != nil {
		event = log.Warn().Err(err)
	}
	event.
		Ctx(ctx).
		Str("component", "narrative").
		Str("operation", "narrate").
		Int("prompt_bytes", len(prompt)).
		Int("response_bytes", len(text)).
		Dur("duration", time.Since(start)).
		Msg("narrative generation finished")

	if err == nil && key != "" {
		if setErr := n.store.Set(key, n.model, text); setErr != nil {
			log.Warn().
				Ctx(ctx).
				Str("component", "narrative").
				Err(setErr).
				Msg("failed to cache narrative")
		}
	}

	return text, err
}

// cacheKey identifies an analysis independently of its request id and time.
// It returns "" when caching is off or the inputs cannot be encoded.
func (n *Narrator) cacheKey(country *catalog.Country, summary *engine.AnalysisSummary) string {
	if n.store == nil || summary == nil {
		return ""
	}
	stable := *summary
	stable.RequestID = ""
	stable.RequestedAt = time.Time{}

	countryJSON, err := json.Marshal(country)
	if err != nil {
		return ""
	}
	summaryJSON, err := json.Marshal(stable)
	if err != nil {
		return ""
	}
	return cache.Key(n.model, string(countryJSON), string(summaryJSON))
}
