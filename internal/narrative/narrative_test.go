package narrative

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/energyprophet/internal/catalog"
	"github.com/rshade/energyprophet/internal/engine"
	"github.com/rshade/energyprophet/internal/narrative/cache"
)

type fakeGenerator struct {
	text   string
	err    error
	block  bool
	prompt string
	calls  int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		gen     Generator
		want    string
		wantErr error
	}{
		{name: "success is trimmed", gen: &fakeGenerator{text: "  Feasible.\n"}, want: "Feasible."},
		{name: "empty response", gen: &fakeGenerator{text: " \n "}, wantErr: ErrEmptyResponse},
		{name: "service failure", gen: &fakeGenerator{err: errors.New("429")}, wantErr: ErrNoNarrative},
		{name: "timeout", gen: &fakeGenerator{block: true}, wantErr: context.DeadlineExceeded},
		{name: "no generator", gen: nil, wantErr: ErrNoNarrative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate(ctx, tt.gen, "prompt", 20*time.Millisecond)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrNoNarrative, "every failure is a missing narrative")
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNarrator_Narrate(t *testing.T) {
	ctx := context.Background()
	country, err := catalog.Builtin().GetCountry(ctx, "fra")
	require.NoError(t, err)

	summary, err := engine.EnrichAt(country, []engine.UserChange{
		{ID: "gas", PrevGeneration: ptr(32.19), NewGeneration: ptr(10.0)},
	}, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	gen := &fakeGenerator{text: "To reach the required electricity demand for 2050 in France..."}
	n := NewNarrator(gen, 0)
	assert.Equal(t, DefaultTimeout, n.timeout)

	text, err := n.Narrate(ctx, country, summary)
	require.NoError(t, err)
	assert.Equal(t, gen.text, text)
	assert.Contains(t, gen.prompt, "France")

	_, err = n.Narrate(ctx, nil, summary)
	require.ErrorIs(t, err, ErrNoNarrative)
	require.ErrorIs(t, err, engine.ErrNilCountry)
}

func TestNarrator_WithEngine(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{err: errors.New("rate limited")}
	e := engine.New(catalog.Builtin(), engine.WithNarrator(NewNarrator(gen, time.Second)))

	result, err := e.Analyze(ctx, "ita", []engine.UserChange{{ID: "solar", PrevGeneration: ptr(37.0), NewGeneration: ptr(60.0)}})
	require.NoError(t, err)
	assert.False(t, result.NarrativeAvailable)
	assert.Equal(t, int64(23), result.Summary.TotalDeltaGeneration)
	require.NotEmpty(t, result.Summary.Warnings)
	assert.Contains(t, result.Summary.Warnings[len(result.Summary.Warnings)-1], "rate limited")
}

func ptr[T any](v T) *T { return &v }

func TestNarrator_Cache(t *testing.T) {
	ctx := context.Background()
	country, err := catalog.Builtin().GetCountry(ctx, "ita")
	require.NoError(t, err)

	changes := []engine.UserChange{{ID: "solar", PrevGeneration: ptr(30.0), NewGeneration: ptr(45.0)}}
	first, err := engine.EnrichAt(country, changes, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	second, err := engine.EnrichAt(country, changes, time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotEqual(t, first.RequestID, second.RequestID)

	store, err := cache.NewFileStore(t.TempDir(), true, time.Hour)
	require.NoError(t, err)

	gen := &fakeGenerator{text: "More solar."}
	n := NewNarrator(gen, time.Second).WithCache(store, "gemini-2.0-flash")

	text, err := n.Narrate(ctx, country, first)
	require.NoError(t, err)
	assert.Equal(t, "More solar.", text)

	text, err = n.Narrate(ctx, country, second)
	require.NoError(t, err)
	assert.Equal(t, "More solar.", text)
	assert.Equal(t, 1, gen.calls, "identical analyses reuse the cached narrative")

	// A different model is a different key.
	other := NewNarrator(gen, time.Second).WithCache(store, "gemini-2.5-pro")
	_, err = other.Narrate(ctx, country, second)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
}

func TestNarrator_FailuresAreNotCached(t *testing.T) {
	ctx := context.Background()
	country, err := catalog.Builtin().GetCountry(ctx, "ita")
	require.NoError(t, err)
	summary, err := engine.EnrichAt(country, []engine.UserChange{}, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	store, err := cache.NewFileStore(t.TempDir(), true, time.Hour)
	require.NoError(t, err)

	gen := &fakeGenerator{err: errors.New("quota")}
	n := NewNarrator(gen, time.Second).WithCache(store, "m")

	_, err = n.Narrate(ctx, country, summary)
	require.ErrorIs(t, err, ErrNoNarrative)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}
