package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/energyprophet/internal/balancer"
	"github.com/rshade/energyprophet/internal/catalog"
	"github.com/rshade/energyprophet/internal/engine"
)

func TestRenderGenerationDelta(t *testing.T) {
	t.Run("increase", func(t *testing.T) {
		result := RenderGenerationDelta(2.5)
		assert.Contains(t, result, "+2.50")
		assert.Contains(t, result, IconArrowUp)
	})

	t.Run("decrease", func(t *testing.T) {
		result := RenderGenerationDelta(-1.25)
		assert.Contains(t, result, "-1.25")
		assert.Contains(t, result, IconArrowDown)
	})

	t.Run("noise renders as no change", func(t *testing.T) {
		result := RenderGenerationDelta(0.001)
		assert.Contains(t, result, IconArrowRight)
		assert.Contains(t, result, "0.00")
	})
}

func TestRenderBalanceHeader(t *testing.T) {
	result := RenderBalanceHeader("France", "fra", 2040, 612.345)
	assert.Contains(t, result, "France")
	assert.Contains(t, result, "2040")
	assert.Contains(t, result, "612.35 TWh")

	result = RenderBalanceHeader("", "fra", 2040, 1)
	assert.Contains(t, result, "fra")
}

func TestRenderBalanceStatus(t *testing.T) {
	country, err := catalog.Builtin().GetCountry(context.Background(), "che")
	require.NoError(t, err)

	under := balancer.NewSession(country, 80, nil, balancer.DefaultOptions())
	assert.Contains(t, RenderBalanceStatus(under, balancer.StateUnbalanced), "still to assign")

	over := balancer.NewSession(country, 70, nil, balancer.DefaultOptions())
	assert.Contains(t, RenderBalanceStatus(over, balancer.StateUnbalanced), "over target")

	assert.Contains(t, RenderBalanceStatus(under, balancer.StateBalanced), IconCheck)
}

func TestRenderTechnologyTable(t *testing.T) {
	country, err := catalog.Builtin().GetCountry(context.Background(), "che")
	require.NoError(t, err)
	extra := []catalog.Technology{{ID: "geothermal", Name: "Deep Geothermal Energy Plants"}}
	s := balancer.NewSession(country, 80, extra, balancer.DefaultOptions())

	table := RenderTechnologyTable(s, 1)
	assert.Contains(t, table, "Technology")
	assert.Contains(t, table, "Nuclear")
	assert.Contains(t, table, IconCursor)
	assert.Contains(t, table, "Deep Geotherm...")
}

func TestRenderAnalysisResult(t *testing.T) {
	assert.Contains(t, RenderAnalysisResult(nil, 80), "No analysis")

	result := &engine.AnalysisResult{
		Summary:            &engine.AnalysisSummary{CountryID: "che", CountryName: "Switzerland"},
		Narrative:          "Feasible.",
		NarrativeAvailable: true,
	}
	out := RenderAnalysisResult(result, 0)
	assert.Contains(t, out, "Switzerland")
	assert.Contains(t, out, "Feasible.")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
