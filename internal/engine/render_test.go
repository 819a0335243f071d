package engine

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/energyprophet/internal/greenops"
)

func sampleMix() *ProjectedMix {
	return &ProjectedMix{
		CountryID:           "tst",
		CountryName:         "Testland",
		BaseYear:            2025,
		TargetYear:          2050,
		Years:               25,
		GrowthRate:          0.02,
		BaseGeneration:      100,
		ProjectedGeneration: 164.06,
		Shares:              map[string]float64{"coal": 0.25, "solar": 0.75},
		Generation:          map[string]float64{"coal": 41.015, "solar": 123.045},
		TotalCO2Mt:          36.914,
		TotalCostBillionUSD: 4.1,
		ImportsTonnes:       map[string]float64{"Coal": 16406000},
		Warnings:            []string{"emission unit for \"x\" could not be resolved"},
	}
}

func TestFormatSignedTWh(t *testing.T) {
	tests := []struct {
		name      string
		v         float64
		precision int
		want      string
	}{
		{"positive", 12.345, 2, "+12.35"},
		{"negative", -1234.5, 1, "-1,234.5"},
		{"zero", 0, 2, "0.00"},
		{"rounds to zero", -0.001, 2, "0.00"},
		{"whole", 7, 0, "+7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSignedTWh(tt.v, tt.precision))
		})
	}
}

func TestRenderMixAsTable(t *testing.T) {
	t.Run("without baseline", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderMixAsTable(&buf, sampleMix(), nil, 2))

		out := buf.String()
		assert.Contains(t, out, "Testland (tst)")
		assert.Contains(t, out, "2025 -> 2050")
		assert.Contains(t, out, "TECHNOLOGY")
		assert.NotContains(t, out, "DELTA")
		assert.Contains(t, out, "123.05")
		assert.Contains(t, out, "36.914 Mt CO2")
		assert.Contains(t, out, "16,406,000 t")
		assert.Contains(t, out, "WARNING")

		// Rows are sorted by technology id.
		assert.Less(t, strings.Index(out, "coal"), strings.Index(out, "solar"))
	})

	t.Run("with baseline", func(t *testing.T) {
		baseline := &ProjectedMix{
			Generation:          map[string]float64{"coal": 60, "solar": 40},
			TotalCO2Mt:          54,
			TotalCostBillionUSD: 3,
		}
		var buf bytes.Buffer
		require.NoError(t, RenderMixAsTable(&buf, sampleMix(), baseline, 1))

		out := buf.String()
		assert.Contains(t, out, "DELTA")
		assert.Contains(t, out, "-19.0")
		assert.Contains(t, out, "+83.0")
		assert.Contains(t, out, "(-17.086)")
		assert.Contains(t, out, "(+1.100)")
	})

	t.Run("nil mix writes nothing", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderMixAsTable(&buf, nil, nil, 2))
		assert.Empty(t, buf.String())
	})
}

func TestRenderMixesAsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderMixesAsJSON(&buf, []ProjectedMix{*sampleMix()}, nil))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "generated_at")
	assert.NotContains(t, decoded, "baselines")

	mixes, ok := decoded["mixes"].([]any)
	require.True(t, ok)
	require.Len(t, mixes, 1)
	first, ok := mixes[0].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 36.914, first["total_co2_mt"], 1e-9)

	buf.Reset()
	require.NoError(t, RenderMixesAsJSON(&buf, nil, nil))
	assert.Contains(t, buf.String(), `"mixes": []`)
}

func TestRenderSummaryAsTable(t *testing.T) {
	summary, err := EnrichAt(builtinCountry(t, "deu"), []UserChange{
		{ID: "coal", NewGeneration: ptr(12.6)},
		{ID: "fusion", PrevGeneration: ptr(0.0), NewGeneration: ptr(1.0)},
	}, fixedNow)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderSummaryAsTable(&buf, summary))

	out := buf.String()
	assert.Contains(t, out, "Germany (deu)")
	assert.Contains(t, out, "+11,700,000")
	assert.Contains(t, out, "+520.0")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "Net CO2 change: ~11.7 million tCO2")
	assert.Contains(t, out, greenops.Equivalency(11700000).DisplayText)
	assert.Contains(t, out, "Warning:")
	assert.Contains(t, out, "Imports Coal: +5,200,000 t")
}

func TestRenderAnalysisAsJSON(t *testing.T) {
	result := &AnalysisResult{
		Summary:            &AnalysisSummary{CountryID: "tst", Warnings: []string{}},
		Narrative:          "Coal goes up.",
		NarrativeAvailable: true,
	}
	var buf bytes.Buffer
	require.NoError(t, RenderAnalysisAsJSON(&buf, result))

	var decoded AnalysisResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "tst", decoded.Summary.CountryID)
	assert.True(t, decoded.NarrativeAvailable)
	assert.Equal(t, "Coal goes up.", decoded.Narrative)
}
