package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/energyprophet/internal/catalog"
	"github.com/rshade/energyprophet/internal/greenops"
)

var fixedNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func builtinCountry(t *testing.T, id string) *catalog.Country {
	t.Helper()
	country, err := catalog.Builtin().GetCountry(context.Background(), id)
	require.NoError(t, err)
	return country
}

func TestEnrichAt_CoalScenario(t *testing.T) {
	country := builtinCountry(t, "deu")

	summary, err := EnrichAt(country, []UserChange{{ID: "coal", NewGeneration: ptr(12.6)}}, fixedNow)
	require.NoError(t, err)
	require.Len(t, summary.Changes, 1)

	c := summary.Changes[0]
	assert.Equal(t, "Coal", c.Name)
	assert.Equal(t, int64(0), c.PrevGeneration)
	assert.Equal(t, int64(13), c.NewGeneration)
	assert.Equal(t, int64(13), c.DeltaGeneration)
	require.NotNil(t, c.EmissionFactor)
	assert.InDelta(t, 0.9, *c.EmissionFactor, 1e-12)
	assert.Equal(t, greenops.UnitTonnesPerMWh, c.EmissionUnit)
	require.NotNil(t, c.DeltaCO2Tonnes)
	assert.Equal(t, int64(11_700_000), *c.DeltaCO2Tonnes)
	assert.InDelta(t, 520.0, c.DeltaCostMillionUSD, 1e-9)
	assert.Equal(t, "Coal", c.ImportResource)
	assert.InDelta(t, 5.2e6, c.DeltaImportsTonnes, 1e-6)

	assert.Equal(t, "deu", summary.CountryID)
	assert.Equal(t, "Germany", summary.CountryName)
	assert.Equal(t, fixedNow, summary.RequestedAt)
	assert.NotEmpty(t, summary.RequestID)
	assert.Equal(t, int64(11_700_000), summary.TotalDeltaCO2Tonnes)
	assert.Equal(t, map[string]float64{"Coal": 5.2e6}, summary.DeltaImportsTonnes)
	assert.Empty(t, summary.Warnings)
}

func TestEnrichAt_KgFactor(t *testing.T) {
	country := testCountry()

	summary, err := EnrichAt(country, []UserChange{
		{ID: "gas", PrevGeneration: ptr(30.0), NewGeneration: ptr(28.0)},
	}, fixedNow)
	require.NoError(t, err)

	c := summary.Changes[0]
	assert.Equal(t, int64(-2), c.DeltaGeneration)
	assert.Equal(t, greenops.UnitKgPerMWh, c.EmissionUnit)
	require.NotNil(t, c.DeltaCO2Tonnes)
	// -2 TWh * 1e6 MWh * 500 kg / 1000
	assert.Equal(t, int64(-1_000_000), *c.DeltaCO2Tonnes)
	assert.InDelta(t, -100.0, c.DeltaCostMillionUSD, 1e-9)
}

func TestEnrichAt_IntegerConsistency(t *testing.T) {
	country := builtinCountry(t, "deu")
	changes := []UserChange{
		{ID: "hydro", PrevGeneration: ptr(21.4), NewGeneration: ptr(21.6)},
		{ID: "solar", PrevGeneration: ptr(69.5), NewGeneration: ptr(70.49)},
		{ID: "wind", PrevGeneration: ptr(133.92), NewGeneration: ptr(150.5)},
		{ID: "gas", PrevGeneration: ptr(64.8)},
		{ID: "bio", PrevGeneration: ptr(43.2), NewGeneration: ptr(-0.4)},
	}

	summary, err := EnrichAt(country, changes, fixedNow)
	require.NoError(t, err)
	require.Len(t, summary.Changes, len(changes))

	want := []struct{ prev, next, delta int64 }{
		{21, 22, 1},
		{70, 70, 0},
		{134, 151, 17},
		{65, 65, 0},
		{43, 0, -43},
	}

	var prevSum, newSum, deltaSum int64
	for i, c := range summary.Changes {
		assert.Equal(t, want[i].prev, c.PrevGeneration, c.ID)
		assert.Equal(t, want[i].next, c.NewGeneration, c.ID)
		assert.Equal(t, want[i].delta, c.DeltaGeneration, c.ID)
		assert.Equal(t, c.NewGeneration-c.PrevGeneration, c.DeltaGeneration, c.ID)
		prevSum += c.PrevGeneration
		newSum += c.NewGeneration
		deltaSum += c.DeltaGeneration
	}

	assert.Equal(t, prevSum, summary.TotalPrevGeneration)
	assert.Equal(t, newSum, summary.TotalNewGeneration)
	assert.Equal(t, deltaSum, summary.TotalDeltaGeneration)
	assert.Equal(t, summary.TotalNewGeneration-summary.TotalPrevGeneration, summary.TotalDeltaGeneration)
}

func TestEnrichAt_Degradation(t *testing.T) {
	country := testCountry()
	changes := []UserChange{
		{ID: "", NewGeneration: ptr(5.0)},
		{ID: "   ", NewGeneration: ptr(5.0)},
		{ID: "fusion", NewGeneration: ptr(4.0)},
		{ID: "mystery", PrevGeneration: ptr(1.0), NewGeneration: ptr(3.0)},
		{ID: "COAL", PrevShare: ptr(0.5), NewShare: ptr(0.4), PrevGeneration: ptr(50.0), NewGeneration: ptr(40.0)},
	}

	summary, err := EnrichAt(country, changes, fixedNow)
	require.NoError(t, err)
	require.Len(t, summary.Changes, 3, "blank ids are dropped")

	fusion := summary.Changes[0]
	assert.Equal(t, "fusion", fusion.Name, "missing technology falls back to its id")
	assert.Nil(t, fusion.EmissionFactor)
	assert.Equal(t, greenops.UnitUnknown, fusion.EmissionUnit)
	assert.Nil(t, fusion.DeltaCO2Tonnes)
	assert.Equal(t, int64(4), fusion.DeltaGeneration)

	mystery := summary.Changes[1]
	assert.Equal(t, "Mystery", mystery.Name)
	assert.Nil(t, mystery.DeltaCO2Tonnes)
	assert.InDelta(t, 20.0, mystery.DeltaCostMillionUSD, 1e-9)

	coal := summary.Changes[2]
	assert.Equal(t, "COAL", coal.ID)
	assert.Equal(t, "Coal", coal.Name)
	assert.InDelta(t, 0.5, coal.PrevShare, 1e-12)
	assert.InDelta(t, 0.4, coal.NewShare, 1e-12)
	require.NotNil(t, coal.DeltaCO2Tonnes)
	assert.Equal(t, int64(-9_000_000), *coal.DeltaCO2Tonnes)

	assert.Equal(t, int64(-9_000_000), summary.TotalDeltaCO2Tonnes, "unknown deltas are excluded from the total")
	assert.Len(t, summary.Warnings, 2)
	assert.Equal(t, int64(4+3+40), summary.TotalNewGeneration)
}

func TestEnrichAt_OutOfRangeGeneration(t *testing.T) {
	country := testCountry()
	changes := []UserChange{
		{ID: "coal", PrevGeneration: ptr(50.0), NewGeneration: ptr(1e20)},
		{ID: "coal", PrevGeneration: ptr(math.Inf(1)), NewGeneration: ptr(10.0)},
		{ID: "coal", PrevGeneration: ptr(5.0), NewGeneration: ptr(math.NaN())},
	}

	summary, err := EnrichAt(country, changes, fixedNow)
	require.NoError(t, err)
	require.Len(t, summary.Changes, 3)

	kept := summary.Changes[0]
	assert.Equal(t, int64(50), kept.PrevGeneration)
	assert.Equal(t, int64(50), kept.NewGeneration, "bad new value keeps the previous one")
	assert.Zero(t, kept.DeltaGeneration)
	require.NotNil(t, kept.DeltaCO2Tonnes)
	assert.Zero(t, *kept.DeltaCO2Tonnes)

	zeroed := summary.Changes[1]
	assert.Zero(t, zeroed.PrevGeneration, "bad previous value counts as 0")
	assert.Equal(t, int64(10), zeroed.NewGeneration)
	assert.Equal(t, int64(10), zeroed.DeltaGeneration)

	assert.Zero(t, summary.Changes[2].DeltaGeneration)
	assert.Len(t, summary.Warnings, 3)
	assert.Equal(t, int64(10), summary.TotalDeltaGeneration)
}

func TestEnrichAt_Preconditions(t *testing.T) {
	_, err := EnrichAt(nil, []UserChange{}, fixedNow)
	require.ErrorIs(t, err, ErrNilCountry)

	_, err = EnrichAt(testCountry(), nil, fixedNow)
	require.ErrorIs(t, err, ErrNilChanges)

	summary, err := EnrichAt(testCountry(), []UserChange{}, fixedNow)
	require.NoError(t, err)
	assert.Empty(t, summary.Changes)
	assert.NotNil(t, summary.Warnings)
	assert.Zero(t, summary.TotalNewGeneration)
}

func TestEnrich_UsesCurrentTime(t *testing.T) {
	before := time.Now().UTC()
	summary, err := Enrich(testCountry(), []UserChange{})
	require.NoError(t, err)
	assert.False(t, summary.RequestedAt.Before(before.Add(-time.Second)))
}
