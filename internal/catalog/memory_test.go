package catalog

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/energyprophet/internal/greenops"
)

func TestBuiltin(t *testing.T) {
	ctx := context.Background()
	c := Builtin()

	countries, err := c.ListCountries(ctx)
	require.NoError(t, err)
	require.Len(t, countries, 4)
	assert.Equal(t, "che", countries[0].ID)

	techs, err := c.Technologies(ctx)
	require.NoError(t, err)
	assert.Len(t, techs, 8)
}

func TestMemory_GetCountry(t *testing.T) {
	ctx := context.Background()
	c := Builtin()

	t.Run("case-insensitive lookup", func(t *testing.T) {
		country, err := c.GetCountry(ctx, "DEU")
		require.NoError(t, err)
		assert.Equal(t, "Germany", country.Name)
		assert.InDelta(t, 432.0, country.TotalGeneration, 1e-9)
	})

	t.Run("unknown country", func(t *testing.T) {
		_, err := c.GetCountry(ctx, "atlantis")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCountryNotFound)
	})

	t.Run("returned country is a copy", func(t *testing.T) {
		first, err := c.GetCountry(ctx, "deu")
		require.NoError(t, err)
		first.Technologies[0].Share = 99
		*first.Technologies[0].EmissionFactor = 99

		second, err := c.GetCountry(ctx, "deu")
		require.NoError(t, err)
		assert.InDelta(t, 0.31, second.Technologies[0].Share, 1e-9)
		assert.InDelta(t, 0.01, *second.Technologies[0].EmissionFactor, 1e-9)
	})
}

func TestNewMemory_Validation(t *testing.T) {
	tests := []struct {
		name      string
		countries []Country
		techs     []Technology
	}{
		{
			name:      "empty country id",
			countries: []Country{{ID: " "}},
		},
		{
			name:      "duplicate country",
			countries: []Country{{ID: "fra"}, {ID: "FRA"}},
		},
		{
			name:      "negative total",
			countries: []Country{{ID: "fra", TotalGeneration: -1}},
		},
		{
			name: "duplicate technology",
			countries: []Country{{ID: "fra", Technologies: []Technology{
				{ID: "gas", Share: 0.5}, {ID: "Gas", Share: 0.5},
			}}},
		},
		{
			name:  "duplicate global technology",
			techs: []Technology{{ID: "gas"}, {ID: "gas"}},
		},
		{
			name: "infinite unit cost",
			countries: []Country{{ID: "fra", Technologies: []Technology{
				{ID: "gas", Share: 1, UnitCost: math.Inf(1)},
			}}},
		},
		{
			name: "nan import factor",
			countries: []Country{{ID: "fra", Technologies: []Technology{
				{ID: "gas", Share: 1, ImportFactor: math.NaN()},
			}}},
		},
		{
			name: "nan share",
			countries: []Country{{ID: "fra", Technologies: []Technology{
				{ID: "gas", Share: math.NaN()},
			}}},
		},
		{
			name:  "infinite global unit cost",
			techs: []Technology{{ID: "gas", UnitCost: math.Inf(-1)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMemory(context.Background(), tt.countries, tt.techs)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestCountryHelpers(t *testing.T) {
	c := &Country{ID: "xx", Technologies: []Technology{{ID: "hydro"}, {ID: "coal"}}}

	assert.Equal(t, "xx", c.DisplayName())
	assert.Equal(t, []string{"hydro", "coal"}, c.TechnologyIDs())
	assert.NotNil(t, c.Technology("COAL"))
	assert.Nil(t, c.Technology("gas"))

	var nilCountry *Country
	assert.Nil(t, nilCountry.Technology("coal"))
	assert.Empty(t, nilCountry.DisplayName())
}

func TestTechnology_Emission(t *testing.T) {
	var missing *Technology
	assert.Equal(t, greenops.UnitUnknown, missing.Emission().Unit)

	coal := tech("coal", "Coal", 0.2, 0.9, 40, 0.4, "Coal")
	f := coal.Emission()
	require.True(t, f.Known())
	assert.Equal(t, greenops.UnitTonnesPerMWh, f.Unit)

	assert.True(t, coal.Imports())
	noResource := tech("gas", "Gas", 0, 0.5, 50, 0.2, " ")
	assert.False(t, noResource.Imports())
}
