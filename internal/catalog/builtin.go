package catalog

import (
	"context"

	"github.com/rshade/energyprophet/internal/greenops"
)

// Builtin returns the catalog shipped with the binary: four European
// countries and the eight-technology reference catalog.
func Builtin() *Memory {
	m, err := NewMemory(context.Background(), builtinCountries(), builtinTechnologies())
	if err != nil {
		// The builtin data is static; a failure here is a programming error.
		panic(err)
	}
	return m
}

func tonnes(v float64) *float64 { return &v }

// tech builds a technology tagged in tCO2/MWh.
func tech(id, name string, share, ef, cost, importTons float64, resource string) Technology {
	return Technology{
		ID:             id,
		Name:           name,
		Share:          share,
		EmissionFactor: tonnes(ef),
		EmissionUnit:   greenops.UnitTonnesPerMWh,
		UnitCost:       cost,
		ImportFactor:   importTons,
		ImportResource: resource,
	}
}

func builtinCountries() []Country {
	return []Country{
		{
			ID:              "che",
			Name:            "Switzerland",
			TotalGeneration: 72.1,
			Technologies: []Technology{
				tech("hydro", "Hydro", 0.57, 0.01, 50, 0, ""),
				tech("nuclear", "Nuclear", 0.32, 0.01, 60, 0, ""),
				tech("solar", "Solar", 0.08, 0.02, 55, 0, ""),
				tech("wind", "Wind", 0.03, 0.01, 60, 0, ""),
			},
		},
		{
			ID:              "fra",
			Name:            "France",
			TotalGeneration: 536.5,
			Technologies: []Technology{
				tech("nuclear", "Nuclear", 0.67, 0.01, 60, 0, ""),
				tech("hydro", "Hydro", 0.14, 0.01, 50, 0, ""),
				tech("wind", "Wind", 0.09, 0.01, 60, 0, ""),
				tech("solar", "Solar", 0.04, 0.02, 55, 0, ""),
				tech("gas", "Gas", 0.06, 0.5, 50, 0.2, "Gas"),
			},
		},
		{
			ID:              "deu",
			Name:            "Germany",
			TotalGeneration: 432,
			Technologies: []Technology{
				tech("wind", "Wind", 0.31, 0.01, 60, 0, ""),
				tech("solar", "Solar", 0.16, 0.02, 55, 0, ""),
				tech("hydro", "Hydro", 0.05, 0.01, 50, 0, ""),
				tech("bio", "Bioenergy", 0.10, 0.02, 70, 0, ""),
				tech("coal", "Coal", 0.23, 0.9, 40, 0.4, "Coal"),
				tech("gas", "Gas", 0.15, 0.5, 50, 0.2, "Gas"),
			},
		},
		{
			ID:              "ita",
			Name:            "Italy",
			TotalGeneration: 264,
			Technologies: []Technology{
				tech("gas", "Gas", 0.45, 0.5, 50, 0.2, "Gas"),
				tech("hydro", "Hydro", 0.18, 0.01, 50, 0, ""),
				tech("solar", "Solar", 0.14, 0.02, 55, 0, ""),
				tech("wind", "Wind", 0.09, 0.01, 60, 0, ""),
				tech("bio", "Bioenergy", 0.07, 0.02, 70, 0, ""),
				tech("coal", "Coal", 0.04, 0.9, 40, 0.4, "Coal"),
			},
		},
	}
}

func builtinTechnologies() []Technology {
	return []Technology{
		tech("hydro", "Hydro", 0, 0.01, 50, 0, ""),
		tech("nuclear", "Nuclear", 0, 0.01, 60, 0, ""),
		tech("wind", "Wind", 0, 0.01, 60, 0, ""),
		tech("solar", "Solar", 0, 0.02, 55, 0, ""),
		tech("bio", "Bioenergy", 0, 0.02, 70, 0, ""),
		tech("gas", "Gas", 0, 0.5, 50, 0.2, "Gas"),
		tech("oil", "Oil", 0, 0.7, 80, 0.3, "Oil"),
		tech("coal", "Coal", 0, 0.9, 40, 0.4, "Coal"),
	}
}
