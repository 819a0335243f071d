package engine

import (
	"github.com/rshade/energyprophet/internal/catalog"
	"github.com/rshade/energyprophet/internal/greenops"
)

func ptr[T any](v T) *T { return &v }

// testCountry has one tagged factor, one untagged legacy factor (kg by
// magnitude) and one technology with no factor at all.
func testCountry() *catalog.Country {
	return &catalog.Country{
		ID:              "tst",
		Name:            "Testland",
		TotalGeneration: 100,
		Technologies: []catalog.Technology{
			{
				ID: "coal", Name: "Coal", Share: 0.5,
				EmissionFactor: ptr(0.9), EmissionUnit: greenops.UnitTonnesPerMWh,
				UnitCost: 40, ImportFactor: 0.4, ImportResource: "Coal",
			},
			{
				ID: "gas", Name: "Gas", Share: 0.3,
				EmissionFactor: ptr(500.0),
				UnitCost:       50, ImportFactor: 0.2, ImportResource: "gas",
			},
			{
				ID: "lignite", Name: "Lignite", Share: 0.2,
				EmissionFactor: ptr(1.1), EmissionUnit: greenops.UnitTonnesPerMWh,
				UnitCost: 30, ImportFactor: 0.5, ImportResource: "COAL",
			},
			{
				ID: "mystery", Name: "Mystery", Share: 0,
				UnitCost: 10,
			},
		},
	}
}
