package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rshade/energyprophet/internal/catalog"
	"github.com/rshade/energyprophet/internal/greenops"
	"github.com/rshade/energyprophet/internal/units"
)

// Synthesize turns a projected total and normalized shares into per-technology
// generation and aggregate CO2, cost and import totals.
//
// Generation for every share id is projectedTotal * share; ids the country
// has no technology for are reported at 0. Technologies with no positive
// generation contribute nothing to the aggregates. CO2 is reported in Mt, cost
// in billion USD and imports in tonnes per resource (case-insensitive buckets
// named by the first spelling seen), all rounded to three decimals once
// accumulation is complete.
func Synthesize(country *catalog.Country, shares map[string]float64, projectedTotal float64) ProjectedMix {
	mix := ProjectedMix{
		ProjectedGeneration: projectedTotal,
		Shares:              make(map[string]float64, len(shares)),
		Generation:          make(map[string]float64, len(shares)),
		ImportsTonnes:       make(map[string]float64),
	}
	if country != nil {
		mix.CountryID = country.ID
		mix.CountryName = country.DisplayName()
		mix.BaseGeneration = country.TotalGeneration
	}

	for _, id := range units.SortedKeys(shares) {
		mix.Shares[id] = shares[id]
		if country.Technology(id) == nil {
			mix.Generation[id] = 0
			continue
		}
		mix.Generation[id] = projectedTotal * shares[id]
	}

	if country == nil {
		return mix
	}

	var (
		co2Tonnes  float64
		costUSD    = decimal.Zero
		importKeys = make(map[string]string)
		imports    = make(map[string]float64)
	)

	for i := range country.Technologies {
		t := &country.Technologies[i]
		twh, ok := generationFor(mix.Generation, t.ID)
		if !ok || !(twh > 0) || math.IsInf(twh, 0) {
			continue
		}
		mwh := twh * units.MWhPerTWh
		if math.IsInf(mwh, 0) {
			mix.Warnings = append(mix.Warnings,
				fmt.Sprintf("technology %q generation is out of range; excluded from the totals", t.ID))
			continue
		}

		if tonnes, known := greenops.TonnesForMWh(mwh, t.Emission()); known {
			co2Tonnes += tonnes
		} else {
			mix.Warnings = append(mix.Warnings,
				fmt.Sprintf("technology %q has no usable emission factor; excluded from the CO2 total", t.ID))
		}

		if math.IsNaN(t.UnitCost) || math.IsInf(t.UnitCost, 0) {
			mix.Warnings = append(mix.Warnings,
				fmt.Sprintf("technology %q has no usable unit cost; excluded from the cost total", t.ID))
		} else {
			costUSD = costUSD.Add(decimal.NewFromFloat(mwh).Mul(decimal.NewFromFloat(t.UnitCost)))
		}

		if t.Imports() {
			key := strings.ToLower(strings.TrimSpace(t.ImportResource))
			name, seen := importKeys[key]
			if !seen {
				name = strings.TrimSpace(t.ImportResource)
				importKeys[key] = name
			}
			imports[name] += mwh * t.ImportFactor
		}
	}

	mix.TotalCO2Mt = units.RoundTo(co2Tonnes/units.TonnesPerMegatonne, units.AggregatePrecision)
	mix.TotalCostBillionUSD = costUSD.
		Div(decimal.NewFromFloat(units.USDPerBillion)).
		Round(units.AggregatePrecision).
		InexactFloat64()
	for name, tonnes := range imports {
		mix.ImportsTonnes[name] = units.RoundTo(tonnes, units.AggregatePrecision)
	}

	return mix
}

// Baseline synthesizes the country's current-year mix from its own catalog
// shares.
func Baseline(country *catalog.Country) ProjectedMix {
	if country == nil {
		return Synthesize(nil, nil, 0)
	}
	shares := NormalizeShares(countryShares(country), country.TechnologyIDs())
	return Synthesize(country, shares, country.TotalGeneration)
}

func countryShares(country *catalog.Country) map[string]float64 {
	out := make(map[string]float64, len(country.Technologies))
	for _, t := range country.Technologies {
		out[t.ID] += t.Share
	}
	return out
}

// generationFor looks up id exactly first, then case-insensitively.
func generationFor(generation map[string]float64, id string) (float64, bool) {
	if v, ok := generation[id]; ok {
		return v, true
	}
	for k, v := range generation {
		if strings.EqualFold(k, id) {
			return v, true
		}
	}
	return 0, false
}
