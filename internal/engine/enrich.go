package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rshade/energyprophet/internal/catalog"
	"github.com/rshade/energyprophet/internal/greenops"
	"github.com/rshade/energyprophet/internal/units"
)

// Enrich diffs changes against country. It uses the current time for the
// summary timestamp.
func Enrich(country *catalog.Country, changes []UserChange) (*AnalysisSummary, error) {
	return EnrichAt(country, changes, time.Now())
}

// EnrichAt diffs changes against country, stamping the summary with now.
// Exposed for testing.
//
// Changes with a blank id are dropped. Previous and new generation are rounded
// to whole TWh before the delta is taken, so every delta equals the difference
// of the two reported integers and every total equals the sum of the reported
// entries. A missing technology or unusable emission factor degrades that
// entry and adds a warning; it never fails the batch.
//
// A nil country or nil change slice is a caller error. An empty slice is not.
func EnrichAt(country *catalog.Country, changes []UserChange, now time.Time) (*AnalysisSummary, error) {
	if country == nil {
		return nil, ErrNilCountry
	}
	if changes == nil {
		return nil, ErrNilChanges
	}

	summary := &AnalysisSummary{
		RequestID:              ulid.Make().String(),
		RequestedAt:            now.UTC(),
		CountryID:              country.ID,
		CountryName:            country.DisplayName(),
		CountryTotalGeneration: country.TotalGeneration,
		Changes:                make([]EnrichedChange, 0, len(changes)),
		Warnings:               []string{},
	}

	var (
		costMillionUSD float64
		importKeys     = make(map[string]string)
	)

	for _, change := range changes {
		id := strings.TrimSpace(change.ID)
		if id == "" {
			continue
		}

		tech := country.Technology(id)
		if tech == nil {
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("technology %q is not part of %s's catalog", id, summary.CountryName))
		}

		entry, warnings := enrichChange(id, tech, change)
		summary.Warnings = append(summary.Warnings, warnings...)

		summary.TotalPrevGeneration += entry.PrevGeneration
		summary.TotalNewGeneration += entry.NewGeneration
		summary.TotalDeltaGeneration += entry.DeltaGeneration
		if entry.DeltaCO2Tonnes != nil {
			summary.TotalDeltaCO2Tonnes += *entry.DeltaCO2Tonnes
		}
		costMillionUSD += entry.DeltaCostMillionUSD

		if entry.ImportResource != "" && entry.DeltaImportsTonnes != 0 {
			if summary.DeltaImportsTonnes == nil {
				summary.DeltaImportsTonnes = make(map[string]float64)
			}
			key := strings.ToLower(entry.ImportResource)
			name, seen := importKeys[key]
			if !seen {
				name = entry.ImportResource
				importKeys[key] = name
			}
			summary.DeltaImportsTonnes[name] += entry.DeltaImportsTonnes
		}

		summary.Changes = append(summary.Changes, entry)
	}

	summary.TotalDeltaCostMillionUSD = units.RoundTo(costMillionUSD, units.AggregatePrecision)
	for name, tonnes := range summary.DeltaImportsTonnes {
		summary.DeltaImportsTonnes[name] = units.RoundTo(tonnes, units.AggregatePrecision)
	}

	return summary, nil
}

// enrichChange resolves one change. tech may be nil. Generation values that
// cannot be held as whole TWh are dropped with a warning: a bad previous value
// counts as 0 and a bad new value keeps the previous one.
func enrichChange(id string, tech *catalog.Technology, change UserChange) (EnrichedChange, []string) {
	var warnings []string

	prev := 0.0
	if change.PrevGeneration != nil {
		if units.WholeUnitsOK(*change.PrevGeneration) {
			prev = *change.PrevGeneration
		} else {
			warnings = append(warnings,
				fmt.Sprintf("previous generation %v for %q is out of range; treated as 0", *change.PrevGeneration, id))
		}
	}
	next := prev
	if change.NewGeneration != nil {
		if units.WholeUnitsOK(*change.NewGeneration) {
			next = *change.NewGeneration
		} else {
			warnings = append(warnings,
				fmt.Sprintf("new generation %v for %q is out of range; previous value kept", *change.NewGeneration, id))
		}
	}

	entry := EnrichedChange{
		ID:             id,
		Name:           id,
		PrevGeneration: units.RoundInt(prev),
		NewGeneration:  units.RoundInt(next),
	}
	entry.DeltaGeneration = entry.NewGeneration - entry.PrevGeneration
	if change.PrevShare != nil {
		entry.PrevShare = *change.PrevShare
	}
	if change.NewShare != nil {
		entry.NewShare = *change.NewShare
	}

	if tech == nil {
		return entry, warnings
	}
	if tech.Name != "" {
		entry.Name = tech.Name
	}

	deltaMWh := float64(entry.DeltaGeneration) * units.MWhPerTWh

	factor := tech.Emission()
	entry.EmissionFactor = factor.Value
	entry.EmissionUnit = factor.Unit

	if tonnes, ok := greenops.TonnesForMWh(deltaMWh, factor); ok {
		rounded := units.RoundInt(tonnes)
		entry.DeltaCO2Tonnes = &rounded
	} else {
		warnings = append(warnings,
			fmt.Sprintf("emission unit for %q could not be resolved; delta CO2 omitted", id))
	}

	entry.DeltaCostMillionUSD = units.RoundTo(deltaMWh*tech.UnitCost/units.USDPerMillion, units.AggregatePrecision)
	if tech.Imports() {
		entry.ImportResource = strings.TrimSpace(tech.ImportResource)
		entry.DeltaImportsTonnes = units.RoundTo(deltaMWh*tech.ImportFactor, units.AggregatePrecision)
	}

	return entry, warnings
}
