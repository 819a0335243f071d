// Package greenops resolves emission-factor units for generation technologies
// and converts generation deltas into CO2 tonnage.
//
// Emission factors arrive from catalogs in either tCO2/MWh or kgCO2/MWh. When a
// record carries an explicit unit tag it is trusted. Legacy records without a
// tag fall back to a magnitude heuristic (see MagnitudeThreshold). The heuristic
// is lossy: a factor of 8 kgCO2/MWh would be read as 8 tCO2/MWh.
package greenops

import (
	"fmt"
	"strings"
)

// EmissionUnit identifies the unit an emission factor is expressed in.
type EmissionUnit int

const (
	// UnitUnknown means the unit could not be determined.
	UnitUnknown EmissionUnit = iota

	// UnitKgPerMWh is kilograms CO2 per megawatt-hour (the finer grain).
	UnitKgPerMWh

	// UnitTonnesPerMWh is tonnes CO2 per megawatt-hour (the coarser grain).
	UnitTonnesPerMWh
)

// String returns the canonical unit label.
func (u EmissionUnit) String() string {
	switch u {
	case UnitUnknown:
		return "unknown"
	case UnitKgPerMWh:
		return "kgCO2/MWh"
	case UnitTonnesPerMWh:
		return "tCO2/MWh"
	default:
		return fmt.Sprintf("EmissionUnit(%d)", int(u))
	}
}

// TonnesPerMWhFactor returns the multiplier that converts a factor in u to
// tCO2/MWh. It returns false for UnitUnknown.
func (u EmissionUnit) TonnesPerMWhFactor() (float64, bool) {
	switch u {
	case UnitKgPerMWh:
		return KgToTonnes, true
	case UnitTonnesPerMWh:
		return TonnesToTonnes, true
	case UnitUnknown:
		return 0, false
	default:
		return 0, false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (u EmissionUnit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *EmissionUnit) UnmarshalText(text []byte) error {
	parsed, err := ParseEmissionUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// ParseEmissionUnit parses a unit label. Matching is case-insensitive and
// accepts the short forms "kg" and "t". An empty string or "unknown" yields
// UnitUnknown without error.
func ParseEmissionUnit(s string) (EmissionUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unknown":
		return UnitUnknown, nil
	case "kg", "kgco2/mwh", "kgco2e/mwh", "kg/mwh", "kgpermwh":
		return UnitKgPerMWh, nil
	case "t", "tco2/mwh", "tco2e/mwh", "t/mwh", "tonnes", "tonnespermwh":
		return UnitTonnesPerMWh, nil
	default:
		return UnitUnknown, fmt.Errorf("%w: %q", ErrInvalidUnit, s)
	}
}

// Factor is a resolved emission factor.
type Factor struct {
	// Value is the numeric factor, nil when no value was available.
	Value *float64 `json:"value"`

	// Unit is the resolved unit of Value.
	Unit EmissionUnit `json:"unit"`
}

// Known reports whether the factor has both a value and a unit.
func (f Factor) Known() bool {
	return f.Value != nil && f.Unit != UnitUnknown
}

// EquivalencyResult is one relatable rendering of a CO2 quantity.
type EquivalencyResult struct {
	// Value is the raw equivalency count.
	Value float64 `json:"value"`

	// FormattedValue is the display-ready count.
	FormattedValue string `json:"formatted_value"`

	// Label describes the unit being counted.
	Label string `json:"label"`
}

// EquivalencyOutput holds equivalencies for one CO2 quantity.
type EquivalencyOutput struct {
	InputTonnes float64             `json:"input_tonnes"`
	Results     []EquivalencyResult `json:"results"`
	DisplayText string              `json:"display_text"`
	IsEmpty     bool                `json:"is_empty"`
}
