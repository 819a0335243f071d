package greenops

import (
	"math"
	"strings"
	"unicode"
)

// UnitFromFieldName derives a unit hint from a legacy field or metadata name
// such as "emissionFactor_tCO2_per_MWh" or "co2_kg_per_mwh". The name is split
// into snake_case and camelCase tokens; a token naming a mass unit decides the
// result. Names that do not mention emissions or CO2 yield UnitUnknown.
func UnitFromFieldName(name string) EmissionUnit {
	tokens := fieldTokens(name)

	mentionsEmission := false
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "emission") || strings.Contains(tok, "co2") {
			mentionsEmission = true
			break
		}
	}
	if !mentionsEmission {
		return UnitUnknown
	}

	for _, tok := range tokens {
		switch tok {
		case "kg", "kgco2", "kgco2e", "kilograms":
			return UnitKgPerMWh
		case "t", "tco2", "tco2e", "ton", "tons", "tonne", "tonnes":
			return UnitTonnesPerMWh
		}
	}
	return UnitUnknown
}

// fieldTokens lowercases and splits a field name on separators and on
// lower-to-upper case transitions.
func fieldTokens(name string) []string {
	var tokens []string
	var current []rune
	var prev rune

	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	for _, r := range name {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
		prev = r
	}
	flush()

	return tokens
}

// Resolve classifies an emission factor. An explicit unit tag is trusted as is;
// otherwise the magnitude heuristic applies. A nil, NaN or infinite value
// resolves to an unknown factor. Resolve never fails.
func Resolve(value *float64, tag EmissionUnit) Factor {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return Factor{Unit: UnitUnknown}
	}

	v := *value
	if tag == UnitKgPerMWh || tag == UnitTonnesPerMWh {
		return Factor{Value: &v, Unit: tag}
	}

	if math.Abs(v) > MagnitudeThreshold {
		return Factor{Value: &v, Unit: UnitKgPerMWh}
	}
	return Factor{Value: &v, Unit: UnitTonnesPerMWh}
}

// TonnesForMWh converts an energy quantity in MWh into tonnes of CO2 using f.
// It returns false when the factor is not fully known or the result overflows.
func TonnesForMWh(mwh float64, f Factor) (float64, bool) {
	if !f.Known() {
		return 0, false
	}

	scale, ok := f.Unit.TonnesPerMWhFactor()
	if !ok {
		return 0, false
	}

	tonnes := mwh * *f.Value * scale
	if math.IsInf(tonnes, 0) || math.IsNaN(tonnes) {
		return 0, false
	}
	return tonnes, true
}
