// Package units holds the numeric helpers shared by the projection, diff and
// balancing code: rounding to whole energy units, clamping, tolerance
// comparisons and the scale factors between reporting units.
package units

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// Scale factors between the public reporting units and the absolute units used
// for factor math. Generation is reported in TWh; emission, cost and import
// factors are expressed per MWh.
const (
	// MWhPerTWh converts terawatt-hours to megawatt-hours.
	MWhPerTWh = 1_000_000.0

	// KgPerTonne converts tonnes to kilograms.
	KgPerTonne = 1000.0

	// TonnesPerMegatonne converts megatonnes to tonnes.
	TonnesPerMegatonne = 1_000_000.0

	// USDPerBillion converts billions of USD to USD.
	USDPerBillion = 1_000_000_000.0

	// USDPerMillion converts millions of USD to USD.
	USDPerMillion = 1_000_000.0
)

// Epsilon is the default tolerance for generation comparisons (TWh).
const Epsilon = 1e-6

// AggregatePrecision is the number of decimals kept on aggregate totals.
const AggregatePrecision = 3

// MaxWholeUnits bounds the magnitude of values RoundInt represents exactly.
// Sums and differences of values within it cannot overflow int64.
const MaxWholeUnits = 1 << 53

// RoundInt rounds x to the nearest whole unit, halves away from zero. Values
// beyond the int64 range saturate at its limits; NaN rounds to 0.
func RoundInt(x float64) int64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x >= math.MaxInt64:
		return math.MaxInt64
	case x <= math.MinInt64:
		return math.MinInt64
	}
	return int64(math.Round(x))
}

// WholeUnitsOK reports whether x is finite and within MaxWholeUnits.
func WholeUnitsOK(x float64) bool {
	return !math.IsNaN(x) && math.Abs(x) <= MaxWholeUnits
}

// RoundTo rounds x to the given number of decimal places.
func RoundTo(x float64, places int) float64 {
	const base = 10
	multiplier := math.Pow(base, float64(places))
	return math.Round(x*multiplier) / multiplier
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// NearlyEqual reports whether a and b differ by no more than eps.
func NearlyEqual(a, b, eps float64) bool {
	return scalar.EqualWithinAbs(a, b, eps)
}

// Sum adds up values. An empty slice sums to zero.
func Sum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values)
}

// SumMap adds up the values of m in key order so repeated calls over the same
// map produce bit-identical results.
func SumMap[K cmp.Ordered](m map[K]float64) float64 {
	keys := SortedKeys(m)
	values := make([]float64, 0, len(keys))
	for _, k := range keys {
		values = append(values, m[k])
	}
	return Sum(values)
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
