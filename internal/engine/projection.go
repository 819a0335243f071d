package engine

import (
	"math"
	"time"
)

// Project compounds base forward by rate for the given number of years:
// base * (1 + rate)^years. A horizon of zero or less returns base unchanged.
// Negative bases are not rejected.
func Project(base, rate float64, years int) float64 {
	if years <= 0 {
		return base
	}
	return base * math.Pow(1+rate, float64(years))
}

// YearsUntil returns the projection horizon from now to targetYear, never
// negative.
func YearsUntil(targetYear int, now time.Time) int {
	return max(0, targetYear-now.Year())
}
