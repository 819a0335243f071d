package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name  string
		base  float64
		rate  float64
		years int
		want  float64
	}{
		{name: "zero horizon returns base exactly", base: 60, rate: 0.02, years: 0, want: 60},
		{name: "negative horizon returns base", base: 60, rate: 0.02, years: -3, want: 60},
		{name: "twenty-five years at 2%", base: 60, rate: 0.02, years: 25, want: 98.436},
		{name: "one year at 1%", base: 100, rate: 0.01, years: 1, want: 101},
		{name: "zero rate", base: 72.1, rate: 0, years: 10, want: 72.1},
		{name: "negative base propagates", base: -10, rate: 0.1, years: 2, want: -12.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Project(tt.base, tt.rate, tt.years), 1e-3)
		})
	}
}

func TestProject_Monotonic(t *testing.T) {
	base := 432.0
	prev := base
	for years := 1; years <= 30; years++ {
		got := Project(base, 0.02, years)
		assert.Greater(t, got, prev, "years=%d", years)
		prev = got
	}
	assert.Equal(t, base, Project(base, 0.02, 0))
}

func TestYearsUntil(t *testing.T) {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 25, YearsUntil(2050, now))
	assert.Equal(t, 0, YearsUntil(2025, now))
	assert.Equal(t, 0, YearsUntil(2000, now), "past target years never contract")
}
