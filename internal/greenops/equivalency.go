package greenops

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
)

// Equivalency renders a CO2 quantity (tonnes, may be negative for savings) as
// relatable equivalents: passenger vehicles driven for a year and homes
// powered for a year.
//
// Quantities whose magnitude is below MinEquivalencyThresholdTonnes return an
// empty output. The sign is kept on the counts so a reduction reads as
// "~-2,543 cars".
func Equivalency(tonnes float64) EquivalencyOutput {
	if math.IsNaN(tonnes) || math.IsInf(tonnes, 0) {
		log.Warn().
			Str("component", "greenops").
			Err(ErrCalculationOverflow).
			Msg("equivalency skipped for non-finite CO2 value")
		return EquivalencyOutput{IsEmpty: true}
	}

	if math.Abs(tonnes) < MinEquivalencyThresholdTonnes {
		return EquivalencyOutput{InputTonnes: tonnes, IsEmpty: true}
	}

	cars := tonnes / EPAPassengerVehicleYearFactor
	homes := tonnes / EPAHomeElectricityYearFactor

	carsFormatted := FormatLarge(cars)
	homesFormatted := FormatLarge(homes)

	verb := "adding"
	if tonnes < 0 {
		verb = "removing"
		carsFormatted = FormatLarge(math.Abs(cars))
		homesFormatted = FormatLarge(math.Abs(homes))
	}

	return EquivalencyOutput{
		InputTonnes: tonnes,
		Results: []EquivalencyResult{
			{Value: cars, FormattedValue: carsFormatted, Label: "passenger vehicles for one year"},
			{Value: homes, FormattedValue: homesFormatted, Label: "homes' electricity for one year"},
		},
		DisplayText: fmt.Sprintf("Comparable to %s ~%s cars or the electricity of ~%s homes for a year",
			verb, carsFormatted, homesFormatted),
	}
}
