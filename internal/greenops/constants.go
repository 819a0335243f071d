package greenops

// Magnitude heuristic for untagged emission factors. Values whose absolute
// magnitude exceeds the threshold are read as kgCO2/MWh, everything else as
// tCO2/MWh. The threshold assumes no real generation technology emits more
// than 10 tonnes per MWh nor less than 10 kg per MWh unless it is near zero.
const MagnitudeThreshold = 10.0

// Unit conversion constants for normalizing emission factors to tonnes per MWh.
const (
	// KgToTonnes converts kilograms to tonnes.
	KgToTonnes = 0.001

	// TonnesToTonnes is the identity conversion for tonnes.
	TonnesToTonnes = 1.0
)

// EPA greenhouse gas equivalency factors, expressed in tonnes CO2 per unit.
// Source: https://www.epa.gov/energy/greenhouse-gas-equivalencies-calculator
const (
	// EPAPassengerVehicleYearFactor is tonnes CO2e emitted by a typical
	// passenger vehicle in one year.
	EPAPassengerVehicleYearFactor = 4.6

	// EPAHomeElectricityYearFactor is tonnes CO2e from one average US home's
	// electricity use for one year.
	EPAHomeElectricityYearFactor = 5.139
)

// Display threshold constants.
const (
	// MinEquivalencyThresholdTonnes is the smallest absolute CO2 delta for which
	// equivalencies are rendered.
	MinEquivalencyThresholdTonnes = 1.0

	// LargeNumberThreshold is the threshold for "~X.X million" display.
	LargeNumberThreshold = 1_000_000

	// BillionThreshold is the threshold for "~X.X billion" display.
	BillionThreshold = 1_000_000_000
)
