package greenops

// Equivalency factors. To express a reduction as an equivalency, divide the
// reduction by the factor:
//
//	equivalency = kg_CO2 / factor
const (
	// TreeAbsorptionKgPerYear is the CO2 absorbed by one mature tree in a year.
	TreeAbsorptionKgPerYear = 18.3

	// CarKgPerKm is the CO2 emitted per kilometre by an average petrol passenger car.
	CarKgPerKm = 0.12

	// HouseholdKgPerYear is the CO2 attributable to one urban household's annual electricity use.
	HouseholdKgPerYear = 1580.0
)

// StandardCoalKgPerKWh is the standard coal consumed per kWh of thermal generation.
// Saved kWh × factor gives kilograms of standard coal avoided.
const StandardCoalKgPerKWh = 0.305

// Display thresholds.
const (
	// MinEquivalencyThresholdT is the smallest reduction, in tonnes, for which
	// equivalencies are shown.
	MinEquivalencyThresholdT = 0.001

	// LargeNumberThreshold switches to "~X.X million" formatting.
	LargeNumberThreshold = 1_000_000

	// BillionThreshold switches to "~X.X billion" formatting.
	BillionThreshold = 1_000_000_000
)
