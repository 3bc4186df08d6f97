// Package units centralises the scale conventions shared by every calculator.
//
// Currency amounts inside the engine are expressed in wan (10,000 yuan). Power is
// kilowatts, energy is kilowatt-hours, emissions are tonnes CO2. Tariffs stay in
// yuan per kWh because that is how utilities publish them. Every conversion between
// those scales goes through this package so no calculator inlines a bare 10000 or 1000.
package units

import "math"

// Scale constants.
const (
	// YuanPerWan is the number of yuan in one wan, the engine's currency unit.
	YuanPerWan = 10000.0

	// WattsPerKW converts kilowatts (or kWp) to watts (or Wp).
	WattsPerKW = 1000.0

	// KWhPerMWh converts megawatt-hours to kilowatt-hours.
	KWhPerMWh = 1000.0

	// KgPerTonne converts tonnes to kilograms.
	KgPerTonne = 1000.0

	// DaysPerYear is the operating calendar used for annualisation.
	DaysPerYear = 365.0

	// HoursPerDay is the length of a tariff day.
	HoursPerDay = 24.0

	// HoursPerYear is DaysPerYear × HoursPerDay.
	HoursPerYear = 8760.0

	// MonthsPerYear is used to annualise monthly bills and demand charges.
	MonthsPerYear = 12.0

	// PercentMultiplier converts a fraction to a percentage.
	PercentMultiplier = 100.0
)

// YuanToWan converts an amount in yuan to wan.
func YuanToWan(yuan float64) float64 {
	return yuan / YuanPerWan
}

// WanToYuan converts an amount in wan to yuan.
func WanToYuan(wan float64) float64 {
	return wan * YuanPerWan
}

// KWpPricePerWpToWan prices an installation quoted per watt-peak.
// capacity kWp × 1000 Wp/kWp × yuan/Wp / 10000 = capacity × price / 10.
func KWpPricePerWpToWan(kWp, yuanPerWp float64) float64 {
	return kWp * WattsPerKW * yuanPerWp / YuanPerWan
}

// KWhPricePerWhToWan prices battery storage quoted per watt-hour. It has the same
// scale as KWpPricePerWpToWan.
func KWhPricePerWhToWan(kWh, yuanPerWh float64) float64 {
	return kWh * WattsPerKW * yuanPerWh / YuanPerWan
}

// KWhValueWan values an amount of energy at a tariff, returning wan.
func KWhValueWan(kWh, yuanPerKWh float64) float64 {
	return kWh * yuanPerKWh / YuanPerWan
}

// WanToKWh converts a saving in wan back to the energy it buys at the given tariff.
// Returns 0 for a non-positive tariff.
func WanToKWh(wan, yuanPerKWh float64) float64 {
	if yuanPerKWh <= 0 {
		return 0
	}
	return wan * YuanPerWan / yuanPerKWh
}

// WToKW converts watts to kilowatts.
func WToKW(w float64) float64 {
	return w / WattsPerKW
}

// KWhToMWh converts kilowatt-hours to megawatt-hours.
func KWhToMWh(kWh float64) float64 {
	return kWh / KWhPerMWh
}

// KgToTonnes converts kilograms to tonnes.
func KgToTonnes(kg float64) float64 {
	return kg / KgPerTonne
}

// Finite replaces NaN and ±Inf with 0 so that no non-finite value reaches a KPI.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// NonNegative clamps v at zero. Non-finite input yields 0.
func NonNegative(v float64) float64 {
	v = Finite(v)
	if v < 0 {
		return 0
	}
	return v
}

// Clamp bounds v to [lo, hi]. Non-finite input yields lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
