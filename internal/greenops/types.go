// Package greenops turns carbon reductions into relatable equivalencies (trees,
// car kilometres, households, standard coal) and formats numbers for display.
package greenops

import "fmt"

// EquivalencyType represents a category of carbon equivalency.
type EquivalencyType int

const (
	// EquivalencyTrees converts tonnes CO2 to trees absorbing it over a year.
	EquivalencyTrees EquivalencyType = iota

	// EquivalencyCarKm converts tonnes CO2 to kilometres not driven.
	EquivalencyCarKm

	// EquivalencyHouseholds converts tonnes CO2 to households' annual electricity.
	EquivalencyHouseholds

	// EquivalencyCoalTonnes converts saved kWh to tonnes of standard coal.
	EquivalencyCoalTonnes
)

// String returns a human-readable representation of the EquivalencyType.
func (e EquivalencyType) String() string {
	switch e {
	case EquivalencyTrees:
		return "Trees"
	case EquivalencyCarKm:
		return "CarKm"
	case EquivalencyHouseholds:
		return "Households"
	case EquivalencyCoalTonnes:
		return "CoalTonnes"
	default:
		return fmt.Sprintf("EquivalencyType(%d)", e)
	}
}

// Reduction is an annual carbon reduction and the energy saving behind it.
type Reduction struct {
	TonnesCO2 float64 `json:"tonnesCO2"`
	SavedKWh  float64 `json:"savedKWh"`
}

// EquivalencyResult is one calculated equivalency.
type EquivalencyResult struct {
	Type           EquivalencyType `json:"type"`
	Value          float64         `json:"value"`
	FormattedValue string          `json:"formattedValue"`
	Label          string          `json:"label"`
}

// EquivalencyOutput holds all equivalencies for one reduction.
type EquivalencyOutput struct {
	TonnesCO2   float64             `json:"tonnesCO2"`
	Results     []EquivalencyResult `json:"results"`
	DisplayText string              `json:"displayText"`
	IsEmpty     bool                `json:"isEmpty"`
}
