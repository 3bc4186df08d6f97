package greenops

import (
	"fmt"
	"math"

	"github.com/rshade/retrofit/internal/units"
)

// Calculate expresses a reduction as trees, car kilometres, households and
// standard coal.
//
// Reductions below MinEquivalencyThresholdT yield an empty output without error.
// Negative inputs return ErrNegativeValue; non-finite inputs or results return
// ErrCalculationOverflow.
func Calculate(r Reduction) (EquivalencyOutput, error) {
	for _, v := range []float64{r.TonnesCO2, r.SavedKWh} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
		}
		if v < 0 {
			return EquivalencyOutput{IsEmpty: true}, ErrNegativeValue
		}
	}

	if r.TonnesCO2 < MinEquivalencyThresholdT {
		return EquivalencyOutput{TonnesCO2: r.TonnesCO2, IsEmpty: true}, nil
	}

	kg := r.TonnesCO2 * units.KgPerTonne
	trees := kg / TreeAbsorptionKgPerYear
	carKm := kg / CarKgPerKm
	households := kg / HouseholdKgPerYear
	coal := units.KgToTonnes(r.SavedKWh * StandardCoalKgPerKWh)

	if math.IsInf(trees, 0) || math.IsInf(carKm, 0) {
		return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
	}

	results := []EquivalencyResult{
		{Type: EquivalencyTrees, Value: trees, FormattedValue: formatEquivalencyValue(trees), Label: "trees planted"},
		{Type: EquivalencyCarKm, Value: carKm, FormattedValue: formatEquivalencyValue(carKm), Label: "car kilometres avoided"},
		{Type: EquivalencyHouseholds, Value: households, FormattedValue: formatEquivalencyValue(households), Label: "households powered"},
	}
	if coal > 0 {
		results = append(results, EquivalencyResult{
			Type:           EquivalencyCoalTonnes,
			Value:          coal,
			FormattedValue: FormatFloat(coal, 1),
			Label:          "tonnes of standard coal saved",
		})
	}

	return EquivalencyOutput{
		TonnesCO2: r.TonnesCO2,
		Results:   results,
		DisplayText: fmt.Sprintf("Equivalent to planting ~%s trees or avoiding ~%s car kilometres",
			results[0].FormattedValue, results[1].FormattedValue),
	}, nil
}

func formatEquivalencyValue(v float64) string {
	if v >= LargeNumberThreshold {
		return FormatLarge(v)
	}
	return FormatNumber(int64(math.Round(v)))
}
