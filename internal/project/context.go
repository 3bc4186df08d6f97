package project

import (
	"slices"

	"github.com/rshade/retrofit/internal/units"
)

// MonthlyKWhToPeakKW converts a month's consumption into an estimated peak demand.
// It corresponds to 730 hours per month at a 0.5 load factor.
const MonthlyKWhToPeakKW = 0.0027

// NoBillPeakShare is the share of transformer capacity assumed as existing peak load
// when no bill history is available.
const NoBillPeakShare = 0.5

// Context is the project-level input shared by all calculators. Calculators treat it
// as read-only.
type Context struct {
	Transformers []Transformer `json:"transformers"`
	Bills        []Bill        `json:"bills"`
	Price        PriceConfig   `json:"priceConfig"`
}

// Clone returns a deep copy of c.
func (c Context) Clone() Context {
	out := Context{
		Transformers: slices.Clone(c.Transformers),
		Bills:        slices.Clone(c.Bills),
		Price:        c.Price,
	}
	out.Price.TOUSegments = slices.Clone(c.Price.TOUSegments)
	out.Price.SpotPrices = slices.Clone(c.Price.SpotPrices)
	return out
}

// TotalTransformerCapacity is the hard ceiling used for overload checks.
func (c Context) TotalTransformerCapacity() float64 {
	total := 0.0
	for _, t := range c.Transformers {
		total += units.NonNegative(t.Capacity)
	}
	return total
}

// AnnualLoadKWh annualises the mean monthly consumption of the bill history.
// Returns 0 without bills.
func (c Context) AnnualLoadKWh() float64 {
	if len(c.Bills) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range c.Bills {
		sum += units.NonNegative(b.KWh)
	}
	return sum / float64(len(c.Bills)) * units.MonthsPerYear
}

// AnnualBillCostWan annualises the mean monthly bill cost, in wan.
func (c Context) AnnualBillCostWan() float64 {
	if len(c.Bills) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range c.Bills {
		sum += units.NonNegative(b.Cost)
	}
	return units.YuanToWan(sum / float64(len(c.Bills)) * units.MonthsPerYear)
}

// MaxMonthlyKWh returns the largest monthly consumption in the bill history.
func (c Context) MaxMonthlyKWh() float64 {
	maxKWh := 0.0
	for _, b := range c.Bills {
		if b.KWh > maxKWh {
			maxKWh = b.KWh
		}
	}
	return maxKWh
}

// EstimatedPeakLoadKW estimates the existing site peak demand. With bills it applies
// MonthlyKWhToPeakKW to the heaviest month; without bills it assumes half of the
// transformer nameplate capacity.
func (c Context) EstimatedPeakLoadKW() float64 {
	if len(c.Bills) == 0 {
		return c.TotalTransformerCapacity() * NoBillPeakShare
	}
	return c.MaxMonthlyKWh() * MonthlyKWhToPeakKW
}

// HeadroomKW is the transformer capacity left after the existing peak load.
func (c Context) HeadroomKW() float64 {
	return c.TotalTransformerCapacity() - c.EstimatedPeakLoadKW()
}
