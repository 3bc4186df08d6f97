package finance

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/rshade/retrofit/internal/project"
	"github.com/rshade/retrofit/internal/units"
)

// WeightedAveragePrice collapses a tariff to one yuan/kWh figure.
//
//   - fixed: the fixed price
//   - tou: Σ(price × duration) / Σ(duration)
//   - spot: arithmetic mean of the hourly prices
//
// A TOU schedule with zero total duration, an empty spot list, or an unknown mode
// falls back to project.DefaultFixedPrice.
func WeightedAveragePrice(p project.PriceConfig) float64 {
	switch p.Mode {
	case project.PriceModeFixed:
		return p.FixedPrice
	case project.PriceModeTOU:
		prices := make([]float64, 0, len(p.TOUSegments))
		weights := make([]float64, 0, len(p.TOUSegments))
		for _, seg := range p.TOUSegments {
			prices = append(prices, seg.Price)
			weights = append(weights, seg.Duration())
		}
		if len(weights) == 0 || floats.Sum(weights) == 0 {
			return project.DefaultFixedPrice
		}
		return stat.Mean(prices, weights)
	case project.PriceModeSpot:
		if len(p.SpotPrices) == 0 {
			return project.DefaultFixedPrice
		}
		return stat.Mean(p.SpotPrices, nil)
	default:
		return project.DefaultFixedPrice
	}
}

// PriceSpread returns the lowest and highest tariff of the day, used for storage
// arbitrage. A fixed tariff has no spread.
func PriceSpread(p project.PriceConfig) (low, high float64) {
	switch p.Mode {
	case project.PriceModeTOU:
		first := true
		for _, seg := range p.TOUSegments {
			if seg.Duration() == 0 {
				continue
			}
			if first {
				low, high = seg.Price, seg.Price
				first = false
				continue
			}
			low = min(low, seg.Price)
			high = max(high, seg.Price)
		}
		if !first {
			return low, high
		}
	case project.PriceModeSpot:
		if len(p.SpotPrices) > 0 {
			return floats.Min(p.SpotPrices), floats.Max(p.SpotPrices)
		}
	}
	avg := WeightedAveragePrice(p)
	return avg, avg
}

// ValidateTOU checks that segments cover [0, 24) exactly once.
func ValidateTOU(segments []project.TOUSegment) error {
	if len(segments) == 0 {
		return fmt.Errorf("%w: no segments", ErrTOUGap)
	}

	sorted := append([]project.TOUSegment(nil), segments...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	cursor := 0.0
	for _, seg := range sorted {
		if seg.Start < 0 || seg.End > units.HoursPerDay || seg.End <= seg.Start {
			return fmt.Errorf("%w: [%g, %g)", ErrTOUBounds, seg.Start, seg.End)
		}
		switch {
		case seg.Start > cursor:
			return fmt.Errorf("%w: [%g, %g)", ErrTOUGap, cursor, seg.Start)
		case seg.Start < cursor:
			return fmt.Errorf("%w: at hour %g", ErrTOUOverlap, seg.Start)
		}
		cursor = seg.End
	}
	if cursor < units.HoursPerDay {
		return fmt.Errorf("%w: [%g, 24)", ErrTOUGap, cursor)
	}
	return nil
}
