package project

// PriceMode selects which tariff structure is in effect.
type PriceMode string

// Tariff modes.
const (
	PriceModeFixed PriceMode = "fixed"
	PriceModeTOU   PriceMode = "tou"
	PriceModeSpot  PriceMode = "spot"
)

// Segment types used for TOU schedules.
const (
	SegmentValley   = "valley"
	SegmentFlat     = "flat"
	SegmentPeak     = "peak"
	SegmentCritical = "critical"
)

// SpotHours is the number of hourly spot prices in a day.
const SpotHours = 24

// DefaultFixedPrice is the fallback tariff in yuan/kWh.
const DefaultFixedPrice = 0.85

// TOUSegment is a half-open [Start, End) hour range with a price in yuan/kWh.
type TOUSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Price float64 `json:"price"`
	Type  string  `json:"type"`
}

// Duration returns the segment length in hours (0 for inverted ranges).
func (s TOUSegment) Duration() float64 {
	if s.End <= s.Start {
		return 0
	}
	return s.End - s.Start
}

// PriceConfig is the tagged tariff union. Only the fields belonging to Mode are read.
type PriceConfig struct {
	Mode        PriceMode    `json:"mode"`
	FixedPrice  float64      `json:"fixedPrice"`
	TOUSegments []TOUSegment `json:"touSegments"`
	SpotPrices  []float64    `json:"spotPrices"`
}

// DefaultTOUSegments is a typical commercial time-of-use schedule.
func DefaultTOUSegments() []TOUSegment {
	return []TOUSegment{
		{Start: 0, End: 8, Price: 0.32, Type: SegmentValley},
		{Start: 8, End: 11, Price: 0.68, Type: SegmentFlat},
		{Start: 11, End: 14, Price: 1.15, Type: SegmentPeak},
		{Start: 14, End: 17, Price: 1.62, Type: SegmentCritical},
		{Start: 17, End: 19, Price: 1.15, Type: SegmentPeak},
		{Start: 19, End: 22, Price: 0.68, Type: SegmentFlat},
		{Start: 22, End: 24, Price: 0.32, Type: SegmentValley},
	}
}

// DefaultPriceConfig returns the tariff used when a project has none.
func DefaultPriceConfig() PriceConfig {
	spot := make([]float64, SpotHours)
	for h := range spot {
		spot[h] = DefaultFixedPrice
	}
	return PriceConfig{
		Mode:        PriceModeTOU,
		FixedPrice:  DefaultFixedPrice,
		TOUSegments: DefaultTOUSegments(),
		SpotPrices:  spot,
	}
}

// PriceAt returns the tariff in effect at the given hour of day (0 ≤ hour < 24).
// Hours not covered by a TOU segment fall back to FixedPrice.
func (p PriceConfig) PriceAt(hour int) float64 {
	switch p.Mode {
	case PriceModeSpot:
		if hour >= 0 && hour < len(p.SpotPrices) {
			return p.SpotPrices[hour]
		}
	case PriceModeTOU:
		h := float64(hour)
		for _, seg := range p.TOUSegments {
			if h >= seg.Start && h < seg.End {
				return seg.Price
			}
		}
	case PriceModeFixed:
		return p.FixedPrice
	}
	if p.FixedPrice > 0 {
		return p.FixedPrice
	}
	return DefaultFixedPrice
}
