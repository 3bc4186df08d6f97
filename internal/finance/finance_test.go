package finance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/retrofit/internal/project"
)

func TestIRR(t *testing.T) {
	t.Run("reference series", func(t *testing.T) {
		flows := []float64{-100, 30, 30, 30, 30}
		r, err := IRR(flows, DefaultIRRGuess)
		require.NoError(t, err)
		assert.InDelta(t, 0.0771, r, 1e-4)
		assert.InDelta(t, 0.0, NPV(r, flows), 1e-4)
	})

	t.Run("zero guess uses default", func(t *testing.T) {
		r, err := IRR([]float64{-100, 30, 30, 30, 30}, 0)
		require.NoError(t, err)
		assert.InDelta(t, 0.0771, r, 1e-4)
	})

	t.Run("long annuity", func(t *testing.T) {
		flows := CashFlowSeries(1000, 150, 20)
		r, err := IRR(flows, DefaultIRRGuess)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, NPV(r, flows), 1e-4)
		assert.Greater(t, r, 0.13)
		assert.Less(t, r, 0.14)
	})

	tests := []struct {
		name  string
		flows []float64
		want  error
	}{
		{"all non-positive", []float64{-100, 0, -5, 0}, ErrNoSignChange},
		{"all positive", []float64{100, 10, 10}, ErrNoSignChange},
		{"empty", nil, ErrNoSignChange},
		{"zero derivative", []float64{-100, 0, 0}, ErrNoSignChange},
		{"absurd return", []float64{-1, 1000}, ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := IRR(tt.flows, DefaultIRRGuess)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, r)
		})
	}
}

func TestRateFromFlows(t *testing.T) {
	ok := RateFromFlows([]float64{-100, 30, 30, 30, 30})
	assert.True(t, ok.Valid)
	assert.Equal(t, "7.71%", ok.String())

	bad := RateFromFlows([]float64{-100, -1, -1})
	assert.False(t, bad.Valid)
	assert.Equal(t, "N/A", bad.String())
	assert.Zero(t, bad.Percent())
	assert.False(t, math.IsNaN(bad.Value))
}

func TestPayback(t *testing.T) {
	assert.InDelta(t, 4.0, SimplePayback(100, 25), 1e-12)
	assert.Equal(t, PaybackNotRecoverable, SimplePayback(100, 0))
	assert.Equal(t, PaybackNotRecoverable, SimplePayback(100, -5))
	assert.Equal(t, PaybackNotRecoverable, SimplePayback(100, math.NaN()))
	assert.Equal(t, 0.0, PaybackNotRecoverable)

	flows := CashFlowSeries(100, 30, 5)
	assert.Equal(t, []float64{-100, -70, -40, -10, 20, 50}, Cumulative(flows))
	assert.Equal(t, 4, PaybackIndex(flows))
	assert.Equal(t, -1, PaybackIndex(CashFlowSeries(100, 10, 5)))
}

func TestSeriesHelpers(t *testing.T) {
	assert.Equal(t, []float64{-50, 10, 20}, CashFlowSeriesFromAnnual(50, []float64{10, 20}))
	assert.Equal(t, []float64{-3, 2, 5}, SumSeries([]float64{-1, 1}, []float64{-2, 1, 5}))
	assert.Len(t, CashFlowSeries(0, 5, -3), 1)
	assert.Zero(t, SafeDiv(5, 0))
	assert.InDelta(t, 2.5, SafeDiv(5, 2), 0)
}

func TestWeightedAveragePrice(t *testing.T) {
	t.Run("tou weighted by duration", func(t *testing.T) {
		p := project.PriceConfig{
			Mode: project.PriceModeTOU,
			TOUSegments: []project.TOUSegment{
				{Start: 0, End: 8, Price: 0.32},
				{Start: 8, End: 11, Price: 0.68},
				{Start: 11, End: 14, Price: 1.15},
				{Start: 14, End: 17, Price: 1.62},
				{Start: 17, End: 19, Price: 1.15},
				{Start: 19, End: 22, Price: 0.68},
				{Start: 22, End: 24, Price: 0.32},
			},
		}
		want := (0.32*8 + 0.68*3 + 1.15*3 + 1.62*3 + 1.15*2 + 0.68*3 + 0.32*2) / 24
		assert.InDelta(t, want, WeightedAveragePrice(p), 1e-12)
		assert.InDelta(t, 0.7454166666666667, WeightedAveragePrice(p), 1e-12)
	})

	t.Run("default config matches explicit schedule", func(t *testing.T) {
		assert.InDelta(t, 0.7454166666666667, WeightedAveragePrice(project.DefaultPriceConfig()), 1e-12)
	})

	t.Run("tou zero duration falls back", func(t *testing.T) {
		p := project.PriceConfig{
			Mode:        project.PriceModeTOU,
			TOUSegments: []project.TOUSegment{{Start: 5, End: 5, Price: 9}},
		}
		assert.InDelta(t, 0.85, WeightedAveragePrice(p), 0)
	})

	t.Run("spot mean", func(t *testing.T) {
		spot := make([]float64, 24)
		for i := range spot {
			spot[i] = float64(i) / 10
		}
		p := project.PriceConfig{Mode: project.PriceModeSpot, SpotPrices: spot}
		assert.InDelta(t, 1.15, WeightedAveragePrice(p), 1e-12)
	})

	t.Run("spot empty falls back", func(t *testing.T) {
		assert.InDelta(t, 0.85, WeightedAveragePrice(project.PriceConfig{Mode: project.PriceModeSpot}), 0)
	})

	t.Run("fixed passes through", func(t *testing.T) {
		p := project.PriceConfig{Mode: project.PriceModeFixed, FixedPrice: 0.62}
		assert.InDelta(t, 0.62, WeightedAveragePrice(p), 0)
	})
}

func TestPriceSpread(t *testing.T) {
	low, high := PriceSpread(project.DefaultPriceConfig())
	assert.InDelta(t, 0.32, low, 0)
	assert.InDelta(t, 1.62, high, 0)

	low, high = PriceSpread(project.PriceConfig{Mode: project.PriceModeFixed, FixedPrice: 0.7})
	assert.InDelta(t, 0.7, low, 0)
	assert.InDelta(t, 0.7, high, 0)

	low, high = PriceSpread(project.PriceConfig{Mode: project.PriceModeSpot, SpotPrices: []float64{0.4, 0.1, 0.9}})
	assert.InDelta(t, 0.1, low, 0)
	assert.InDelta(t, 0.9, high, 0)
}

func TestValidateTOU(t *testing.T) {
	require.NoError(t, ValidateTOU(project.DefaultTOUSegments()))

	tests := []struct {
		name     string
		segments []project.TOUSegment
		want     error
	}{
		{"empty", nil, ErrTOUGap},
		{"gap", []project.TOUSegment{{Start: 0, End: 8}, {Start: 9, End: 24}}, ErrTOUGap},
		{"short day", []project.TOUSegment{{Start: 0, End: 20}}, ErrTOUGap},
		{"overlap", []project.TOUSegment{{Start: 0, End: 10}, {Start: 8, End: 24}}, ErrTOUOverlap},
		{"inverted", []project.TOUSegment{{Start: 10, End: 2}}, ErrTOUBounds},
		{"past midnight", []project.TOUSegment{{Start: 0, End: 25}}, ErrTOUBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateTOU(tt.segments), tt.want)
		})
	}
}
