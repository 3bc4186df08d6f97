package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScaleConstants(t *testing.T) {
	assert.InDelta(t, 10000.0, YuanPerWan, 0)
	assert.InDelta(t, 1000.0, WattsPerKW, 0)
	assert.InDelta(t, 1000.0, KWhPerMWh, 0)
	assert.InDelta(t, 1000.0, KgPerTonne, 0)
	assert.InDelta(t, DaysPerYear*HoursPerDay, HoursPerYear, 0)
}

func TestConversions(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"yuan to wan", YuanToWan(25000), 2.5},
		{"wan to yuan", WanToYuan(2.5), 25000},
		{"solar 500kWp at 3.5 yuan/Wp", KWpPricePerWpToWan(500, 3.5), 175},
		{"solar equals capacity x price / 10", KWpPricePerWpToWan(1234, 2.8), 1234 * 2.8 / 10},
		{"storage 1000kWh at 1.2 yuan/Wh", KWhPricePerWhToWan(1000, 1.2), 120},
		{"energy value", KWhValueWan(100000, 0.85), 8.5},
		{"wan back to kWh", WanToKWh(8.5, 0.85), 100000},
		{"wan to kWh zero tariff", WanToKWh(8.5, 0), 0},
		{"watts to kW", WToKW(4500), 4.5},
		{"kWh to MWh", KWhToMWh(2500), 2.5},
		{"kg to tonnes", KgToTonnes(2160), 2.16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.got, 1e-9)
		})
	}
}

func TestGuards(t *testing.T) {
	assert.Zero(t, Finite(math.NaN()))
	assert.Zero(t, Finite(math.Inf(1)))
	assert.InDelta(t, 3.0, Finite(3), 0)
	assert.Zero(t, NonNegative(-2))
	assert.InDelta(t, 0.6, Clamp(0.9, 0, 0.6), 0)
	assert.Zero(t, Clamp(math.NaN(), 0, 1))
}
