package simulate

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/rshade/retrofit/internal/calc"
	"github.com/rshade/retrofit/internal/engine"
	"github.com/rshade/retrofit/internal/project"
)

func newState(withBills bool, active ...project.ModuleKey) *project.State {
	s := &project.State{
		BaseInfo: project.BaseInfo{Name: "Curve"},
		Context: project.Context{
			Transformers: []project.Transformer{{ID: "t1", Name: "T1", Capacity: 1000}},
			Price:        project.DefaultPriceConfig(),
		},
	}
	if withBills {
		for m := 1; m <= 12; m++ {
			s.Context.Bills = append(s.Context.Bills, project.Bill{
				ID:    fmt.Sprintf("b%d", m),
				Month: fmt.Sprintf("2024-%02d", m),
				KWh:   73000,
			})
		}
	}
	engine.EnsureModules(s)
	for _, k := range active {
		m := s.Modules[k]
		m.IsActive = true
		s.Modules[k] = m
	}
	return s
}

func recompute(s *project.State) *engine.Report {
	return engine.New().Recompute(context.Background(), s)
}

func sumBy[T any](points []T, f func(T) float64) float64 {
	total := 0.0
	for _, p := range points {
		total += f(p)
	}
	return total
}

func TestShapes(t *testing.T) {
	assert.InDelta(t, 24, floats.Sum(LoadProfile()), 1e-9)

	shape := SolarShape()
	assert.InDelta(t, 1, floats.Sum(shape), 1e-9)
	for h, v := range shape {
		if h < Sunrise || h >= Sunset {
			assert.Zero(t, v, "hour %d", h)
		} else {
			assert.Positive(t, v, "hour %d", h)
		}
	}
	assert.InDelta(t, shape[11], shape[12], 1e-12)
}

func TestBaselineKW(t *testing.T) {
	assert.InDelta(t, 100, BaselineKW(newState(true).Context), 1e-9)

	noBills := newState(false).Context
	assert.InDelta(t, 500, BaselineKW(noBills)*floats.Max(LoadProfile()), 1e-9)

	assert.Zero(t, BaselineKW(project.Context{}))
}

func TestLoadCurve24_BaselineOnly(t *testing.T) {
	s := newState(true)
	points := LoadCurve24(s, recompute(s))
	require.Len(t, points, 24)

	for h, p := range points {
		assert.Equal(t, h, p.Hour)
		assert.Zero(t, p.SolarKW)
		assert.Zero(t, p.StorageKW)
		assert.InDelta(t, p.BaselineKW, p.RetrofitKW, 1e-9)
	}
	assert.InDelta(t, 2400, sumBy(points, func(p HourPoint) float64 { return p.BaselineKW }), 1e-6)
}

func TestLoadCurve24_Solar(t *testing.T) {
	s := newState(true, project.KeySolar)
	points := LoadCurve24(s, recompute(s))

	daily := 500 * 1100 * 0.98 / 365
	assert.InDelta(t, daily, sumBy(points, func(p HourPoint) float64 { return p.SolarKW }), 1e-6)
	assert.Zero(t, points[2].SolarKW)
	assert.Less(t, points[12].RetrofitKW, points[12].BaselineKW)
	for _, p := range points {
		assert.GreaterOrEqual(t, p.RetrofitKW, 0.0)
	}
}

func TestLoadCurve24_EfficiencyReducesLoad(t *testing.T) {
	s := newState(true, project.KeyHVAC, project.KeyLighting)
	points := LoadCurve24(s, recompute(s))

	baseline := sumBy(points, func(p HourPoint) float64 { return p.BaselineKW })
	retrofit := sumBy(points, func(p HourPoint) float64 { return p.RetrofitKW })
	assert.Less(t, retrofit, baseline)
	assert.Positive(t, retrofit)
}

func TestStorageDispatch(t *testing.T) {
	p := calc.DefaultStorageParams()
	out := StorageDispatch(p, project.DefaultPriceConfig())
	require.Len(t, out, 24)

	// 450 kWh per cycle, two cycles, 250 kW: four hours each way.
	for _, h := range []int{14, 15, 16} {
		assert.InDelta(t, -225, out[h], 1e-9, "hour %d", h)
	}
	for _, h := range []int{0, 1, 2, 3} {
		assert.InDelta(t, 900/0.88/4, out[h], 1e-9, "hour %d", h)
	}
	discharged := 0.0
	charged := 0.0
	for _, v := range out {
		if v < 0 {
			discharged -= v
		} else {
			charged += v
		}
	}
	assert.InDelta(t, 900, discharged, 1e-9)
	assert.InDelta(t, 900/0.88, charged, 1e-9)
}

func TestStorageDispatch_Idle(t *testing.T) {
	flat := project.PriceConfig{Mode: project.PriceModeFixed, FixedPrice: 0.8}
	assert.Equal(t, make([]float64, 24), StorageDispatch(calc.DefaultStorageParams(), flat))
	assert.Equal(t, make([]float64, 24), StorageDispatch(calc.StorageParams{}, project.DefaultPriceConfig()))
}

func TestLoadCurve24_StorageOnlyWhenActive(t *testing.T) {
	inactive := newState(true)
	for _, p := range LoadCurve24(inactive, recompute(inactive)) {
		assert.Zero(t, p.StorageKW)
	}

	s := newState(true, project.KeyStorage)
	points := LoadCurve24(s, recompute(s))
	assert.Negative(t, points[15].StorageKW)
	assert.Positive(t, points[1].StorageKW)
}

func TestMonthlyEnergy(t *testing.T) {
	s := newState(true, project.KeySolar, project.KeyHVAC)
	rep := recompute(s)
	points := MonthlyEnergy(s, rep)
	require.Len(t, points, 12)

	for i, p := range points {
		assert.Equal(t, i+1, p.Month)
		assert.InDelta(t, 73000, p.BaselineKWh, 1e-9)
	}
	solar := rep.Results[project.KeySolar].Contribution
	assert.InDelta(t, solar.GenerationKWh, sumBy(points, func(p MonthPoint) float64 { return p.SolarKWh }), 1e-6)
	assert.Greater(t, points[6].SolarKWh, points[0].SolarKWh)
	assert.Greater(t, sumBy(points, func(p MonthPoint) float64 { return p.SavedKWh }), solar.SelfConsumedKWh)
}

func TestMonthlyEnergy_PartialBills(t *testing.T) {
	s := newState(false)
	s.Context.Bills = []project.Bill{
		{ID: "a", Month: "2023-07", KWh: 90000},
		{ID: "b", Month: "2024-07", KWh: 110000},
		{ID: "c", Month: "2024-01", KWh: 60000},
		{ID: "d", Month: "bad", KWh: 1},
	}
	points := MonthlyEnergy(s, recompute(s))

	assert.InDelta(t, 100000, points[6].BaselineKWh, 1e-9)
	assert.InDelta(t, 60000, points[0].BaselineKWh, 1e-9)
	mean := BaselineKW(s.Context) * 8760 / 12
	assert.InDelta(t, mean, points[3].BaselineKWh, 1e-9)
	for _, p := range points {
		assert.Zero(t, p.SolarKWh)
		assert.Zero(t, p.SavedKWh)
	}
}
