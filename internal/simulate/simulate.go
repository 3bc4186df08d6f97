// Package simulate derives illustrative chart series from a recomputed project:
// a representative 24-hour load curve and a 12-month energy curve.
package simulate

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/rshade/retrofit/internal/aggregate"
	"github.com/rshade/retrofit/internal/calc"
	"github.com/rshade/retrofit/internal/engine"
	"github.com/rshade/retrofit/internal/project"
	"github.com/rshade/retrofit/internal/units"
)

// Daylight window used for the solar shape, in hours of day.
const (
	Sunrise = 6
	Sunset  = 18
)

// billMonthLayout is the month format of Bill.Month.
const billMonthLayout = "2006-01"

// commercialProfile is the relative hourly load of a commercial building.
//
//nolint:gochecknoglobals // Read-only lookup table.
var commercialProfile = []float64{
	0.55, 0.50, 0.48, 0.48, 0.50, 0.55, 0.70, 0.90,
	1.15, 1.30, 1.35, 1.35, 1.25, 1.30, 1.35, 1.35,
	1.30, 1.20, 1.05, 0.90, 0.80, 0.70, 0.65, 0.60,
}

// solarMonthWeights is the relative monthly yield of a fixed-tilt array.
//
//nolint:gochecknoglobals // Read-only lookup table.
var solarMonthWeights = []float64{
	0.060, 0.066, 0.080, 0.090, 0.100, 0.100,
	0.105, 0.100, 0.090, 0.080, 0.066, 0.063,
}

// HourPoint is one hour of the load curve, in kW. StorageKW is positive while
// charging and negative while discharging.
type HourPoint struct {
	Hour       int     `json:"hour"`
	BaselineKW float64 `json:"baselineKW"`
	SolarKW    float64 `json:"solarKW"`
	StorageKW  float64 `json:"storageKW"`
	RetrofitKW float64 `json:"retrofitKW"`
}

// MonthPoint is one calendar month of the energy curve, in kWh.
type MonthPoint struct {
	Month       int     `json:"month"`
	BaselineKWh float64 `json:"baselineKWh"`
	SolarKWh    float64 `json:"solarKWh"`
	SavedKWh    float64 `json:"savedKWh"`
}

// LoadProfile returns the hourly load shape scaled to a mean of 1.
func LoadProfile() []float64 {
	return normalize(commercialProfile, units.HoursPerDay)
}

// SolarShape returns the hourly share of daily generation. It sums to 1.
func SolarShape() []float64 {
	shape := make([]float64, int(units.HoursPerDay))
	for h := Sunrise; h < Sunset; h++ {
		shape[h] = math.Sin(math.Pi * (float64(h-Sunrise) + 0.5) / float64(Sunset-Sunrise))
	}
	return normalize(shape, 1)
}

func normalize(v []float64, total float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	if sum := floats.Sum(out); sum > 0 {
		floats.Scale(total/sum, out)
	}
	return out
}

// BaselineKW is the mean site demand. It annualises the bill history, or without
// bills derives it from the estimated peak load and the shape of LoadProfile.
func BaselineKW(c project.Context) float64 {
	if annual := c.AnnualLoadKWh(); annual > 0 {
		return annual / units.HoursPerYear
	}
	peak := units.NonNegative(c.EstimatedPeakLoadKW())
	return peak / floats.Max(LoadProfile())
}

func active(s *project.State, k project.ModuleKey) bool {
	m, ok := s.Modules[k]
	return ok && m.IsActive
}

// efficiencySavingKWh is the annual electricity avoided by HVAC and lighting retrofits.
func efficiencySavingKWh(s *project.State, rep *engine.Report) float64 {
	total := 0.0
	for _, k := range s.ActiveKeys() {
		r, ok := rep.Results[k]
		if !ok {
			continue
		}
		switch r.Contribution.Source {
		case aggregate.SourceHVAC, aggregate.SourceLighting:
			total += units.WanToKWh(units.NonNegative(r.Contribution.GrossSavingWan), rep.Price)
		}
	}
	return total
}

func solarGenerationKWh(s *project.State, rep *engine.Report) (generated, selfConsumed float64) {
	if !active(s, project.KeySolar) {
		return 0, 0
	}
	c := rep.Results[project.KeySolar].Contribution
	return units.NonNegative(c.GenerationKWh), units.NonNegative(c.SelfConsumedKWh)
}

// StorageDispatch schedules one day of storage operation against the tariff:
// the daily discharge energy is spread over the most expensive hours and the
// matching charge over the cheapest. Without a price spread it stays idle.
func StorageDispatch(p calc.StorageParams, price project.PriceConfig) []float64 {
	hours := int(units.HoursPerDay)
	out := make([]float64, hours)

	power := units.NonNegative(p.PowerKW)
	eff := units.Clamp(p.RoundTripEfficiency, 0, 1)
	energy := calc.DischargePerCycle(p, 1) * p.DailyCycles()
	if power == 0 || energy == 0 || eff == 0 {
		return out
	}

	n := int(math.Ceil(energy / power))
	n = min(n, hours/2)
	energy = min(energy, power*float64(n))

	order := make([]int, hours)
	for h := range order {
		order[h] = h
	}
	sort.SliceStable(order, func(i, j int) bool {
		return price.PriceAt(order[i]) < price.PriceAt(order[j])
	})
	if price.PriceAt(order[hours-1]) <= price.PriceAt(order[0]) {
		return out
	}

	discharge := energy / float64(n)
	charge := energy / eff / float64(n)
	for i := range n {
		out[order[i]] = charge
		out[order[hours-1-i]] = -discharge
	}
	return out
}

func storageSeries(s *project.State) []float64 {
	if !active(s, project.KeyStorage) {
		return make([]float64, int(units.HoursPerDay))
	}
	p, err := calc.Decode[calc.StorageParams](s.Modules[project.KeyStorage].Params)
	if err != nil {
		return make([]float64, int(units.HoursPerDay))
	}
	return StorageDispatch(p, s.Context.Price)
}

// LoadCurve24 builds the representative day for s using the results of the
// latest recompute.
func LoadCurve24(s *project.State, rep *engine.Report) []HourPoint {
	profile := LoadProfile()
	base := BaselineKW(s.Context)

	share := 0.0
	if annual := base * units.HoursPerYear; annual > 0 {
		share = units.Clamp(efficiencySavingKWh(s, rep)/annual, 0, 1)
	}
	generated, _ := solarGenerationKWh(s, rep)
	solarDaily := generated / units.DaysPerYear
	solar := SolarShape()
	storage := storageSeries(s)

	points := make([]HourPoint, len(profile))
	for h := range points {
		baseline := base * profile[h]
		sun := solarDaily * solar[h]
		points[h] = HourPoint{
			Hour:       h,
			BaselineKW: baseline,
			SolarKW:    sun,
			StorageKW:  storage[h],
			RetrofitKW: units.NonNegative(baseline*(1-share) - sun + storage[h]),
		}
	}
	return points
}

// monthlyBaseline averages bills per calendar month. Months without a bill
// take the annual mean.
func monthlyBaseline(c project.Context) []float64 {
	months := int(units.MonthsPerYear)
	sums := make([]float64, months)
	counts := make([]float64, months)
	for _, b := range c.Bills {
		t, err := time.Parse(billMonthLayout, b.Month)
		if err != nil {
			continue
		}
		sums[t.Month()-1] += units.NonNegative(b.KWh)
		counts[t.Month()-1]++
	}

	mean := BaselineKW(c) * units.HoursPerYear / units.MonthsPerYear
	out := make([]float64, months)
	for m := range out {
		if counts[m] > 0 {
			out[m] = sums[m] / counts[m]
		} else {
			out[m] = mean
		}
	}
	return out
}

// MonthlyEnergy builds the 12-month energy curve for s. Efficiency savings
// follow the baseline seasonality and solar follows solarMonthWeights.
func MonthlyEnergy(s *project.State, rep *engine.Report) []MonthPoint {
	baseline := monthlyBaseline(s.Context)
	weights := normalize(solarMonthWeights, 1)
	generated, selfConsumed := solarGenerationKWh(s, rep)
	efficiency := efficiencySavingKWh(s, rep)
	total := floats.Sum(baseline)

	points := make([]MonthPoint, len(baseline))
	for m := range points {
		seasonal := 1 / units.MonthsPerYear
		if total > 0 {
			seasonal = baseline[m] / total
		}
		points[m] = MonthPoint{
			Month:       m + 1,
			BaselineKWh: baseline[m],
			SolarKWh:    generated * weights[m],
			SavedKWh:    efficiency*seasonal + selfConsumed*weights[m],
		}
	}
	return points
}
