package calc

import (
	"github.com/rshade/retrofit/internal/aggregate"
	"github.com/rshade/retrofit/internal/finance"
	"github.com/rshade/retrofit/internal/units"
)

// StorageDefaultYears is the battery evaluation horizon.
const StorageDefaultYears = 15

// Cycle strategies.
const (
	CycleSingle = "single"
	CycleDouble = "double"
	CycleCustom = "custom"
)

// Fade is a linear capacity fade down to an end-of-life floor.
type Fade struct {
	AnnualRate float64 `json:"annualRate"`
	EndOfLife  float64 `json:"endOfLife"`
}

// StorageParams configures a behind-the-meter battery used for TOU arbitrage.
type StorageParams struct {
	PowerKW             float64  `json:"powerKW"`
	CapacityKWh         float64  `json:"capacityKWh"`
	UnitCostPerWh       float64  `json:"unitCostPerWh"`
	DepthOfDischarge    float64  `json:"depthOfDischarge"`
	RoundTripEfficiency float64  `json:"roundTripEfficiency"`
	Cycle               string   `json:"cycle"`
	CyclesPerDay        float64  `json:"cyclesPerDay"`
	OperatingDays       float64  `json:"operatingDays"`
	DischargeHours      float64  `json:"dischargeHours"`
	Fade                Fade     `json:"fade"`
	OMRate              *float64 `json:"omRate,omitempty"`
	Years               int      `json:"years"`
}

const storageDefaultOMRate = 0.02

// DefaultStorageParams returns the parameters a new storage module starts with.
func DefaultStorageParams() StorageParams {
	return StorageParams{
		PowerKW:             250,
		CapacityKWh:         500,
		UnitCostPerWh:       1.2,
		DepthOfDischarge:    0.9,
		RoundTripEfficiency: 0.88,
		Cycle:               CycleDouble,
		OperatingDays:       330,
		DischargeHours:      2,
		Fade:                Fade{AnnualRate: 0.02, EndOfLife: 0.7},
		Years:               StorageDefaultYears,
	}
}

// DailyCycles resolves the cycle strategy into a cycle count per day.
func (p StorageParams) DailyCycles() float64 {
	switch p.Cycle {
	case CycleSingle:
		return 1
	case CycleDouble:
		return 2
	default:
		return units.NonNegative(p.CyclesPerDay)
	}
}

// CapacityFactor is the remaining share of nameplate capacity in year t (1-based).
// It is monotonic non-increasing in t and never below the end-of-life floor.
func CapacityFactor(f Fade, t int) float64 {
	floor := units.Clamp(f.EndOfLife, 0, 1)
	if t < 1 {
		return 1
	}
	return max(floor, 1-units.NonNegative(f.AnnualRate)*float64(t-1))
}

// DischargePerCycle is the energy delivered per cycle in year t: usable capacity
// bounded by power × discharge hours.
func DischargePerCycle(p StorageParams, t int) float64 {
	usable := units.NonNegative(p.CapacityKWh) * units.Clamp(p.DepthOfDischarge, 0, 1) * CapacityFactor(p.Fade, t)
	bound := units.NonNegative(p.PowerKW) * units.NonNegative(p.DischargeHours)
	return min(usable, bound)
}

// CalculateStorage charges at the lowest tariff and discharges at the highest.
func CalculateStorage(p StorageParams, in Inputs) Result {
	years := in.horizon(p.Years, StorageDefaultYears)
	strategy := p.Cycle
	if strategy == "" {
		strategy = CycleCustom
	}
	r := Result{
		Strategy:   strategy,
		Investment: units.KWhPricePerWhToWan(units.NonNegative(p.CapacityKWh), units.NonNegative(p.UnitCostPerWh)),
	}

	low, high := finance.PriceSpread(in.Context.Price)
	eff := units.Clamp(p.RoundTripEfficiency, 0, 1)
	cyclesPerYear := p.DailyCycles() * units.NonNegative(p.OperatingDays)
	om := r.Investment * rate(p.OMRate, in.Base.OMRate, storageDefaultOMRate)

	annual := make([]float64, years)
	var firstDischarged float64
	for t := 1; t <= years; t++ {
		discharged := DischargePerCycle(p, t)
		charged := finance.SafeDiv(discharged, eff)
		if eff == 0 {
			discharged = 0
		}
		perCycle := discharged*high - charged*low
		revenue := units.YuanToWan(perCycle * cyclesPerYear)
		annual[t-1] = revenue - om
		if t == 1 {
			firstDischarged = discharged * cyclesPerYear
			r.Revenue = revenue
			r.OperatingCost = om
			r.NetSaving = annual[0]
		}
	}

	r.Contribution = aggregate.Contribution{
		Resource:       aggregate.ResourceStorage,
		RawCapacityKW:  units.NonNegative(p.PowerKW),
		Source:         aggregate.SourceOther,
		GrossSavingWan: r.NetSaving,
	}
	r.Metrics = []Metric{
		{Name: "Charge price", Value: low, Unit: "yuan/kWh"},
		{Name: "Discharge price", Value: high, Unit: "yuan/kWh"},
		{Name: "Cycles per year", Value: cyclesPerYear},
		{Name: "First-year discharged energy", Value: firstDischarged, Unit: "kWh"},
		{Name: "End-of-horizon capacity factor", Value: CapacityFactor(p.Fade, years)},
	}
	if high <= low {
		r.Warnings = append(r.Warnings, "tariff has no price spread; arbitrage revenue is not possible")
	}
	r.finish(in, annual)
	r.KPIPrimary = wanKPI("Arbitrage revenue", r.Revenue)
	r.KPISecondary = paybackKPI(r.Payback)
	return r
}
