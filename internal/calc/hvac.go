package calc

import (
	"github.com/rshade/retrofit/internal/aggregate"
	"github.com/rshade/retrofit/internal/finance"
	"github.com/rshade/retrofit/internal/units"
)

// HVACDefaultYears is the HVAC evaluation horizon.
const HVACDefaultYears = 15

// Efficiency tiers.
const (
	TierBasic        = "basic"
	TierIntermediate = "intermediate"
	TierAdvanced     = "advanced"
	TierManual       = "manual"
)

// Tier is a packaged retrofit level: post-retrofit COP and unit cost in yuan/kW.
type Tier struct {
	COP      float64
	UnitCost float64
}

// HVACTiers maps tier names to their performance and cost.
//
//nolint:gochecknoglobals // Read-only lookup table.
var HVACTiers = map[string]Tier{
	TierBasic:        {COP: 3.6, UnitCost: 800},
	TierIntermediate: {COP: 4.5, UnitCost: 1200},
	TierAdvanced:     {COP: 5.5, UnitCost: 1800},
}

// Per-building cost methods.
const (
	CostByLoad     = "load"
	CostByArea     = "area"
	CostByOverride = "override"
)

// HVACCost selects how one building's investment is estimated.
type HVACCost struct {
	Mode         string  `json:"mode"`
	AreaUnitCost float64 `json:"areaUnitCost"`
	OverrideWan  float64 `json:"overrideWan"`
}

// HVACBuilding is one building's HVAC plant.
type HVACBuilding struct {
	Name          string   `json:"name"`
	CoolingLoadKW float64  `json:"coolingLoadKW"`
	HeatingLoadKW float64  `json:"heatingLoadKW"`
	AreaM2        float64  `json:"areaM2"`
	Cost          HVACCost `json:"cost"`
}

// HVACParams configures a chiller or heat-pump replacement.
type HVACParams struct {
	Tier           string         `json:"tier"`
	ManualCOP      float64        `json:"manualCOP"`
	ManualUnitCost float64        `json:"manualUnitCost"`
	COPBefore      float64        `json:"copBefore"`
	RunHours       float64        `json:"runHours"`
	Tariff         float64        `json:"tariff"`
	OMRate         *float64       `json:"omRate,omitempty"`
	Buildings      []HVACBuilding `json:"buildings"`
	Years          int            `json:"years"`
}

const hvacDefaultOMRate = 0.01

// DefaultHVACParams returns the parameters a new HVAC module starts with.
func DefaultHVACParams() HVACParams {
	return HVACParams{
		Tier:      TierIntermediate,
		COPBefore: 2.8,
		RunHours:  2000,
		Buildings: []HVACBuilding{{
			Name:          "Main building",
			CoolingLoadKW: 800,
			HeatingLoadKW: 600,
			AreaM2:        10000,
			Cost:          HVACCost{Mode: CostByLoad, AreaUnitCost: 200},
		}},
		Years: HVACDefaultYears,
	}
}

// copAfter returns the post-retrofit COP and unit cost for the chosen tier.
func (p HVACParams) copAfter() (cop, unitCost float64) {
	if p.Tier == TierManual {
		return units.NonNegative(p.ManualCOP), units.NonNegative(p.ManualUnitCost)
	}
	t := HVACTiers[p.Tier]
	return t.COP, t.UnitCost
}

// BuildingInvestment returns one building's investment in wan.
func BuildingInvestment(b HVACBuilding, unitCost float64) float64 {
	switch b.Cost.Mode {
	case CostByArea:
		return units.YuanToWan(units.NonNegative(b.AreaM2) * units.NonNegative(b.Cost.AreaUnitCost))
	case CostByOverride:
		return units.NonNegative(b.Cost.OverrideWan)
	default:
		load := max(units.NonNegative(b.CoolingLoadKW), units.NonNegative(b.HeatingLoadKW))
		return units.YuanToWan(load * unitCost)
	}
}

// ElectricPower returns the electrical input in kW for a thermal load at cop.
// A non-positive COP yields 0.
func ElectricPower(loadKW, cop float64) float64 {
	if cop <= 0 {
		return 0
	}
	return finance.SafeDiv(units.NonNegative(loadKW), cop)
}

// CalculateHVAC values the electrical power saved by raising COP, per building.
func CalculateHVAC(p HVACParams, in Inputs) Result {
	years := in.horizon(p.Years, HVACDefaultYears)
	copNew, unitCost := p.copAfter()
	tariff := in.tariff(p.Tariff)
	hours := units.NonNegative(p.RunHours)

	r := Result{Strategy: p.Tier}
	var oldKW, newKW, savedKWh float64
	for _, b := range p.Buildings {
		r.Investment += BuildingInvestment(b, unitCost)
		if p.COPBefore <= 0 || copNew <= 0 {
			continue
		}
		before := ElectricPower(b.CoolingLoadKW, p.COPBefore)
		after := ElectricPower(b.CoolingLoadKW, copNew)
		oldKW += before
		newKW += after
		savedKWh += (before - after) * hours
	}
	if p.COPBefore <= 0 || copNew <= 0 {
		r.Warnings = append(r.Warnings, "COP is not positive; energy saving not computed")
	}

	r.Revenue = units.KWhValueWan(savedKWh, tariff)
	r.OperatingCost = r.Investment * rate(p.OMRate, in.Base.OMRate, hvacDefaultOMRate)
	r.NetSaving = r.Revenue - r.OperatingCost

	r.Contribution = aggregate.Contribution{
		Resource:       aggregate.ResourceHVAC,
		RawCapacityKW:  newKW,
		Source:         aggregate.SourceHVAC,
		GrossSavingWan: r.NetSaving,
	}
	r.Metrics = []Metric{
		{Name: "COP after retrofit", Value: copNew},
		{Name: "Electric power before", Value: oldKW, Unit: "kW"},
		{Name: "Electric power after", Value: newKW, Unit: "kW"},
		{Name: "Energy saved", Value: savedKWh, Unit: "kWh/yr"},
	}
	r.finish(in, flat(r.NetSaving, years))
	r.KPIPrimary = energyKPI("Energy saved", savedKWh)
	r.KPISecondary = irrKPI(r.IRR)
	return r
}
