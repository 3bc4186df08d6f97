package calc

import (
	"fmt"

	"github.com/rshade/retrofit/internal/aggregate"
	"github.com/rshade/retrofit/internal/units"
)

// EVDefaultYears is the charging-station evaluation horizon.
const EVDefaultYears = 10

// Estimation modes.
const (
	EVModeQuick   = "quick"
	EVModePrecise = "precise"
)

// EVQuick estimates from charger counts.
type EVQuick struct {
	SlowCount    float64 `json:"slowCount"`
	SlowKW       float64 `json:"slowKW"`
	SlowUnitCost float64 `json:"slowUnitCost"`
	FastCount    float64 `json:"fastCount"`
	FastKW       float64 `json:"fastKW"`
	FastUnitCost float64 `json:"fastUnitCost"`

	// Utilization is the share of the year a charger delivers nameplate power.
	Utilization float64 `json:"utilization"`

	// Simultaneity is the share of chargers drawing power at the site peak.
	Simultaneity float64 `json:"simultaneity"`
}

// EVRow is one equipment line in precise mode. UnitCost is in yuan.
type EVRow struct {
	Name             string  `json:"name"`
	PowerKW          float64 `json:"powerKW"`
	Count            float64 `json:"count"`
	UnitCost         float64 `json:"unitCost"`
	UtilizationHours float64 `json:"utilizationHours"`
}

// EVPrecise estimates from an equipment list.
type EVPrecise struct {
	Rows []EVRow `json:"rows"`
}

// EVParams is a sum type over the two estimation modes.
type EVParams struct {
	Mode            string     `json:"mode"`
	Quick           *EVQuick   `json:"quick,omitempty"`
	Precise         *EVPrecise `json:"precise,omitempty"`
	ServiceFee      float64    `json:"serviceFee"`
	ChargePrice     float64    `json:"chargePrice"`
	LossRate        float64    `json:"lossRate"`
	LossCostFactor  float64    `json:"lossCostFactor"`
	MaintenanceRate *float64   `json:"maintenanceRate,omitempty"`
	Years           int        `json:"years"`
}

const evDefaultMaintenanceRate = 0.03

// DefaultEVParams returns the parameters a new EV charging module starts with.
func DefaultEVParams() EVParams {
	return EVParams{
		Mode: EVModeQuick,
		Quick: &EVQuick{
			SlowCount: 20, SlowKW: 7, SlowUnitCost: 3000,
			FastCount: 4, FastKW: 60, FastUnitCost: 60000,
			Utilization: 0.12, Simultaneity: 0.7,
		},
		Precise: &EVPrecise{Rows: []EVRow{
			{Name: "DC fast charger", PowerKW: 120, Count: 2, UnitCost: 90000, UtilizationHours: 4},
		}},
		ServiceFee:  0.6,
		ChargePrice: 1.0,
		LossRate:    0.05,
		Years:       EVDefaultYears,
	}
}

// EVLoad is the demand and energy of the charging fleet.
type EVLoad struct {
	NameplateKW float64
	DemandKW    float64
	AnnualKWh   float64
	Investment  float64
}

// EVLoadFor resolves the active estimation mode.
func EVLoadFor(p EVParams) EVLoad {
	var l EVLoad
	switch p.Mode {
	case EVModePrecise:
		if p.Precise == nil {
			return l
		}
		for _, row := range p.Precise.Rows {
			kw := units.NonNegative(row.PowerKW) * units.NonNegative(row.Count)
			l.NameplateKW += kw
			l.AnnualKWh += kw * units.NonNegative(row.UtilizationHours) * units.DaysPerYear
			l.Investment += units.YuanToWan(units.NonNegative(row.Count) * units.NonNegative(row.UnitCost))
		}
		l.DemandKW = l.NameplateKW
	default:
		q := p.Quick
		if q == nil {
			return l
		}
		slow := units.NonNegative(q.SlowCount)
		fast := units.NonNegative(q.FastCount)
		l.NameplateKW = slow*units.NonNegative(q.SlowKW) + fast*units.NonNegative(q.FastKW)
		l.DemandKW = l.NameplateKW * units.Clamp(q.Simultaneity, 0, 1)
		l.AnnualKWh = l.NameplateKW * units.Clamp(q.Utilization, 0, 1) * units.HoursPerYear
		l.Investment = units.YuanToWan(slow*units.NonNegative(q.SlowUnitCost) + fast*units.NonNegative(q.FastUnitCost))
	}
	return l
}

// Overload compares charger demand with transformer headroom. It reports no
// overload when the project has no transformer on record.
func Overload(demandKW float64, in Inputs) (overloaded bool, deficitKW float64) {
	if in.Context.TotalTransformerCapacity() == 0 {
		return false, 0
	}
	deficit := demandKW - in.Context.HeadroomKW()
	if deficit > 0 {
		return true, deficit
	}
	return false, 0
}

// CalculateEV values service fees and the resale spread on delivered energy,
// less maintenance and line losses.
func CalculateEV(p EVParams, in Inputs) Result {
	years := in.horizon(p.Years, EVDefaultYears)
	load := EVLoadFor(p)

	r := Result{Strategy: p.Mode, Investment: load.Investment}
	if r.Strategy == "" {
		r.Strategy = EVModeQuick
	}

	spread := units.NonNegative(p.ChargePrice) - in.tariff(0)
	serviceRevenue := units.KWhValueWan(load.AnnualKWh, units.NonNegative(p.ServiceFee))
	spreadRevenue := units.KWhValueWan(load.AnnualKWh, spread)
	lossCost := units.KWhValueWan(load.AnnualKWh*units.Clamp(p.LossRate, 0, 1), in.tariff(p.LossCostFactor))
	maintenance := r.Investment * rate(p.MaintenanceRate, in.Base.OMRate, evDefaultMaintenanceRate)

	r.Revenue = serviceRevenue + spreadRevenue
	r.OperatingCost = maintenance + lossCost
	r.NetSaving = r.Revenue - r.OperatingCost

	overloaded, deficit := Overload(load.DemandKW, in)
	r.Overloaded, r.OverloadDeficitKW = overloaded, deficit
	if overloaded {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("charger demand %.1f kW exceeds transformer headroom by %.1f kW", load.DemandKW, deficit))
	}

	r.Contribution = aggregate.Contribution{
		Resource:       aggregate.ResourceEV,
		RawCapacityKW:  load.DemandKW,
		Source:         aggregate.SourceOther,
		GrossSavingWan: r.NetSaving,
	}
	r.Metrics = []Metric{
		{Name: "Nameplate power", Value: load.NameplateKW, Unit: "kW"},
		{Name: "Peak demand", Value: load.DemandKW, Unit: "kW"},
		{Name: "Annual energy delivered", Value: load.AnnualKWh, Unit: "kWh"},
		{Name: "Service fee revenue", Value: serviceRevenue, Unit: "wan/yr"},
		{Name: "Price spread revenue", Value: spreadRevenue, Unit: "wan/yr"},
		{Name: "Transformer headroom", Value: in.Context.HeadroomKW(), Unit: "kW"},
		{Name: "Overload deficit", Value: deficit, Unit: "kW"},
	}
	r.finish(in, flat(r.NetSaving, years))
	r.KPIPrimary = powerKPI("Charging capacity", load.NameplateKW)
	r.KPISecondary = paybackKPI(r.Payback)
	return r
}
