package calc

import (
	"github.com/rshade/retrofit/internal/aggregate"
	"github.com/rshade/retrofit/internal/units"
)

// MicrogridDefaultYears is the microgrid evaluation horizon.
const MicrogridDefaultYears = 15

// Operating modes. Only an islandable microgrid earns the reliability premium.
const (
	MicrogridGridTied   = "grid-tied"
	MicrogridIslandable = "islandable"
)

// MicrogridBOM is the hardware bill of materials. Unit costs are in wan.
type MicrogridBOM struct {
	ControllerUnits       float64 `json:"controllerUnits"`
	ControllerUnitCostWan float64 `json:"controllerUnitCostWan"`
	Meters                float64 `json:"meters"`
	MeterUnitCostWan      float64 `json:"meterUnitCostWan"`
	Gateways              float64 `json:"gateways"`
	GatewayUnitCostWan    float64 `json:"gatewayUnitCostWan"`
	SwitchgearWan         float64 `json:"switchgearWan"`
}

// MicrogridParams configures a site microgrid controller.
type MicrogridParams struct {
	Mode                  string       `json:"mode"`
	Hardware              MicrogridBOM `json:"hardware"`
	EfficiencyLift        float64      `json:"efficiencyLift"`
	ManagementSavingWan   float64      `json:"managementSavingWan"`
	PeakShavingKW         float64      `json:"peakShavingKW"`
	DemandCharge          float64      `json:"demandCharge"`
	VPPEnabled            bool         `json:"vppEnabled"`
	VPPRevenuePerKW       float64      `json:"vppRevenuePerKW"`
	ReliabilityPremiumWan float64      `json:"reliabilityPremiumWan"`
	OMRate                *float64     `json:"omRate,omitempty"`
	Years                 int          `json:"years"`
}

const microgridDefaultOMRate = 0.02

// DefaultMicrogridParams returns the parameters a new microgrid module starts with.
func DefaultMicrogridParams() MicrogridParams {
	return MicrogridParams{
		Mode: MicrogridGridTied,
		Hardware: MicrogridBOM{
			ControllerUnits: 2, ControllerUnitCostWan: 15,
			Meters: 20, MeterUnitCostWan: 0.3,
			Gateways: 4, GatewayUnitCostWan: 1.5,
			SwitchgearWan: 25,
		},
		EfficiencyLift:        0.05,
		ManagementSavingWan:   3,
		DemandCharge:          40,
		VPPRevenuePerKW:       60,
		ReliabilityPremiumWan: 8,
		Years:                 MicrogridDefaultYears,
	}
}

// MicrogridInvestment prices the bill of materials, applying the bundle
// deduction to each controller unit. A controller never costs less than zero.
func MicrogridInvestment(b MicrogridBOM, deductionWan float64) float64 {
	controller := units.NonNegative(units.NonNegative(b.ControllerUnitCostWan) - units.NonNegative(deductionWan))
	return units.NonNegative(b.ControllerUnits)*controller +
		units.NonNegative(b.Meters)*units.NonNegative(b.MeterUnitCostWan) +
		units.NonNegative(b.Gateways)*units.NonNegative(b.GatewayUnitCostWan) +
		units.NonNegative(b.SwitchgearWan)
}

// CalculateMicrogrid combines hardware synergy, demand-charge optimisation and
// VPP participation. Value additionally counts the reliability premium, which is
// not a cash flow.
func CalculateMicrogrid(p MicrogridParams, in Inputs) Result {
	years := in.horizon(p.Years, MicrogridDefaultYears)
	agg := in.Microgrid
	mode := p.Mode
	if mode == "" {
		mode = MicrogridGridTied
	}

	r := Result{
		Strategy:   mode,
		Investment: MicrogridInvestment(p.Hardware, agg.SoftwareDeductionWan),
	}

	synergy := units.KWhValueWan(agg.SolarSelfConsumedKWh*units.Clamp(p.EfficiencyLift, 0, 1), in.tariff(0)) +
		units.NonNegative(p.ManagementSavingWan)

	peak := units.NonNegative(p.PeakShavingKW)
	if peak == 0 {
		peak = agg.Flexibility.TotalAdjustable
	}
	demand := units.YuanToWan(peak * units.NonNegative(p.DemandCharge) * units.MonthsPerYear)

	var vpp float64
	if p.VPPEnabled {
		vpp = units.YuanToWan(agg.Flexibility.TotalAdjustable * units.NonNegative(p.VPPRevenuePerKW))
	}

	r.Revenue = synergy + demand + vpp
	r.OperatingCost = r.Investment * rate(p.OMRate, in.Base.OMRate, microgridDefaultOMRate)
	r.NetSaving = r.Revenue - r.OperatingCost
	r.Value = r.NetSaving
	if mode == MicrogridIslandable {
		r.Value += units.NonNegative(p.ReliabilityPremiumWan)
	}

	r.Contribution = aggregate.Contribution{
		Source:         aggregate.SourceOther,
		GrossSavingWan: r.NetSaving,
	}
	r.Metrics = []Metric{
		{Name: "Software deduction per controller", Value: agg.SoftwareDeductionWan, Unit: "wan"},
		{Name: "Hardware synergy", Value: synergy, Unit: "wan/yr"},
		{Name: "Peak shaving", Value: peak, Unit: "kW"},
		{Name: "Demand charge saving", Value: demand, Unit: "wan/yr"},
		{Name: "VPP participation", Value: vpp, Unit: "wan/yr"},
		{Name: "Total value", Value: r.Value, Unit: "wan/yr"},
	}
	if agg.IsBundled {
		r.Notes = append(r.Notes, "controller software is included in the AI platform bundle")
	}
	r.finish(in, flat(r.NetSaving, years))
	r.KPIPrimary = wanKPI("Annual value", r.Value)
	r.KPISecondary = irrKPI(r.IRR)
	return r
}
