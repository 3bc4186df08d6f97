package calc

import (
	"github.com/rshade/retrofit/internal/aggregate"
	"github.com/rshade/retrofit/internal/units"
)

// VPP constants.
const (
	VPPDefaultYears = 10

	// StorageOpportunitySpread is the arbitrage margin, in yuan/kWh, a battery gives
	// up for each kWh it holds back for a dispatch event.
	StorageOpportunitySpread = 0.5
)

// Participation modes.
const (
	VPPWithStorage = "with-storage"
	VPPLoadOnly    = "load-only"
)

// Subsidy is a regional demand-response programme.
type Subsidy struct {
	CapacityPerKW float64 // yuan per kW per year
	EnergyPerKWh  float64 // yuan per kWh responded
}

// DefaultVPPRegion is used for unknown region names.
const DefaultVPPRegion = "national"

// VPPSubsidies maps regions to demand-response rates.
//
//nolint:gochecknoglobals // Read-only lookup table.
var VPPSubsidies = map[string]Subsidy{
	"national":  {CapacityPerKW: 30, EnergyPerKWh: 2.0},
	"east":      {CapacityPerKW: 40, EnergyPerKWh: 3.0},
	"south":     {CapacityPerKW: 35, EnergyPerKWh: 3.5},
	"north":     {CapacityPerKW: 25, EnergyPerKWh: 2.0},
	"central":   {CapacityPerKW: 30, EnergyPerKWh: 2.5},
	"northwest": {CapacityPerKW: 20, EnergyPerKWh: 1.5},
	"northeast": {CapacityPerKW: 20, EnergyPerKWh: 1.5},
}

// VPPParams configures participation in a demand-response programme.
type VPPParams struct {
	Participation     string   `json:"participation"`
	Region            string   `json:"region"`
	ResponseHours     float64  `json:"responseHours"`
	AnnualEvents      float64  `json:"annualEvents"`
	PlatformFeeWan    float64  `json:"platformFeeWan"`
	TerminalCostPerKW float64  `json:"terminalCostPerKW"`
	OMRate            *float64 `json:"omRate,omitempty"`
	Years             int      `json:"years"`
}

const vppDefaultOMRate = 0.05

// DefaultVPPParams returns the parameters a new VPP module starts with.
func DefaultVPPParams() VPPParams {
	return VPPParams{
		Participation:     VPPWithStorage,
		Region:            "east",
		ResponseHours:     2,
		AnnualEvents:      20,
		PlatformFeeWan:    5,
		TerminalCostPerKW: 50,
		Years:             VPPDefaultYears,
	}
}

// SubsidyFor returns the rates for region, falling back to the national rates.
func SubsidyFor(region string) Subsidy {
	if s, ok := VPPSubsidies[region]; ok {
		return s
	}
	return VPPSubsidies[DefaultVPPRegion]
}

// CalculateVPP earns capacity and energy subsidies on the adjustable capacity of
// the other active modules. Storage that participates gives up arbitrage.
func CalculateVPP(p VPPParams, in Inputs) Result {
	years := in.horizon(p.Years, VPPDefaultYears)
	mode := p.Participation
	if mode == "" {
		mode = VPPWithStorage
	}

	flex := in.Flexibility
	capacity := flex.TotalAdjustable
	storage := flex.Adjustable[aggregate.ResourceStorage]
	if mode == VPPLoadOnly {
		capacity -= storage
		storage = 0
	}
	capacity = units.NonNegative(capacity)

	sub := SubsidyFor(p.Region)
	hours := units.NonNegative(p.ResponseHours)
	events := units.NonNegative(p.AnnualEvents)

	capacityRevenue := units.YuanToWan(capacity * sub.CapacityPerKW)
	energyRevenue := units.YuanToWan(capacity * hours * events * sub.EnergyPerKWh)
	opportunity := units.YuanToWan(storage * hours * events * StorageOpportunitySpread)

	r := Result{
		Strategy:   mode,
		Investment: units.NonNegative(p.PlatformFeeWan) + units.YuanToWan(capacity*units.NonNegative(p.TerminalCostPerKW)),
	}
	r.Revenue = capacityRevenue + energyRevenue
	r.OperatingCost = opportunity + r.Investment*rate(p.OMRate, in.Base.OMRate, vppDefaultOMRate)
	r.NetSaving = r.Revenue - r.OperatingCost

	r.Contribution = aggregate.Contribution{
		Source:         aggregate.SourceOther,
		GrossSavingWan: r.NetSaving,
	}
	r.Metrics = []Metric{{Name: "Adjustable capacity", Value: capacity, Unit: "kW"}}
	for _, res := range aggregate.Resources() {
		r.Metrics = append(r.Metrics, Metric{Name: "Adjustable " + string(res), Value: flex.Adjustable[res], Unit: "kW"})
	}
	r.Metrics = append(r.Metrics,
		Metric{Name: "Capacity subsidy", Value: capacityRevenue, Unit: "wan/yr"},
		Metric{Name: "Energy subsidy", Value: energyRevenue, Unit: "wan/yr"},
		Metric{Name: "Storage opportunity cost", Value: opportunity, Unit: "wan/yr"},
	)
	if capacity == 0 {
		r.Warnings = append(r.Warnings, "no active module offers adjustable capacity")
	}
	r.finish(in, flat(r.NetSaving, years))
	r.KPIPrimary = powerKPI("Adjustable capacity", capacity)
	r.KPISecondary = wanKPI("Subsidy revenue", r.Revenue)
	return r
}
