package calc

import (
	"slices"

	"github.com/rshade/retrofit/internal/aggregate"
	"github.com/rshade/retrofit/internal/project"
	"github.com/rshade/retrofit/internal/units"
)

// AIDefaultYears is the AI platform evaluation horizon.
const AIDefaultYears = 10

// AIParams configures the energy-management AI platform.
type AIParams struct {
	Pricing                 string              `json:"pricing"`
	BundleScope             []project.ModuleKey `json:"bundleScope"`
	LicenseWan              float64             `json:"licenseWan"`
	IntegrationPerModuleWan float64             `json:"integrationPerModuleWan"`
	SubscriptionWan         float64             `json:"subscriptionWan"`
	OptimizationRate        float64             `json:"optimizationRate"`
	BaselineBillWan         float64             `json:"baselineBillWan"`
	Years                   int                 `json:"years"`
}

// DefaultAIParams returns the parameters a new AI platform module starts with.
func DefaultAIParams() AIParams {
	return AIParams{
		Pricing:                 aggregate.PricingStandalone,
		BundleScope:             []project.ModuleKey{project.KeyMicrogrid, project.KeyHVAC, project.KeyLighting},
		LicenseWan:              20,
		IntegrationPerModuleWan: 2,
		SubscriptionWan:         3,
		OptimizationRate:        0.05,
		Years:                   AIDefaultYears,
	}
}

// Bundle returns the aggregator view of the platform pricing.
func (p AIParams) Bundle(active bool) aggregate.Bundle {
	return aggregate.Bundle{Active: active, Mode: p.Pricing, Scope: slices.Clone(p.BundleScope)}
}

// CalculateAI values the share of the annual electricity bill the platform
// optimises away, less its subscription.
func CalculateAI(p AIParams, in Inputs) Result {
	years := in.horizon(p.Years, AIDefaultYears)
	strategy := p.Pricing
	if strategy == "" {
		strategy = aggregate.PricingStandalone
	}

	integrations := 1.0
	if strategy == aggregate.PricingBundle {
		integrations = float64(max(len(p.BundleScope), 1))
	}

	bill := in.Context.AnnualBillCostWan()
	if bill == 0 {
		bill = units.NonNegative(p.BaselineBillWan)
	}

	r := Result{
		Strategy:   strategy,
		Investment: units.NonNegative(p.LicenseWan) + units.NonNegative(p.IntegrationPerModuleWan)*integrations,
	}
	r.Revenue = bill * units.Clamp(p.OptimizationRate, 0, 1)
	r.OperatingCost = units.NonNegative(p.SubscriptionWan)
	r.NetSaving = r.Revenue - r.OperatingCost

	r.Contribution = aggregate.Contribution{
		Source:         aggregate.SourceOther,
		GrossSavingWan: r.NetSaving,
	}
	r.Metrics = []Metric{
		{Name: "Annual bill", Value: bill, Unit: "wan"},
		{Name: "Integrated modules", Value: integrations},
	}
	if bill == 0 {
		r.Warnings = append(r.Warnings, "no bill history or baseline bill; optimisation saving is zero")
	}
	r.finish(in, flat(r.NetSaving, years))
	r.KPIPrimary = wanKPI("Optimisation saving", r.Revenue)
	r.KPISecondary = paybackKPI(r.Payback)
	return r
}
