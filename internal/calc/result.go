// Package calc holds one pure calculator per retrofit module. Each calculator maps
// its typed parameters plus read-only project inputs to a Result; none of them
// keep state, log, or return errors for numeric anomalies.
package calc

import (
	"github.com/rshade/retrofit/internal/aggregate"
	"github.com/rshade/retrofit/internal/finance"
	"github.com/rshade/retrofit/internal/project"
	"github.com/rshade/retrofit/internal/units"
)

// DefaultDiscountRate is used for NPV when neither the project nor the engine sets one.
const DefaultDiscountRate = 0.06

// Inputs is everything a calculator may read besides its own parameters.
type Inputs struct {
	Context project.Context
	Base    project.BaseInfo

	// Price is the weighted-average tariff in yuan/kWh.
	Price float64

	// DiscountRate is used for the NPV metric.
	DiscountRate float64

	// Years overrides module default horizons when a module leaves its own unset.
	Years int

	// Aggregated context for dependent modules.
	Flexibility aggregate.Flexibility
	Carbon      aggregate.CarbonInputs
	Microgrid   aggregate.MicrogridInputs
}

// Metric is one named calculator output shown in detail views.
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// Result is the output of one calculator run. Currency fields are in wan.
type Result struct {
	Strategy      string       `json:"strategy"`
	Investment    float64      `json:"investment"`
	Revenue       float64      `json:"revenue"`
	OperatingCost float64      `json:"operatingCost"`
	NetSaving     float64      `json:"netSaving"`
	Payback       float64      `json:"payback"`
	IRR           finance.Rate `json:"irr"`
	NPV           float64      `json:"npv"`
	CashFlows     []float64    `json:"cashFlows"`

	// Value is a broader annual figure that also counts non-cash benefits.
	// Only the microgrid sets it.
	Value float64 `json:"value,omitempty"`

	// Overloaded flags demand beyond transformer headroom; it is a warning, not a failure.
	Overloaded        bool    `json:"overloaded,omitempty"`
	OverloadDeficitKW float64 `json:"overloadDeficitKW,omitempty"`

	KPIPrimary   project.KPI `json:"kpiPrimary"`
	KPISecondary project.KPI `json:"kpiSecondary"`

	Metrics  []Metric `json:"metrics,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Notes    []string `json:"notes,omitempty"`

	Contribution aggregate.Contribution `json:"contribution"`
}

// horizon resolves the evaluation period in years.
func (in Inputs) horizon(own, moduleDefault int) int {
	switch {
	case own > 0:
		return own
	case in.Years > 0:
		return in.Years
	default:
		return moduleDefault
	}
}

// tariff returns own when positive, otherwise the project weighted price.
func (in Inputs) tariff(own float64) float64 {
	if own > 0 {
		return own
	}
	return units.NonNegative(in.Price)
}

func (in Inputs) discountRate() float64 {
	if in.Base.DiscountRate != nil {
		return *in.Base.DiscountRate
	}
	if in.DiscountRate != 0 {
		return in.DiscountRate
	}
	return DefaultDiscountRate
}

// rate resolves a rate parameter: the module's own value, then the project-level
// value, then the module default.
func rate(own, projectLevel *float64, moduleDefault float64) float64 {
	switch {
	case own != nil:
		return units.NonNegative(*own)
	case projectLevel != nil:
		return units.NonNegative(*projectLevel)
	default:
		return moduleDefault
	}
}

// finish fills the financial fields from the yearly net amounts. NetSaving is the
// first-year amount; payback uses it and IRR uses the whole series.
func (r *Result) finish(in Inputs, annual []float64) {
	r.Investment = units.NonNegative(r.Investment)
	r.Revenue = units.Finite(r.Revenue)
	r.OperatingCost = units.Finite(r.OperatingCost)
	r.NetSaving = units.Finite(r.NetSaving)
	r.Value = units.Finite(r.Value)

	r.CashFlows = finance.CashFlowSeriesFromAnnual(r.Investment, annual)
	r.Payback = finance.SimplePayback(r.Investment, r.NetSaving)
	r.IRR = finance.RateFromFlows(r.CashFlows)
	r.NPV = units.Finite(finance.NPV(in.discountRate(), r.CashFlows))

	for i := range r.Metrics {
		r.Metrics[i].Value = units.Finite(r.Metrics[i].Value)
	}
}

// flat repeats amount for years.
func flat(amount float64, years int) []float64 {
	out := make([]float64, max(years, 0))
	for i := range out {
		out[i] = amount
	}
	return out
}

func ptr[T any](v T) *T { return &v }
