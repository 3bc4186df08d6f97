package calc

import (
	"math"

	"github.com/rshade/retrofit/internal/aggregate"
	"github.com/rshade/retrofit/internal/greenops"
	"github.com/rshade/retrofit/internal/units"
)

// Carbon constants.
const (
	CarbonDefaultYears = 10

	// GasEmissionFactor is kg CO2 per cubic metre of natural gas burned.
	GasEmissionFactor = 2.16

	// CreditEligibility discounts reductions that will not pass verification.
	CreditEligibility = 0.8

	// KWhPerCertificate is the energy behind one green certificate.
	KWhPerCertificate = 1000.0

	// DefaultGridRegion is used for unknown region names.
	DefaultGridRegion = "national"
)

// GridEmissionFactors are regional grid baseline factors in tCO2/MWh.
//
//nolint:gochecknoglobals // Read-only lookup table.
var GridEmissionFactors = map[string]float64{
	"national":  0.5703,
	"north":     0.8843,
	"northeast": 0.7769,
	"east":      0.7035,
	"central":   0.5257,
	"northwest": 0.6671,
	"south":     0.5271,
}

// CarbonParams configures carbon accounting for the whole project.
type CarbonParams struct {
	Region              string  `json:"region"`
	GasBaselineM3       float64 `json:"gasBaselineM3"`
	ElectrificationRate float64 `json:"electrificationRate"`
	Scope3OffsetT       float64 `json:"scope3OffsetT"`
	CarbonPrice         float64 `json:"carbonPrice"`
	CertificatePrice    float64 `json:"certificatePrice"`
	MRVCostWan          float64 `json:"mrvCostWan"`
	AnnualAuditWan      float64 `json:"annualAuditWan"`
	Years               int     `json:"years"`
}

// DefaultCarbonParams returns the parameters a new carbon module starts with.
func DefaultCarbonParams() CarbonParams {
	return CarbonParams{
		Region:           DefaultGridRegion,
		CarbonPrice:      60,
		CertificatePrice: 50,
		MRVCostWan:       2,
		AnnualAuditWan:   0.5,
		Years:            CarbonDefaultYears,
	}
}

// GridFactor returns the emission factor for region.
func GridFactor(region string) float64 {
	if f, ok := GridEmissionFactors[region]; ok {
		return f
	}
	return GridEmissionFactors[DefaultGridRegion]
}

// Emissions is the annual reduction by scope, in tonnes CO2.
type Emissions struct {
	Scope1 float64 `json:"scope1"`
	Scope2 float64 `json:"scope2"`
	Scope3 float64 `json:"scope3"`
}

// Total is the sum of all scopes.
func (e Emissions) Total() float64 {
	return e.Scope1 + e.Scope2 + e.Scope3
}

// Reductions computes the scoped reductions from aggregated energy savings.
func Reductions(p CarbonParams, agg aggregate.CarbonInputs) Emissions {
	gasKg := units.NonNegative(p.GasBaselineM3) * units.Clamp(p.ElectrificationRate, 0, 1) * GasEmissionFactor
	return Emissions{
		Scope1: units.KgToTonnes(gasKg),
		Scope2: units.KWhToMWh(units.NonNegative(agg.TotalKWh)) * GridFactor(p.Region),
		Scope3: units.NonNegative(p.Scope3OffsetT),
	}
}

// Certificates is the number of whole green certificates for solar generation.
func Certificates(solarKWh float64) float64 {
	return math.Floor(units.NonNegative(solarKWh) / KWhPerCertificate)
}

// CalculateCarbon monetises the reduction as carbon credits and solar green
// certificates.
func CalculateCarbon(p CarbonParams, in Inputs) Result {
	years := in.horizon(p.Years, CarbonDefaultYears)
	region := p.Region
	if _, ok := GridEmissionFactors[region]; !ok {
		region = DefaultGridRegion
	}

	agg := in.Carbon
	em := Reductions(p, agg)
	total := em.Total()
	certs := Certificates(agg.SolarKWh)

	credits := units.YuanToWan(total * units.NonNegative(p.CarbonPrice) * CreditEligibility)
	certRevenue := units.YuanToWan(certs * units.NonNegative(p.CertificatePrice))

	r := Result{Strategy: region, Investment: units.NonNegative(p.MRVCostWan)}
	r.Revenue = credits + certRevenue
	r.OperatingCost = units.NonNegative(p.AnnualAuditWan)
	r.NetSaving = r.Revenue - r.OperatingCost

	r.Metrics = []Metric{
		{Name: "Avoided energy (HVAC)", Value: agg.KWh(aggregate.SourceHVAC), Unit: "kWh/yr"},
		{Name: "Avoided energy (lighting)", Value: agg.KWh(aggregate.SourceLighting), Unit: "kWh/yr"},
		{Name: "Avoided energy (solar)", Value: agg.KWh(aggregate.SourceSolar), Unit: "kWh/yr"},
		{Name: "Avoided energy (other)", Value: agg.KWh(aggregate.SourceOther), Unit: "kWh/yr"},
		{Name: "Grid factor", Value: GridFactor(region), Unit: "tCO2/MWh"},
		{Name: "Scope 1 reduction", Value: em.Scope1, Unit: "tCO2"},
		{Name: "Scope 2 reduction", Value: em.Scope2, Unit: "tCO2"},
		{Name: "Scope 3 offset", Value: em.Scope3, Unit: "tCO2"},
		{Name: "Carbon credit revenue", Value: credits, Unit: "wan/yr"},
		{Name: "Green certificates", Value: certs},
		{Name: "Certificate revenue", Value: certRevenue, Unit: "wan/yr"},
	}

	secondary := "n/a"
	if eq, err := greenops.Calculate(greenops.Reduction{TonnesCO2: total, SavedKWh: agg.TotalKWh}); err == nil && !eq.IsEmpty {
		r.Notes = append(r.Notes, eq.DisplayText)
		for _, e := range eq.Results {
			r.Metrics = append(r.Metrics, Metric{Name: "Equivalent " + e.Label, Value: e.Value})
		}
		secondary = eq.Results[0].FormattedValue + " trees"
	}

	r.finish(in, flat(r.NetSaving, years))
	r.KPIPrimary.Label = "Annual reduction"
	r.KPIPrimary.Value = greenops.FormatFloat(total, 1) + " tCO2"
	r.KPISecondary.Label = "Equivalent to"
	r.KPISecondary.Value = secondary
	return r
}
