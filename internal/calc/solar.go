package calc

import (
	"github.com/rshade/retrofit/internal/aggregate"
	"github.com/rshade/retrofit/internal/units"
)

// Solar defaults.
const (
	SolarDefaultYears = 25

	// SolarDaytimeLoadShare is the share of site consumption that coincides with
	// generation, used by the automatic self-consumption estimate.
	SolarDaytimeLoadShare = 0.6

	// SolarNoBillSelfConsumption is assumed when there is no bill history to match.
	SolarNoBillSelfConsumption = 0.8

	solarDefaultTaxRate = 0.25
)

// Self-consumption modes.
const (
	SelfConsumptionAuto   = "auto"
	SelfConsumptionManual = "manual"
)

// SelfConsumption selects between the load-matched estimate and a manual ratio.
type SelfConsumption struct {
	Mode        string  `json:"mode"`
	ManualRatio float64 `json:"manualRatio"`
}

// SolarParams configures a rooftop PV system.
type SolarParams struct {
	CapacityKWp          float64         `json:"capacityKWp"`
	EPCPricePerWp        float64         `json:"epcPricePerWp"`
	FullLoadHours        float64         `json:"fullLoadHours"`
	FirstYearDegradation float64         `json:"firstYearDegradation"`
	AnnualDegradation    float64         `json:"annualDegradation"`
	SelfConsumption      SelfConsumption `json:"selfConsumption"`
	CompositeTariff      float64         `json:"compositeTariff"`
	FeedInTariff         float64         `json:"feedInTariff"`
	OMPerWatt            float64         `json:"omPerWatt"`
	InsuranceRate        float64         `json:"insuranceRate"`
	TaxRate              *float64        `json:"taxRate,omitempty"`
	Years                int             `json:"years"`
}

// DefaultSolarParams returns the parameters a new solar module starts with.
func DefaultSolarParams() SolarParams {
	return SolarParams{
		CapacityKWp:          500,
		EPCPricePerWp:        3.5,
		FullLoadHours:        1100,
		FirstYearDegradation: 0.02,
		AnnualDegradation:    0.0055,
		SelfConsumption:      SelfConsumption{Mode: SelfConsumptionAuto, ManualRatio: 0.8},
		FeedInTariff:         0.35,
		OMPerWatt:            0.05,
		InsuranceRate:        0.003,
		Years:                SolarDefaultYears,
	}
}

// SolarGeneration returns the expected generation in kWh for year t (1-based):
// year 1 loses the first-year degradation, later years lose AnnualDegradation
// linearly. Generation never goes negative.
func SolarGeneration(p SolarParams, t int) float64 {
	if t < 1 {
		return 0
	}
	gen1 := units.NonNegative(p.CapacityKWp) * units.NonNegative(p.FullLoadHours) *
		(1 - units.Clamp(p.FirstYearDegradation, 0, 1))
	return units.NonNegative(gen1 * (1 - units.NonNegative(p.AnnualDegradation)*float64(t-1)))
}

// SelfConsumptionRatio resolves the share of generation used on site.
func SelfConsumptionRatio(p SolarParams, in Inputs) float64 {
	if p.SelfConsumption.Mode == SelfConsumptionManual {
		return units.Clamp(p.SelfConsumption.ManualRatio, 0, 1)
	}
	gen1 := SolarGeneration(p, 1)
	load := in.Context.AnnualLoadKWh()
	if gen1 == 0 {
		return 0
	}
	if load == 0 {
		return SolarNoBillSelfConsumption
	}
	return units.Clamp(load*SolarDaytimeLoadShare/gen1, 0, 1)
}

// CalculateSolar values self-consumed generation at the composite tariff and
// exported generation at the feed-in tariff, less O&M, insurance and tax.
func CalculateSolar(p SolarParams, in Inputs) Result {
	years := in.horizon(p.Years, SolarDefaultYears)
	mode := p.SelfConsumption.Mode
	if mode == "" {
		mode = SelfConsumptionAuto
	}

	r := Result{
		Strategy:   mode,
		Investment: units.KWpPricePerWpToWan(units.NonNegative(p.CapacityKWp), units.NonNegative(p.EPCPricePerWp)),
	}

	ratio := SelfConsumptionRatio(p, in)
	tariff := in.tariff(p.CompositeTariff)
	feedIn := units.NonNegative(p.FeedInTariff)
	om := units.YuanToWan(units.NonNegative(p.CapacityKWp) * units.WattsPerKW * units.NonNegative(p.OMPerWatt))
	insurance := r.Investment * units.NonNegative(p.InsuranceRate)
	taxRate := rate(p.TaxRate, in.Base.TaxRate, solarDefaultTaxRate)

	annual := make([]float64, years)
	for t := 1; t <= years; t++ {
		gen := SolarGeneration(p, t)
		revenue := units.KWhValueWan(gen*ratio, tariff) + units.KWhValueWan(gen*(1-ratio), feedIn)
		preTax := revenue - om - insurance
		tax := max(preTax, 0) * taxRate
		annual[t-1] = preTax - tax
		if t == 1 {
			r.Revenue = revenue
			r.OperatingCost = om + insurance + tax
			r.NetSaving = annual[0]
		}
	}

	gen1 := SolarGeneration(p, 1)
	r.Contribution = aggregate.Contribution{
		Source:          aggregate.SourceSolar,
		GrossSavingWan:  r.NetSaving,
		GenerationKWh:   gen1,
		SelfConsumedKWh: gen1 * ratio,
	}
	r.Metrics = []Metric{
		{Name: "First-year generation", Value: gen1, Unit: "kWh"},
		{Name: "Self-consumption ratio", Value: ratio},
		{Name: "Self-consumed energy", Value: gen1 * ratio, Unit: "kWh"},
		{Name: "Exported energy", Value: gen1 * (1 - ratio), Unit: "kWh"},
		{Name: "O&M cost", Value: om, Unit: "wan/yr"},
		{Name: "Insurance", Value: insurance, Unit: "wan/yr"},
	}
	r.finish(in, annual)
	r.KPIPrimary = energyKPI("Annual generation", gen1)
	r.KPISecondary = irrKPI(r.IRR)
	return r
}
