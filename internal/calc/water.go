package calc

import (
	"github.com/rshade/retrofit/internal/aggregate"
	"github.com/rshade/retrofit/internal/units"
)

// Water heating constants.
const (
	WaterDefaultYears = 15

	// WaterSpecificHeat is the heat needed to warm one cubic metre of water by 1 °C.
	WaterSpecificHeat = 1.163 // kWh/(m³·°C)

	// BaselineBoilerEfficiency is the efficiency of the electric boiler being replaced.
	BaselineBoilerEfficiency = 0.95
)

// Water heating strategies.
const (
	WaterHeatPump  = "heat-pump"
	WaterSolar     = "solar"
	WaterWasteHeat = "waste-heat"
)

// WaterUnitCost is the installed cost in yuan per m³/day of hot-water capacity.
//
//nolint:gochecknoglobals // Read-only lookup table.
var WaterUnitCost = map[string]float64{
	WaterHeatPump:  8000,
	WaterSolar:     12000,
	WaterWasteHeat: 6000,
}

// EMC is an energy-management-contract split of savings between the facility
// owner and the investor funding the retrofit.
type EMC struct {
	Enabled       bool    `json:"enabled"`
	InvestorShare float64 `json:"investorShare"`
}

// WaterParams configures a domestic hot-water retrofit.
type WaterParams struct {
	Strategy      string   `json:"strategy"`
	DailyVolumeM3 float64  `json:"dailyVolumeM3"`
	TempIn        float64  `json:"tempIn"`
	TempOut       float64  `json:"tempOut"`
	HeatPumpCOP   float64  `json:"heatPumpCOP"`
	SolarFraction float64  `json:"solarFraction"`
	RecoveryRate  float64  `json:"recoveryRate"`
	UnitCost      float64  `json:"unitCost"`
	Tariff        float64  `json:"tariff"`
	EMC           EMC      `json:"emc"`
	OMRate        *float64 `json:"omRate,omitempty"`
	Years         int      `json:"years"`
}

const waterDefaultOMRate = 0.02

// DefaultWaterParams returns the parameters a new water-heating module starts with.
func DefaultWaterParams() WaterParams {
	return WaterParams{
		Strategy:      WaterHeatPump,
		DailyVolumeM3: 120,
		TempIn:        15,
		TempOut:       55,
		HeatPumpCOP:   3.5,
		SolarFraction: 0.6,
		RecoveryRate:  0.5,
		EMC:           EMC{InvestorShare: 0.7},
		Years:         WaterDefaultYears,
	}
}

// DailyThermalLoad is the heat in kWh needed to warm the daily volume.
func DailyThermalLoad(volumeM3, tempIn, tempOut float64) float64 {
	return units.NonNegative(volumeM3) * units.NonNegative(tempOut-tempIn) * WaterSpecificHeat
}

// BaselineEnergy is the annual electricity of the existing boiler in kWh.
func BaselineEnergy(p WaterParams) float64 {
	return DailyThermalLoad(p.DailyVolumeM3, p.TempIn, p.TempOut) * units.DaysPerYear / BaselineBoilerEfficiency
}

// RetrofitEnergy is the annual electricity after the retrofit in kWh. A heat pump
// with a non-positive COP is treated as saving nothing.
func RetrofitEnergy(p WaterParams) float64 {
	baseline := BaselineEnergy(p)
	switch p.Strategy {
	case WaterSolar:
		return baseline * (1 - units.Clamp(p.SolarFraction, 0, 1))
	case WaterWasteHeat:
		return baseline * (1 - units.Clamp(p.RecoveryRate, 0, 1))
	default:
		if p.HeatPumpCOP <= 0 {
			return baseline
		}
		load := DailyThermalLoad(p.DailyVolumeM3, p.TempIn, p.TempOut) * units.DaysPerYear
		return load / p.HeatPumpCOP
	}
}

// CalculateWater values the electricity saved by the chosen heating strategy.
// Under an EMC only the investor's share of the saving feeds payback and IRR;
// the carbon contribution carries the full physical saving.
func CalculateWater(p WaterParams, in Inputs) Result {
	years := in.horizon(p.Years, WaterDefaultYears)
	strategy := p.Strategy
	if strategy == "" {
		strategy = WaterHeatPump
	}

	unitCost := p.UnitCost
	if unitCost <= 0 {
		unitCost = WaterUnitCost[strategy]
	}

	baseline := BaselineEnergy(p)
	retrofit := RetrofitEnergy(p)
	savedKWh := units.NonNegative(baseline - retrofit)
	gross := units.KWhValueWan(savedKWh, in.tariff(p.Tariff))

	share := 1.0
	if p.EMC.Enabled {
		share = units.Clamp(p.EMC.InvestorShare, 0, 1)
	}

	r := Result{
		Strategy:   strategy,
		Investment: units.YuanToWan(units.NonNegative(p.DailyVolumeM3) * unitCost),
	}
	r.Revenue = gross * share
	r.OperatingCost = r.Investment * rate(p.OMRate, in.Base.OMRate, waterDefaultOMRate)
	r.NetSaving = r.Revenue - r.OperatingCost

	r.Contribution = aggregate.Contribution{
		Source:         aggregate.SourceOther,
		GrossSavingWan: gross - r.OperatingCost,
	}
	r.Metrics = []Metric{
		{Name: "Daily thermal load", Value: DailyThermalLoad(p.DailyVolumeM3, p.TempIn, p.TempOut), Unit: "kWh"},
		{Name: "Baseline energy", Value: baseline, Unit: "kWh/yr"},
		{Name: "Retrofit energy", Value: retrofit, Unit: "kWh/yr"},
		{Name: "Gross saving", Value: gross, Unit: "wan/yr"},
		{Name: "Owner share", Value: gross * (1 - share), Unit: "wan/yr"},
		{Name: "Investor share", Value: gross * share, Unit: "wan/yr"},
	}
	r.finish(in, flat(r.NetSaving, years))
	r.KPIPrimary = energyKPI("Energy saved", savedKWh)
	r.KPISecondary = paybackKPI(r.Payback)
	return r
}
