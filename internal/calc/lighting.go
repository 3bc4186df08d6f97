package calc

import (
	"github.com/rshade/retrofit/internal/aggregate"
	"github.com/rshade/retrofit/internal/units"
)

// Lighting constants.
const (
	LightingDefaultYears = 10

	// LightingRetrofitFactor is the share of the old lighting power that remains
	// after an LED retrofit in area-density mode.
	LightingRetrofitFactor = 0.45

	// MaxControlSaving caps the combined smart-control saving.
	MaxControlSaving = 0.6

	MotionSensingSaving      = 0.30
	SchedulingSaving         = 0.15
	DaylightHarvestingSaving = 0.10
)

// Estimation modes.
const (
	LightingModeArea = "area"
	LightingModeBOQ  = "boq"
)

// LightingDensity is installed lighting power in W/m² by building class.
//
//nolint:gochecknoglobals // Read-only lookup table.
var LightingDensity = map[string]float64{
	"office":     9,
	"retail":     12,
	"industrial": 8,
	"parking":    3,
}

// LightingSchedule is annual operating hours by schedule class.
//
//nolint:gochecknoglobals // Read-only lookup table.
var LightingSchedule = map[string]float64{
	"office":     2500,
	"retail":     3600,
	"industrial": 4000,
	"24h":        units.HoursPerYear,
}

// LightingArea estimates from floor area.
type LightingArea struct {
	AreaM2        float64 `json:"areaM2"`
	DensityClass  string  `json:"densityClass"`
	ScheduleClass string  `json:"scheduleClass"`
	UnitCostPerM2 float64 `json:"unitCostPerM2"`
}

// Fixture is one bill-of-quantities row.
type Fixture struct {
	Name        string  `json:"name"`
	OldWatts    float64 `json:"oldWatts"`
	NewWatts    float64 `json:"newWatts"`
	Count       float64 `json:"count"`
	HoursPerDay float64 `json:"hoursPerDay"`
	UnitCost    float64 `json:"unitCost"`
}

// LightingBOQ estimates from a fixture list.
type LightingBOQ struct {
	Fixtures []Fixture `json:"fixtures"`
}

// Control is one smart-control strategy. Rate overrides the default saving.
type Control struct {
	Enabled bool     `json:"enabled"`
	Rate    *float64 `json:"rate,omitempty"`
}

// Controls are the smart-control strategies applied on top of the retrofit.
type Controls struct {
	Motion     Control `json:"motion"`
	Scheduling Control `json:"scheduling"`
	Daylight   Control `json:"daylight"`
}

// LightingParams is a sum type over the two estimation modes.
type LightingParams struct {
	Mode     string        `json:"mode"`
	Area     *LightingArea `json:"area,omitempty"`
	BOQ      *LightingBOQ  `json:"boq,omitempty"`
	Controls Controls      `json:"controls"`
	Tariff   float64       `json:"tariff"`
	OMRate   *float64      `json:"omRate,omitempty"`
	Years    int           `json:"years"`
}

const lightingDefaultOMRate = 0.02

// DefaultLightingParams returns the parameters a new lighting module starts with.
func DefaultLightingParams() LightingParams {
	return LightingParams{
		Mode: LightingModeArea,
		Area: &LightingArea{AreaM2: 10000, DensityClass: "office", ScheduleClass: "office", UnitCostPerM2: 30},
		BOQ: &LightingBOQ{Fixtures: []Fixture{
			{Name: "T8 tube to LED", OldWatts: 36, NewWatts: 16, Count: 500, HoursPerDay: 10, UnitCost: 60},
		}},
		Controls: Controls{Motion: Control{Enabled: true}},
		Years:    LightingDefaultYears,
	}
}

// ControlSaving compounds the enabled control savings and caps the result.
func ControlSaving(c Controls) float64 {
	remaining := 1.0
	for _, ctl := range []struct {
		c   Control
		def float64
	}{
		{c.Motion, MotionSensingSaving},
		{c.Scheduling, SchedulingSaving},
		{c.Daylight, DaylightHarvestingSaving},
	} {
		if !ctl.c.Enabled {
			continue
		}
		r := ctl.def
		if ctl.c.Rate != nil {
			r = units.Clamp(*ctl.c.Rate, 0, 1)
		}
		remaining *= 1 - r
	}
	return min(1-remaining, MaxControlSaving)
}

type lightingLoad struct {
	oldKW, newKW, oldKWh, newKWh, investment float64
}

func areaLoad(a LightingArea) lightingLoad {
	oldKW := units.WToKW(units.NonNegative(a.AreaM2) * LightingDensity[a.DensityClass])
	newKW := oldKW * LightingRetrofitFactor
	hours := LightingSchedule[a.ScheduleClass]
	return lightingLoad{
		oldKW:      oldKW,
		newKW:      newKW,
		oldKWh:     oldKW * hours,
		newKWh:     newKW * hours,
		investment: units.YuanToWan(units.NonNegative(a.AreaM2) * units.NonNegative(a.UnitCostPerM2)),
	}
}

func boqLoad(b LightingBOQ) lightingLoad {
	var l lightingLoad
	for _, f := range b.Fixtures {
		count := units.NonNegative(f.Count)
		hours := units.NonNegative(f.HoursPerDay) * units.DaysPerYear
		oldKW := units.WToKW(units.NonNegative(f.OldWatts) * count)
		newKW := units.WToKW(units.NonNegative(f.NewWatts) * count)
		l.oldKW += oldKW
		l.newKW += newKW
		l.oldKWh += oldKW * hours
		l.newKWh += newKW * hours
		l.investment += units.YuanToWan(count * units.NonNegative(f.UnitCost))
	}
	return l
}

// CalculateLighting values the energy saved by an LED retrofit plus smart controls.
// Control savings apply to the post-retrofit consumption.
func CalculateLighting(p LightingParams, in Inputs) Result {
	years := in.horizon(p.Years, LightingDefaultYears)

	var load lightingLoad
	switch p.Mode {
	case LightingModeBOQ:
		if p.BOQ != nil {
			load = boqLoad(*p.BOQ)
		}
	default:
		if p.Area != nil {
			load = areaLoad(*p.Area)
		}
	}

	controls := ControlSaving(p.Controls)
	newKWh := load.newKWh * (1 - controls)
	savedKWh := load.oldKWh - newKWh

	r := Result{Strategy: p.Mode, Investment: load.investment}
	if r.Strategy == "" {
		r.Strategy = LightingModeArea
	}
	r.Revenue = units.KWhValueWan(savedKWh, in.tariff(p.Tariff))
	r.OperatingCost = r.Investment * rate(p.OMRate, in.Base.OMRate, lightingDefaultOMRate)
	r.NetSaving = r.Revenue - r.OperatingCost

	r.Contribution = aggregate.Contribution{
		Resource:       aggregate.ResourceLighting,
		RawCapacityKW:  load.newKW,
		Source:         aggregate.SourceLighting,
		GrossSavingWan: r.NetSaving,
	}
	r.Metrics = []Metric{
		{Name: "Lighting power before", Value: load.oldKW, Unit: "kW"},
		{Name: "Lighting power after", Value: load.newKW, Unit: "kW"},
		{Name: "Consumption before", Value: load.oldKWh, Unit: "kWh/yr"},
		{Name: "Consumption after", Value: newKWh, Unit: "kWh/yr"},
		{Name: "Smart-control saving", Value: controls},
	}
	r.finish(in, flat(r.NetSaving, years))
	r.KPIPrimary = energyKPI("Energy saved", savedKWh)
	r.KPISecondary = paybackKPI(r.Payback)
	return r
}
