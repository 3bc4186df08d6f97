// Package aggregate derives the cross-module figures that no single module can
// compute from its own parameters: adjustable capacity for VPP, avoided energy by
// source for carbon accounting, and the AI-platform bundle deduction for microgrid.
//
// Aggregation reads an immutable Snapshot of module outputs. Inactive entries never
// contribute, and the order of entries does not affect any result.
package aggregate

import (
	"slices"

	"github.com/rshade/retrofit/internal/project"
	"github.com/rshade/retrofit/internal/units"
)

// ResourceType is a flexible-load category offered to the grid.
type ResourceType string

// Resource types with a VPP response factor.
const (
	ResourceStorage  ResourceType = "storage"
	ResourceEV       ResourceType = "ev"
	ResourceHVAC     ResourceType = "hvac"
	ResourceLighting ResourceType = "lighting"
)

// ResponseFactors is the share of raw capacity each resource type can actually shift
// on a dispatch call.
//
//nolint:gochecknoglobals // Read-only lookup table.
var ResponseFactors = map[ResourceType]float64{
	ResourceStorage:  0.9,
	ResourceEV:       0.3,
	ResourceHVAC:     0.15,
	ResourceLighting: 0.1,
}

// Resources lists the resource types in report order.
func Resources() []ResourceType {
	return []ResourceType{ResourceStorage, ResourceEV, ResourceHVAC, ResourceLighting}
}

// SourceType classifies energy savings for carbon accounting.
type SourceType string

// Carbon source types. SourceNone excludes a module from carbon aggregation.
const (
	SourceNone     SourceType = ""
	SourceHVAC     SourceType = "hvac"
	SourceLighting SourceType = "lighting"
	SourceSolar    SourceType = "solar"
	SourceOther    SourceType = "other"
)

// Bundle pricing modes of the AI platform.
const (
	PricingStandalone = "standalone"
	PricingBundle     = "bundle"
)

// BundleSoftwareDeductionWan is the software licence cost waived on each microgrid
// controller unit when the AI platform bundles the microgrid, in wan.
const BundleSoftwareDeductionWan = 3.0

// Contribution is what a module offers to its consumers.
type Contribution struct {
	// Resource and RawCapacityKW describe flexible load for VPP and microgrid.
	Resource      ResourceType `json:"resource,omitempty"`
	RawCapacityKW float64      `json:"rawCapacityKW,omitempty"`

	// Source classifies the saving for carbon accounting. GrossSavingWan is the
	// physical saving behind it, which for a shared-savings contract can exceed the
	// module's own yearly saving.
	Source         SourceType `json:"source,omitempty"`
	GrossSavingWan float64    `json:"grossSavingWan,omitempty"`

	// GenerationKWh and SelfConsumedKWh are reported by on-site generation.
	GenerationKWh   float64 `json:"generationKWh,omitempty"`
	SelfConsumedKWh float64 `json:"selfConsumedKWh,omitempty"`
}

// Entry is one module's committed output.
type Entry struct {
	Key          project.ModuleKey `json:"key"`
	Active       bool              `json:"active"`
	YearlySaving float64           `json:"yearlySaving"`
	Contribution Contribution      `json:"contribution"`
}

// Bundle is the AI platform pricing configuration.
type Bundle struct {
	Active bool                `json:"active"`
	Mode   string              `json:"mode"`
	Scope  []project.ModuleKey `json:"scope"`
}

// Covers reports whether key receives the bundle discount. All three conditions
// must hold: the platform is active, priced as a bundle, and lists key in scope.
func (b Bundle) Covers(key project.ModuleKey) bool {
	return b.Active && b.Mode == PricingBundle && slices.Contains(b.Scope, key)
}

// Snapshot is the read-only view of module outputs for one update cycle.
type Snapshot struct {
	Entries []Entry
	Bundle  Bundle
	Price   float64
}

// NewSnapshot copies entries so later edits by the caller are not observed.
func NewSnapshot(entries []Entry, bundle Bundle, price float64) Snapshot {
	bundle.Scope = slices.Clone(bundle.Scope)
	return Snapshot{Entries: slices.Clone(entries), Bundle: bundle, Price: price}
}

func (s Snapshot) active(exclude project.ModuleKey) []Entry {
	out := make([]Entry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.Active && e.Key != exclude {
			out = append(out, e)
		}
	}
	return out
}

// Flexibility is the adjustable load available from active modules.
type Flexibility struct {
	Raw             map[ResourceType]float64 `json:"raw"`
	Adjustable      map[ResourceType]float64 `json:"adjustable"`
	TotalRaw        float64                  `json:"totalRaw"`
	TotalAdjustable float64                  `json:"totalAdjustable"`
}

// ForVPP aggregates raw and adjustable capacity per resource type.
func ForVPP(s Snapshot) Flexibility {
	return flexibility(s, project.KeyVPP)
}

func flexibility(s Snapshot, self project.ModuleKey) Flexibility {
	f := Flexibility{
		Raw:        make(map[ResourceType]float64, len(ResponseFactors)),
		Adjustable: make(map[ResourceType]float64, len(ResponseFactors)),
	}
	for _, r := range Resources() {
		f.Raw[r] = 0
		f.Adjustable[r] = 0
	}
	for _, e := range s.active(self) {
		factor, ok := ResponseFactors[e.Contribution.Resource]
		if !ok {
			continue
		}
		raw := units.NonNegative(e.Contribution.RawCapacityKW)
		f.Raw[e.Contribution.Resource] += raw
		f.Adjustable[e.Contribution.Resource] += raw * factor
	}
	for _, r := range Resources() {
		f.TotalRaw += f.Raw[r]
		f.TotalAdjustable += f.Adjustable[r]
	}
	return f
}

// CarbonInputs is the avoided energy of active modules, by source.
type CarbonInputs struct {
	SavingKWh map[SourceType]float64 `json:"savingKWh"`
	TotalKWh  float64                `json:"totalKWh"`
	SolarKWh  float64                `json:"solarKWh"`
}

// KWh returns the avoided energy attributed to src.
func (c CarbonInputs) KWh(src SourceType) float64 { return c.SavingKWh[src] }

// ForCarbon converts each active module's gross saving into avoided kWh at the
// snapshot tariff. Solar generation is reported separately for certificates.
func ForCarbon(s Snapshot) CarbonInputs {
	c := CarbonInputs{SavingKWh: map[SourceType]float64{
		SourceHVAC: 0, SourceLighting: 0, SourceSolar: 0, SourceOther: 0,
	}}
	for _, e := range s.active(project.KeyCarbon) {
		src := e.Contribution.Source
		if src == SourceNone {
			continue
		}
		kwh := units.NonNegative(units.WanToKWh(e.Contribution.GrossSavingWan, s.Price))
		c.SavingKWh[src] += kwh
		c.TotalKWh += kwh
		if src == SourceSolar {
			c.SolarKWh += units.NonNegative(e.Contribution.GenerationKWh)
		}
	}
	return c
}

// MicrogridInputs is what the microgrid reads from other modules.
type MicrogridInputs struct {
	IsBundled            bool        `json:"isBundled"`
	SoftwareDeductionWan float64     `json:"softwareDeductionWan"`
	SolarSelfConsumedKWh float64     `json:"solarSelfConsumedKWh"`
	Flexibility          Flexibility `json:"flexibility"`
}

// ForMicrogrid resolves the bundle deduction per controller unit and collects
// on-site generation and flexibility. The deduction is exactly zero unless the
// bundle covers the microgrid.
func ForMicrogrid(s Snapshot) MicrogridInputs {
	in := MicrogridInputs{Flexibility: flexibility(s, project.KeyMicrogrid)}
	if s.Bundle.Covers(project.KeyMicrogrid) {
		in.IsBundled = true
		in.SoftwareDeductionWan = BundleSoftwareDeductionWan
	}
	for _, e := range s.active(project.KeyMicrogrid) {
		in.SolarSelfConsumedKWh += units.NonNegative(e.Contribution.SelfConsumedKWh)
	}
	return in
}

// Totals are the project-level sums over active modules.
type Totals struct {
	ActiveCount  int     `json:"activeCount"`
	YearlySaving float64 `json:"yearlySaving"`
}

// ForAll sums yearly saving across active modules.
func ForAll(s Snapshot) Totals {
	var t Totals
	for _, e := range s.active("") {
		t.ActiveCount++
		t.YearlySaving += e.YearlySaving
	}
	return t
}
