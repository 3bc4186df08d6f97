// Package project defines the persisted project model: modules, the project
// context (transformers, bills, tariff) and the base project information.
package project

import (
	"encoding/json"
	"slices"
)

// ModuleKey identifies one retrofit domain.
type ModuleKey string

// Module keys. The string values are part of the persisted document format.
const (
	KeySolar     ModuleKey = "retrofit-solar"
	KeyStorage   ModuleKey = "retrofit-storage"
	KeyHVAC      ModuleKey = "retrofit-hvac"
	KeyLighting  ModuleKey = "retrofit-lighting"
	KeyEV        ModuleKey = "retrofit-ev"
	KeyWater     ModuleKey = "retrofit-water"
	KeyMicrogrid ModuleKey = "retrofit-microgrid"
	KeyVPP       ModuleKey = "retrofit-vpp"
	KeyAI        ModuleKey = "retrofit-ai"
	KeyCarbon    ModuleKey = "retrofit-carbon"
)

// AllKeys lists every module key in display order.
func AllKeys() []ModuleKey {
	return []ModuleKey{
		KeySolar, KeyStorage, KeyHVAC, KeyLighting, KeyEV,
		KeyWater, KeyMicrogrid, KeyVPP, KeyAI, KeyCarbon,
	}
}

// IsKnown reports whether k is one of the module keys above.
func (k ModuleKey) IsKnown() bool {
	for _, known := range AllKeys() {
		if k == known {
			return true
		}
	}
	return false
}

// KPI is a display pair derived from calculator output. It is never authoritative.
type KPI struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Module is one retrofit domain instance. Params is the only input field; every
// other field is recomputed from Params and the cross-module context.
type Module struct {
	ID           ModuleKey       `json:"id"`
	Name         string          `json:"name"`
	IsActive     bool            `json:"isActive"`
	Strategy     string          `json:"strategy"`
	Investment   float64         `json:"investment"`
	YearlySaving float64         `json:"yearlySaving"`
	KPIPrimary   KPI             `json:"kpiPrimary"`
	KPISecondary KPI             `json:"kpiSecondary"`
	Params       json.RawMessage `json:"params,omitempty"`
}

// Building describes one building on the project site.
type Building struct {
	Name   string  `json:"name"`
	Type   string  `json:"type,omitempty"`
	AreaM2 float64 `json:"area"`
}

// SPVConfig describes the special-purpose vehicle financing the project, if any.
type SPVConfig struct {
	Enabled     bool    `json:"enabled"`
	EquityRatio float64 `json:"equityRatio,omitempty"`
	LoanRate    float64 `json:"loanRate,omitempty"`
	LoanYears   int     `json:"loanYears,omitempty"`
}

// BaseInfo is the project header.
type BaseInfo struct {
	Name         string     `json:"name"`
	Type         string     `json:"type,omitempty"`
	Province     string     `json:"province,omitempty"`
	City         string     `json:"city,omitempty"`
	Buildings    []Building `json:"buildings"`
	OMRate       *float64   `json:"omRate,omitempty"`
	TaxRate      *float64   `json:"taxRate,omitempty"`
	DiscountRate *float64   `json:"discountRate,omitempty"`
	SPVConfig    *SPVConfig `json:"spvConfig,omitempty"`
}

// Transformer is a piece of electrical infrastructure. Capacity is in kVA and is
// treated as kW for headroom checks.
type Transformer struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Capacity     float64 `json:"capacity"`
	VoltageLevel string  `json:"voltageLevel"`
}

// Bill is one historical monthly electricity bill. Cost is in yuan.
type Bill struct {
	ID            string  `json:"id"`
	Month         string  `json:"month"`
	KWh           float64 `json:"kwh"`
	Cost          float64 `json:"cost"`
	TransformerID string  `json:"transformerId,omitempty"`
}

// State is the full in-memory project: header, modules and context.
type State struct {
	BaseInfo BaseInfo             `json:"projectBaseInfo"`
	Modules  map[ModuleKey]Module `json:"modules"`
	Context  Context              `json:"-"`
}

// Clone returns a deep copy of s so callers can mutate it without affecting the original.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := &State{
		BaseInfo: s.BaseInfo,
		Modules:  make(map[ModuleKey]Module, len(s.Modules)),
		Context:  s.Context.Clone(),
	}
	out.BaseInfo.Buildings = slices.Clone(s.BaseInfo.Buildings)
	out.BaseInfo.OMRate = clonePtr(s.BaseInfo.OMRate)
	out.BaseInfo.TaxRate = clonePtr(s.BaseInfo.TaxRate)
	out.BaseInfo.DiscountRate = clonePtr(s.BaseInfo.DiscountRate)
	out.BaseInfo.SPVConfig = clonePtr(s.BaseInfo.SPVConfig)
	for k, m := range s.Modules {
		m.Params = slices.Clone(m.Params)
		out.Modules[k] = m
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ActiveKeys returns the keys of active modules in display order.
func (s *State) ActiveKeys() []ModuleKey {
	var keys []ModuleKey
	for _, k := range AllKeys() {
		if m, ok := s.Modules[k]; ok && m.IsActive {
			keys = append(keys, k)
		}
	}
	return keys
}
