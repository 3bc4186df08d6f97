// Package engine runs the module calculators for a project in dependency order
// and writes their outputs back onto the project state.
//
// A recompute cycle evaluates every module exactly once. Leaf modules run first;
// modules that read cross-module aggregates run only after everything they read
// has been computed in the same cycle, so they always see the latest outputs.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rshade/retrofit/internal/aggregate"
	"github.com/rshade/retrofit/internal/calc"
	"github.com/rshade/retrofit/internal/finance"
	"github.com/rshade/retrofit/internal/logging"
	"github.com/rshade/retrofit/internal/project"
	"github.com/rshade/retrofit/internal/units"
)

// ErrUnknownModule is returned when a mutation names a module key that does not exist.
const ErrUnknownModule = constError("unknown module")

// Engine evaluates projects. It holds no per-project state and is safe to share.
type Engine struct {
	tiers        [][]project.ModuleKey
	years        int
	discountRate float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithHorizon sets the horizon used by modules that do not set their own.
func WithHorizon(years int) Option {
	return func(e *Engine) { e.years = years }
}

// WithDiscountRate sets the NPV discount rate used when the project has none.
func WithDiscountRate(rate float64) Option {
	return func(e *Engine) { e.discountRate = rate }
}

// New returns an engine over DefaultDependencies.
func New(opts ...Option) *Engine {
	e, err := NewWithDependencies(DefaultDependencies(), opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// NewWithDependencies returns an engine over deps, rejecting cyclic tables.
func NewWithDependencies(deps Dependencies, opts ...Option) (*Engine, error) {
	tiers, err := Tiers(deps)
	if err != nil {
		return nil, err
	}
	e := &Engine{tiers: tiers, discountRate: calc.DefaultDiscountRate}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Tiers returns the evaluation tiers.
func (e *Engine) Tiers() [][]project.ModuleKey {
	return e.tiers
}

// ModuleWarning is a warning raised by one module's calculator.
type ModuleWarning struct {
	Module  project.ModuleKey `json:"module"`
	Message string            `json:"message"`
}

// Summary is the project-level view over active modules. Currency is in wan.
type Summary struct {
	ActiveModules     []project.ModuleKey `json:"activeModules"`
	TotalInvestment   float64             `json:"totalInvestment"`
	TotalYearlySaving float64             `json:"totalYearlySaving"`
	Payback           float64             `json:"payback"`
	PaybackYear       int                 `json:"paybackYear"`
	IRR               finance.Rate        `json:"irr"`
	NPV               float64             `json:"npv"`
	CashFlows         []float64           `json:"cashFlows"`
	Warnings          []ModuleWarning     `json:"warnings,omitempty"`
}

// Report is the outcome of one recompute cycle.
type Report struct {
	Price   float64                           `json:"price"`
	Results map[project.ModuleKey]calc.Result `json:"results"`
	Summary Summary                           `json:"summary"`
}

// EnsureModules adds an inactive module with default params for every key the
// state is missing.
func EnsureModules(s *project.State) {
	if s.Modules == nil {
		s.Modules = make(map[project.ModuleKey]project.Module)
	}
	for _, k := range project.AllKeys() {
		if _, ok := s.Modules[k]; ok {
			continue
		}
		m, err := calc.NewModule(k)
		if err != nil {
			continue
		}
		s.Modules[k] = m
	}
}

// Recompute evaluates every module and replaces each Module on s with its
// recomputed outputs. Running it twice on unchanged input is a no-op.
func (e *Engine) Recompute(ctx context.Context, s *project.State) *Report {
	log := logging.FromContext(ctx)
	start := time.Now()
	EnsureModules(s)

	price := finance.WeightedAveragePrice(s.Context.Price)
	base := calc.Inputs{
		Context:      s.Context,
		Base:         s.BaseInfo,
		Price:        price,
		DiscountRate: e.discountRate,
		Years:        e.years,
	}

	var bundle aggregate.Bundle
	if m, ok := s.Modules[project.KeyAI]; ok {
		if p, err := calc.Decode[calc.AIParams](m.Params); err == nil {
			bundle = p.Bundle(m.IsActive)
		}
	}

	report := &Report{Price: price, Results: make(map[project.ModuleKey]calc.Result, len(s.Modules))}
	entries := make([]aggregate.Entry, 0, len(s.Modules))

	for tierIdx, tier := range e.tiers {
		snap := aggregate.NewSnapshot(entries, bundle, price)
		in := base
		if tierIdx > 0 {
			in.Flexibility = aggregate.ForVPP(snap)
			in.Carbon = aggregate.ForCarbon(snap)
			in.Microgrid = aggregate.ForMicrogrid(snap)
		}

		for _, key := range tier {
			m := s.Modules[key]
			r, err := calc.Run(key, m.Params, in)
			if err != nil {
				log.Warn().
					Ctx(ctx).
					Str("component", "engine").
					Str("module", string(key)).
					Err(err).
					Msg("module params could not be decoded, using zero values")
			}
			report.Results[key] = r

			// Immutable replace of the stored module.
			m.Name = calc.Name(key)
			m.Strategy = r.Strategy
			m.Investment = r.Investment
			m.YearlySaving = r.NetSaving
			m.KPIPrimary = r.KPIPrimary
			m.KPISecondary = r.KPISecondary
			s.Modules[key] = m

			entries = append(entries, aggregate.Entry{
				Key:          key,
				Active:       m.IsActive,
				YearlySaving: r.NetSaving,
				Contribution: r.Contribution,
			})
		}
	}

	report.Summary = e.summarize(s, report.Results, base)

	log.Debug().
		Ctx(ctx).
		Str("component", "engine").
		Str("operation", "recompute").
		Int("active_modules", len(report.Summary.ActiveModules)).
		Float64("total_investment", report.Summary.TotalInvestment).
		Dur("duration_ms", time.Since(start)).
		Msg("recompute complete")

	return report
}

func (e *Engine) summarize(s *project.State, results map[project.ModuleKey]calc.Result, in calc.Inputs) Summary {
	var sum Summary
	var flows [][]float64
	for _, key := range s.ActiveKeys() {
		r := results[key]
		sum.ActiveModules = append(sum.ActiveModules, key)
		sum.TotalInvestment += r.Investment
		sum.TotalYearlySaving += r.NetSaving
		flows = append(flows, r.CashFlows)
		for _, w := range r.Warnings {
			sum.Warnings = append(sum.Warnings, ModuleWarning{Module: key, Message: w})
		}
	}

	sum.CashFlows = finance.SumSeries(flows...)
	sum.Payback = finance.SimplePayback(sum.TotalInvestment, sum.TotalYearlySaving)
	sum.PaybackYear = finance.PaybackIndex(sum.CashFlows)
	sum.IRR = finance.RateFromFlows(sum.CashFlows)

	rate := e.discountRate
	if r := in.Base.DiscountRate; r != nil && *r > -1 {
		rate = *r
	}
	sum.NPV = units.Finite(finance.NPV(rate, sum.CashFlows))
	return sum
}

// SetParams replaces a module's params and recomputes. Params that do not decode
// are rejected and s is left untouched.
func (e *Engine) SetParams(ctx context.Context, s *project.State, key project.ModuleKey, params json.RawMessage) (*Report, error) {
	if !key.IsKnown() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, key)
	}
	if _, err := calc.Run(key, params, calc.Inputs{}); err != nil {
		return nil, fmt.Errorf("setting params for %s: %w", key, err)
	}
	EnsureModules(s)
	m := s.Modules[key]
	m.Params = append(json.RawMessage(nil), params...)
	s.Modules[key] = m
	return e.Recompute(ctx, s), nil
}

// SetActive toggles a module and recomputes.
func (e *Engine) SetActive(ctx context.Context, s *project.State, key project.ModuleKey, active bool) (*Report, error) {
	if !key.IsKnown() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, key)
	}
	EnsureModules(s)
	m := s.Modules[key]
	m.IsActive = active
	s.Modules[key] = m

	logging.FromContext(ctx).Info().
		Ctx(ctx).
		Str("component", "engine").
		Str("module", string(key)).
		Bool("active", active).
		Msg("module toggled")

	return e.Recompute(ctx, s), nil
}
