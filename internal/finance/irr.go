// Package finance holds the financial primitives shared by every calculator:
// NPV and IRR, cash-flow series, payback and tariff averaging.
package finance

import (
	"fmt"
	"math"

	"github.com/rshade/retrofit/internal/units"
)

// IRR solver settings.
const (
	// DefaultIRRGuess is the starting rate when the caller passes 0.
	DefaultIRRGuess = 0.10

	// IRRMaxIterations bounds the Newton-Raphson loop.
	IRRMaxIterations = 100

	// IRRTolerance is the largest accepted change between successive estimates.
	IRRTolerance = 1e-5

	// IRRMinRate and IRRMaxRate delimit a plausible result.
	IRRMinRate = -0.99
	IRRMaxRate = 10.0
)

// NPV discounts flows at rate. flows[0] is undiscounted.
func NPV(rate float64, flows []float64) float64 {
	total := 0.0
	for t, cf := range flows {
		total += cf / math.Pow(1+rate, float64(t))
	}
	return total
}

// npvDerivative is d/dr of NPV: Σ -t·CF[t]/(1+r)^(t+1).
func npvDerivative(rate float64, flows []float64) float64 {
	total := 0.0
	for t, cf := range flows {
		if t == 0 {
			continue
		}
		total += -float64(t) * cf / math.Pow(1+rate, float64(t+1))
	}
	return total
}

// IRR finds the rate at which NPV(flows) is zero using Newton-Raphson.
//
// It iterates at most IRRMaxIterations times, stopping when successive estimates
// differ by at most IRRTolerance. A guess of 0 uses DefaultIRRGuess. Failures are
// reported through the sentinel errors in this package and the returned rate is 0.
func IRR(flows []float64, guess float64) (float64, error) {
	if !hasSignChange(flows) {
		return 0, ErrNoSignChange
	}
	if guess == 0 {
		guess = DefaultIRRGuess
	}

	rate := guess
	for range IRRMaxIterations {
		f := NPV(rate, flows)
		df := npvDerivative(rate, flows)
		if df == 0 {
			return 0, ErrDerivativeZero
		}

		next := rate - f/df
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return 0, ErrNonFinite
		}

		if math.Abs(next-rate) <= IRRTolerance {
			if next < IRRMinRate || next > IRRMaxRate {
				return 0, fmt.Errorf("%w: %.4f", ErrOutOfRange, next)
			}
			return next, nil
		}
		rate = next
	}

	return 0, ErrNoConvergence
}

func hasSignChange(flows []float64) bool {
	var pos, neg bool
	for _, cf := range flows {
		switch {
		case cf > 0:
			pos = true
		case cf < 0:
			neg = true
		}
	}
	return pos && neg
}

// Rate is a computed rate that may be undefined.
type Rate struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// UndefinedRate is reported when IRR has no meaningful root.
var UndefinedRate = Rate{} //nolint:gochecknoglobals // Zero value, never mutated

// RateFromFlows computes the IRR of flows, converting any failure into UndefinedRate.
func RateFromFlows(flows []float64) Rate {
	r, err := IRR(flows, DefaultIRRGuess)
	if err != nil {
		return UndefinedRate
	}
	return Rate{Value: r, Valid: true}
}

// Percent returns the rate as a percentage, or 0 when undefined.
func (r Rate) Percent() float64 {
	if !r.Valid {
		return 0
	}
	return r.Value * units.PercentMultiplier
}

// String renders the rate as "14.50%" or "N/A".
func (r Rate) String() string {
	if !r.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", r.Percent())
}
