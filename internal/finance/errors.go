package finance

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// IRR failures. Calculators convert these into an undefined Rate rather than
// propagating them.
var (
	// ErrNoSignChange means the series has no negative or no positive flow, so no
	// economically meaningful root exists.
	ErrNoSignChange = constError("cash flows never change sign")

	// ErrDerivativeZero means the NPV derivative vanished during iteration.
	ErrDerivativeZero = constError("npv derivative is zero")

	// ErrNonFinite means an iteration produced NaN or Inf.
	ErrNonFinite = constError("irr iteration produced a non-finite value")

	// ErrNoConvergence means the iteration limit was reached.
	ErrNoConvergence = constError("irr did not converge")

	// ErrOutOfRange means the root lies outside the plausible rate band.
	ErrOutOfRange = constError("irr outside plausible range")
)

// Tariff schedule problems. Reported as warnings on import, never fatal.
var (
	// ErrTOUBounds indicates a segment outside [0, 24] or with End <= Start.
	ErrTOUBounds = constError("tou segment outside day bounds")

	// ErrTOUGap indicates hours not covered by any segment.
	ErrTOUGap = constError("tou segments leave a gap")

	// ErrTOUOverlap indicates two segments covering the same hour.
	ErrTOUOverlap = constError("tou segments overlap")
)
