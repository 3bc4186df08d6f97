package greenops

// constError is an immutable error type for sentinel errors.
// It implements the error interface and provides compile-time safety.
type constError string

func (e constError) Error() string { return string(e) }

// Error types for equivalency calculations.
var (
	// ErrNegativeValue indicates a negative reduction or energy figure.
	ErrNegativeValue = constError("negative carbon value")

	// ErrCalculationOverflow indicates a non-finite input or result.
	ErrCalculationOverflow = constError("calculation overflow")
)
