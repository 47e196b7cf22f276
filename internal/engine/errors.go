package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/gearmatrix/internal/compiler"
)

// CalculationError reports a failed calculation for a named train.
//
// The cause is a *compiler.GraphError for invalid trains, so
// compiler.IsCycleError and friends work through it.
type CalculationError struct {
	// Train is the train name, possibly empty.
	Train string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *CalculationError) Error() string {
	if e.Train != "" {
		return fmt.Sprintf("train %q: %v", e.Train, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *CalculationError) Unwrap() error {
	return e.Err
}

// IsInvalidTrain returns true if err was caused by a train that failed
// validation, as opposed to a canceled batch or an internal failure.
// Uses errors.As to handle wrapped errors.
func IsInvalidTrain(err error) bool {
	var ge *compiler.GraphError
	return errors.As(err, &ge)
}

// newUnitError turns a unit lookup failure into an InvalidValue error.
func newUnitError(err error) *compiler.GraphError {
	return compiler.NewInvalidValueError(-1, "%v", err)
}
