package compiler

import (
	"fmt"
	"math"

	"github.com/roach88/gearmatrix/internal/ir"
)

// Validation error codes (E200-E299)
const (
	// Train-level errors (E200-E209)
	ErrNoGears           = "E201" // at least one gear (the root) is required
	ErrInvalidRootRPM    = "E202" // root RPM must be finite
	ErrInvalidRootTorque = "E203" // root torque must be finite

	// Gear value errors (E210-E219)
	ErrNegativeTeeth   = "E210" // teeth must be >= 0
	ErrInvalidRadius   = "E211" // radius must be finite and > 0
	ErrIndexMismatch   = "E212" // gear index must equal its position
	ErrUnknownGearType = "E213" // gear type not in the compatibility table

	// Graph errors (E220-E229)
	ErrDanglingReference = "E220" // connection names a gear that does not exist
	ErrCycle             = "E221" // connections form a cycle
	ErrIncompatibleTypes = "E222" // edge violates the compatibility table
)

// ValidationError represents one problem found in a train.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Gear    int    `json:"gear"` // -1 when not tied to a gear
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Category returns the GraphErrorCode a validation code belongs to.
// Codes outside the reference, cycle and compatibility ranges are values.
func Category(code string) GraphErrorCode {
	switch code {
	case ErrDanglingReference:
		return ErrCodeInvalidReference
	case ErrCycle:
		return ErrCodeCycleDetected
	case ErrIncompatibleTypes:
		return ErrCodeIncompatibleTypes
	default:
		return ErrCodeInvalidValue
	}
}

// Validate checks a train's root inputs, gear values and references.
// Returns all errors found (does not fail-fast). Cycles and type
// compatibility are checked by BuildGraph.
func Validate(t ir.TrainSpec) []ValidationError {
	var errs []ValidationError

	if !isFinite(t.RootRPM) {
		errs = append(errs, ValidationError{
			Field:   "root_rpm",
			Message: fmt.Sprintf("root RPM must be a finite number, got %v", t.RootRPM),
			Code:    ErrInvalidRootRPM,
			Gear:    -1,
		})
	}
	if !isFinite(t.RootTorque) {
		errs = append(errs, ValidationError{
			Field:   "root_torque",
			Message: fmt.Sprintf("root torque must be a finite number, got %v", t.RootTorque),
			Code:    ErrInvalidRootTorque,
			Gear:    -1,
		})
	}

	return append(errs, validateGears(t.Gears)...)
}

// validateGears checks values first, then references, so that value
// problems always sort ahead of reference problems.
func validateGears(gears []ir.GearSpec) []ValidationError {
	var errs []ValidationError

	if len(gears) == 0 {
		return []ValidationError{{
			Field:   "gears",
			Message: "at least one gear is required; gear 0 is the root",
			Code:    ErrNoGears,
			Gear:    -1,
		}}
	}

	for i, g := range gears {
		if g.Index != i {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("gears[%d].index", i),
				Message: fmt.Sprintf("gear at position %d has index %d", i, g.Index),
				Code:    ErrIndexMismatch,
				Gear:    i,
			})
		}
		if !g.Type.Valid() {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("gears[%d].type", i),
				Message: fmt.Sprintf("unknown gear type %q", g.Type),
				Code:    ErrUnknownGearType,
				Gear:    i,
			})
		}
		if g.Teeth < 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("gears[%d].teeth", i),
				Message: fmt.Sprintf("teeth must not be negative, got %d", g.Teeth),
				Code:    ErrNegativeTeeth,
				Gear:    i,
			})
		}
		if !isFinite(g.Radius) || g.Radius <= 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("gears[%d].radius", i),
				Message: fmt.Sprintf("radius must be a positive number, got %v", g.Radius),
				Code:    ErrInvalidRadius,
				Gear:    i,
			})
		}
	}

	for i, g := range gears {
		for j, target := range g.Connections {
			if target < 0 || target >= len(gears) {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("gears[%d].connections[%d]", i, j),
					Message: fmt.Sprintf("gear %d connects to gear %d, valid range is 0..%d", i, target, len(gears)-1),
					Code:    ErrDanglingReference,
					Gear:    i,
				})
			}
		}
	}

	return errs
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
