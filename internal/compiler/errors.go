package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// GraphError is returned when a gear train cannot be turned into a valid
// graph. Callers must not propagate a train that produced one.
type GraphError struct {
	// Code identifies the error category.
	Code GraphErrorCode

	// Message is a human-readable description.
	Message string

	// Gear is the first offending gear index, or -1.
	Gear int

	// Path is the cycle path for CycleDetected, first node repeated at the end.
	Path []int

	// Problems lists every validation problem behind an InvalidValue or
	// InvalidReference error.
	Problems []ValidationError
}

// GraphErrorCode categorizes graph construction errors.
type GraphErrorCode string

const (
	// ErrCodeInvalidValue indicates a number failed to parse or is out of range.
	ErrCodeInvalidValue GraphErrorCode = "INVALID_VALUE"

	// ErrCodeInvalidReference indicates a connection names a missing gear.
	ErrCodeInvalidReference GraphErrorCode = "INVALID_REFERENCE"

	// ErrCodeCycleDetected indicates the connections form a cycle.
	ErrCodeCycleDetected GraphErrorCode = "CYCLE_DETECTED"

	// ErrCodeIncompatibleTypes indicates an edge violates the type table
	// while strict compatibility is enabled.
	ErrCodeIncompatibleTypes GraphErrorCode = "INCOMPATIBLE_TYPES"
)

// Error implements the error interface.
func (e *GraphError) Error() string {
	if len(e.Problems) > 1 {
		return fmt.Sprintf("%s: %s (and %d more)", e.Code, e.Message, len(e.Problems)-1)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCycleError returns true if err is a CycleDetected error.
func IsCycleError(err error) bool {
	return hasCode(err, ErrCodeCycleDetected)
}

// IsInvalidValue returns true if err is an InvalidValue error.
func IsInvalidValue(err error) bool {
	return hasCode(err, ErrCodeInvalidValue)
}

// IsInvalidReference returns true if err is an InvalidReference error.
func IsInvalidReference(err error) bool {
	return hasCode(err, ErrCodeInvalidReference)
}

// IsIncompatibleTypes returns true if err is an IncompatibleTypes error.
func IsIncompatibleTypes(err error) bool {
	return hasCode(err, ErrCodeIncompatibleTypes)
}

// CodeOf returns the GraphErrorCode carried by err, or "" if none.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) GraphErrorCode {
	var ge *GraphError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

func hasCode(err error, code GraphErrorCode) bool {
	return CodeOf(err) == code
}

// NewInvalidValueError creates an InvalidValue error for a single gear.
func NewInvalidValueError(gear int, format string, args ...any) *GraphError {
	return &GraphError{
		Code:    ErrCodeInvalidValue,
		Message: fmt.Sprintf(format, args...),
		Gear:    gear,
	}
}

// NewCycleError creates a CycleDetected error for the given path.
func NewCycleError(path []int) *GraphError {
	gear := -1
	if len(path) > 0 {
		gear = path[0]
	}
	return &GraphError{
		Code:    ErrCodeCycleDetected,
		Message: "cycle in gear connections: " + FormatPath(path),
		Gear:    gear,
		Path:    path,
	}
}

// newValidationFailure wraps validation problems in a GraphError.
// The category follows the first problem.
func newValidationFailure(problems []ValidationError) *GraphError {
	first := problems[0]
	return &GraphError{
		Code:     Category(first.Code),
		Message:  first.Message,
		Gear:     first.Gear,
		Problems: problems,
	}
}

// FormatPath renders a gear path as "0 → 1 → 0".
func FormatPath(path []int) string {
	parts := make([]string, len(path))
	for i, n := range path {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, " → ")
}
