package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/gearmatrix/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string                 // Assertion type for categorization
	Expected string                 // Human-readable expected outcome
	Actual   string                 // Human-readable actual outcome
	Events   []ir.TransmissionEvent // Full traversal for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Events) > 0 {
		fmt.Fprintf(&buf, "\nTraversal:\n")
		for i, ev := range e.Events {
			fmt.Fprintf(&buf, "  [%d] %d → %d speed=%g torque=%g\n", i+1, ev.From, ev.To, ev.Speed, ev.Torque)
		}
	}

	return buf.String()
}

// check is one optional numeric expectation.
type check struct {
	name     string
	expected *float64
	actual   *float64
}

// compare returns a description of every failed check, or "".
func compare(checks []check, tolerance float64) string {
	var diffs []string
	for _, c := range checks {
		if c.expected == nil {
			continue
		}
		if c.actual == nil {
			diffs = append(diffs, fmt.Sprintf("%s=<nil> (want %g)", c.name, *c.expected))
			continue
		}
		if math.Abs(*c.actual-*c.expected) > tolerance {
			diffs = append(diffs, fmt.Sprintf("%s=%g (want %g)", c.name, *c.actual, *c.expected))
		}
	}
	return strings.Join(diffs, ", ")
}

func tolerance(a Assertion) float64 {
	if a.Tolerance > 0 {
		return a.Tolerance
	}
	return DefaultTolerance
}

// assertEdge checks that the traversal contains edge from → to with the
// expected values.
func assertEdge(calc *ir.Result, a Assertion) error {
	for _, ev := range calc.Events {
		if ev.From != *a.From || ev.To != *a.To {
			continue
		}
		diff := compare([]check{
			{"speed", a.Speed, &ev.Speed},
			{"torque", a.Torque, &ev.Torque},
			{"efficiency", a.Efficiency, &ev.Efficiency},
			{"gear_ratio", a.GearRatio, &ev.GearRatio},
			{"radius_ratio", a.RadiusRatio, &ev.RadiusRatio},
		}, tolerance(a))
		if diff == "" {
			return nil
		}
		return &AssertionError{
			Type:     AssertEdge,
			Expected: fmt.Sprintf("edge %d → %d", *a.From, *a.To),
			Actual:   diff,
			Events:   calc.Events,
		}
	}

	return &AssertionError{
		Type:     AssertEdge,
		Expected: fmt.Sprintf("edge %d → %d", *a.From, *a.To),
		Actual:   "not traversed",
		Events:   calc.Events,
	}
}

// assertGearState checks the computed state of one gear.
func assertGearState(calc *ir.Result, a Assertion) error {
	gear := *a.Gear
	if gear < 0 || gear >= len(calc.States) {
		return &AssertionError{
			Type:     AssertGearState,
			Expected: fmt.Sprintf("gear %d", gear),
			Actual:   fmt.Sprintf("train has %d gears", len(calc.States)),
		}
	}
	s := calc.States[gear]

	var diffs []string
	if a.Reached != nil && *a.Reached != s.Reached() {
		diffs = append(diffs, fmt.Sprintf("reached=%t (want %t)", s.Reached(), *a.Reached))
	}
	if diff := compare([]check{
		{"speed", a.Speed, s.Speed},
		{"torque", a.Torque, s.Torque},
		{"efficiency", a.Efficiency, s.Efficiency},
		{"module", a.Module, &s.Module},
	}, tolerance(a)); diff != "" {
		diffs = append(diffs, diff)
	}

	if len(diffs) > 0 {
		return &AssertionError{
			Type:     AssertGearState,
			Expected: fmt.Sprintf("gear %d", gear),
			Actual:   strings.Join(diffs, ", "),
			Events:   calc.Events,
		}
	}
	return nil
}

// assertFinalGear checks the final gear summary.
func assertFinalGear(calc *ir.Result, a Assertion) error {
	final := calc.Final
	if final.Index != *a.Gear {
		return &AssertionError{
			Type:     AssertFinalGear,
			Expected: fmt.Sprintf("final gear %d", *a.Gear),
			Actual:   fmt.Sprintf("final gear %d", final.Index),
			Events:   calc.Events,
		}
	}
	if diff := compare([]check{
		{"speed", a.Speed, &final.Speed},
		{"torque", a.Torque, &final.Torque},
	}, tolerance(a)); diff != "" {
		return &AssertionError{
			Type:     AssertFinalGear,
			Expected: fmt.Sprintf("final gear %d", *a.Gear),
			Actual:   diff,
			Events:   calc.Events,
		}
	}
	return nil
}

// assertTraversalOrder checks that the traversal visited exactly the given
// edges in order.
func assertTraversalOrder(calc *ir.Result, a Assertion) error {
	actual := make([][2]int, len(calc.Events))
	for i, ev := range calc.Events {
		actual[i] = [2]int{ev.From, ev.To}
	}

	if len(actual) == len(a.Edges) {
		same := true
		for i := range actual {
			if actual[i] != a.Edges[i] {
				same = false
				break
			}
		}
		if same {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraversalOrder,
		Expected: formatEdges(a.Edges),
		Actual:   formatEdges(actual),
	}
}

func assertWarningCount(calc *ir.Result, a Assertion) error {
	if len(calc.Warnings) == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertWarningCount,
		Expected: fmt.Sprintf("%d warnings", *a.Count),
		Actual:   fmt.Sprintf("%d warnings", len(calc.Warnings)),
	}
}

func assertErrorCode(result *Result, a Assertion) error {
	if result.ErrorCode == a.Code {
		return nil
	}
	actual := "calculation succeeded"
	if result.Error != "" {
		actual = result.Error
	}
	return &AssertionError{
		Type:     AssertError,
		Expected: a.Code,
		Actual:   actual,
	}
}

func formatEdges(edges [][2]int) string {
	if len(edges) == 0 {
		return "(no edges)"
	}
	parts := make([]string, len(edges))
	for i, e := range edges {
		parts[i] = fmt.Sprintf("%d→%d", e[0], e[1])
	}
	return strings.Join(parts, ", ")
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		if assertion.Type != AssertError && result.Calculation == nil {
			errors = append(errors, fmt.Sprintf("assertion[%d]: %s requires a successful calculation", i, assertion.Type))
			continue
		}

		switch assertion.Type {
		case AssertEdge:
			err = assertEdge(result.Calculation, assertion)
		case AssertGearState:
			err = assertGearState(result.Calculation, assertion)
		case AssertFinalGear:
			err = assertFinalGear(result.Calculation, assertion)
		case AssertTraversalOrder:
			err = assertTraversalOrder(result.Calculation, assertion)
		case AssertWarningCount:
			err = assertWarningCount(result.Calculation, assertion)
		case AssertError:
			err = assertErrorCode(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
