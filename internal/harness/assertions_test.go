package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gearmatrix/internal/ir"
)

func reducerCalculation() *ir.Result {
	speed0, torque0 := 1000.0, 10.0
	speed1, torque1, eff1 := 2000.0, 5.0, 1.0
	return &ir.Result{
		Events: []ir.TransmissionEvent{
			{From: 0, To: 1, GearRatio: 2, RadiusRatio: 2, Speed: 2000, Torque: 5, Efficiency: 1},
		},
		States: []ir.GearState{
			{Index: 0, Module: 2.5, Speed: &speed0, Torque: &torque0},
			{Index: 1, Module: 2.5, Speed: &speed1, Torque: &torque1, Efficiency: &eff1},
			{Index: 2, Module: 3},
		},
		Final: ir.FinalGear{Index: 1, Speed: 2000, Torque: 5},
	}
}

func TestAssertEdge(t *testing.T) {
	calc := reducerCalculation()

	ok := Assertion{Type: AssertEdge, From: intPtr(0), To: intPtr(1), Speed: floatPtr(2000), Torque: floatPtr(5.0000001)}
	assert.NoError(t, assertEdge(calc, ok), "within default tolerance")

	wrong := Assertion{Type: AssertEdge, From: intPtr(0), To: intPtr(1), Torque: floatPtr(6)}
	err := assertEdge(calc, wrong)
	require.Error(t, err)

	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertEdge, ae.Type)
	assert.Contains(t, ae.Actual, "torque=5 (want 6)")
	assert.Contains(t, err.Error(), "Traversal:")

	missing := Assertion{Type: AssertEdge, From: intPtr(1), To: intPtr(2)}
	err = assertEdge(calc, missing)
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "not traversed", ae.Actual)
}

func TestAssertEdge_Tolerance(t *testing.T) {
	calc := reducerCalculation()

	loose := Assertion{Type: AssertEdge, From: intPtr(0), To: intPtr(1), Speed: floatPtr(2000.4), Tolerance: 0.5}
	assert.NoError(t, assertEdge(calc, loose))

	tight := Assertion{Type: AssertEdge, From: intPtr(0), To: intPtr(1), Speed: floatPtr(2000.4)}
	assert.Error(t, assertEdge(calc, tight))
}

func TestAssertGearState(t *testing.T) {
	calc := reducerCalculation()

	assert.NoError(t, assertGearState(calc, Assertion{Gear: intPtr(1), Speed: floatPtr(2000), Efficiency: floatPtr(1)}))
	assert.NoError(t, assertGearState(calc, Assertion{Gear: intPtr(2), Reached: boolPtr(false), Module: floatPtr(3)}))

	err := assertGearState(calc, Assertion{Gear: intPtr(2), Reached: boolPtr(true), Speed: floatPtr(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reached=false (want true)")
	assert.Contains(t, err.Error(), "speed=<nil> (want 1)")

	err = assertGearState(calc, Assertion{Gear: intPtr(7)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "train has 3 gears")
}

func TestAssertFinalGear(t *testing.T) {
	calc := reducerCalculation()

	assert.NoError(t, assertFinalGear(calc, Assertion{Gear: intPtr(1), Speed: floatPtr(2000), Torque: floatPtr(5)}))

	err := assertFinalGear(calc, Assertion{Gear: intPtr(2)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "final gear 1")

	err = assertFinalGear(calc, Assertion{Gear: intPtr(1), Torque: floatPtr(4)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "torque=5 (want 4)")
}

func TestAssertTraversalOrder(t *testing.T) {
	calc := reducerCalculation()

	assert.NoError(t, assertTraversalOrder(calc, Assertion{Edges: [][2]int{{0, 1}}}))

	err := assertTraversalOrder(calc, Assertion{Edges: [][2]int{{1, 0}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected: 1→0")
	assert.Contains(t, err.Error(), "Actual: 0→1")

	err = assertTraversalOrder(calc, Assertion{Edges: [][2]int{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(no edges)")
}

func TestAssertWarningCount(t *testing.T) {
	calc := reducerCalculation()
	assert.NoError(t, assertWarningCount(calc, Assertion{Count: intPtr(0)}))

	calc.Warnings = []ir.CompatWarning{{From: 0, To: 1}}
	err := assertWarningCount(calc, Assertion{Count: intPtr(0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 warnings")
}

func TestEvaluateAssertions(t *testing.T) {
	result := NewResult()
	result.Calculation = reducerCalculation()

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertFinalGear, Gear: intPtr(1)},
		{Type: AssertWarningCount, Count: intPtr(2)},
		{Type: "bogus"},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "warning_count")
	assert.Contains(t, errs[1], `unknown assertion type "bogus"`)
}

func TestEvaluateAssertions_FailedCalculation(t *testing.T) {
	result := NewResult()
	result.Error = "CYCLE_DETECTED: cycle in gear connections: 0 → 1 → 0"
	result.ErrorCode = "CYCLE_DETECTED"

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertError, Code: "CYCLE_DETECTED"},
		{Type: AssertError, Code: "INVALID_VALUE"},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Expected: INVALID_VALUE")
}

func boolPtr(b bool) *bool { return &b }
