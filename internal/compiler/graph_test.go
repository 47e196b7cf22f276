package compiler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gearmatrix/internal/ir"
)

// spur builds a Spur gear with radius 50 connected to the given targets.
func spur(index, teeth int, conns ...int) ir.GearSpec {
	return ir.GearSpec{Index: index, Type: ir.Spur, Teeth: teeth, Radius: 50, Connections: conns}
}

func TestBuildGraph_Simple(t *testing.T) {
	gears := []ir.GearSpec{spur(0, 20, 1), spur(1, 40)}

	g, warnings, err := BuildGraph(gears, BuildOptions{})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, [][]int{{1}, {}}, g.Successors)
}

func TestBuildGraph_KeepsDeclarationOrder(t *testing.T) {
	gears := []ir.GearSpec{spur(0, 20, 3, 1, 2), spur(1, 20), spur(2, 20), spur(3, 20)}

	g, _, err := BuildGraph(gears, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, g.Successors[0])
}

func TestBuildGraph_DeduplicatesConnections(t *testing.T) {
	gears := []ir.GearSpec{spur(0, 20, 2, 1, 2, 1), spur(1, 20), spur(2, 20)}

	g, _, err := BuildGraph(gears, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, g.Successors[0])
}

func TestBuildGraph_DoesNotModifyInput(t *testing.T) {
	gears := []ir.GearSpec{spur(0, 20, 1, 1), spur(1, 20)}

	_, _, err := BuildGraph(gears, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, gears[0].Connections)
}

// TestBuildGraph_TwoNodeCycle covers gear 0 → gear 1 → gear 0.
func TestBuildGraph_TwoNodeCycle(t *testing.T) {
	gears := []ir.GearSpec{spur(0, 20, 1), spur(1, 40, 0)}

	g, warnings, err := BuildGraph(gears, BuildOptions{})
	require.Error(t, err)
	assert.Nil(t, g)
	assert.Nil(t, warnings)
	assert.True(t, IsCycleError(err))

	var ge *GraphError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, []int{0, 1, 0}, ge.Path)
	assert.Contains(t, err.Error(), "0 → 1 → 0")
}

func TestBuildGraph_SelfLoop(t *testing.T) {
	gears := []ir.GearSpec{spur(0, 20, 1), spur(1, 40, 1)}

	_, _, err := BuildGraph(gears, BuildOptions{})
	require.Error(t, err)

	var ge *GraphError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, ErrCodeCycleDetected, ge.Code)
	assert.Equal(t, []int{1, 1}, ge.Path)
	assert.Equal(t, 1, ge.Gear)
}

func TestBuildGraph_CycleUnreachableFromRoot(t *testing.T) {
	// Gear 0 drives nothing; gears 2 → 3 → 4 → 2 form an island.
	gears := []ir.GearSpec{
		spur(0, 20, 1),
		spur(1, 20),
		spur(2, 20, 3),
		spur(3, 20, 4),
		spur(4, 20, 2),
	}

	_, _, err := BuildGraph(gears, BuildOptions{})
	require.Error(t, err)

	var ge *GraphError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, []int{2, 3, 4, 2}, ge.Path)
}

func TestBuildGraph_DiamondAccepted(t *testing.T) {
	// 0 → 1 → 3 and 0 → 2 → 3 reconverge without a back edge.
	gears := []ir.GearSpec{
		spur(0, 20, 1, 2),
		spur(1, 20, 3),
		spur(2, 20, 3),
		spur(3, 20),
	}

	g, _, err := BuildGraph(gears, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {3}, {3}, {}}, g.Successors)
}

func TestBuildGraph_CrossEdgeIntoFinishedBranch(t *testing.T) {
	// 0 → 2 finishes 2 before 1 → 2 is examined; that is a cross edge.
	gears := []ir.GearSpec{spur(0, 20, 2, 1), spur(1, 20, 2), spur(2, 20)}

	_, _, err := BuildGraph(gears, BuildOptions{})
	assert.NoError(t, err)
}

func TestBuildGraph_InvalidReference(t *testing.T) {
	tests := []struct {
		name   string
		target int
	}{
		{"past end", 2},
		{"far past end", 99},
		{"negative", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gears := []ir.GearSpec{spur(0, 20, 1, tt.target), spur(1, 40)}

			_, _, err := BuildGraph(gears, BuildOptions{})
			require.Error(t, err)
			assert.True(t, IsInvalidReference(err))
			assert.False(t, IsCycleError(err))

			var ge *GraphError
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, 0, ge.Gear)
			require.Len(t, ge.Problems, 1)
			assert.Equal(t, ErrDanglingReference, ge.Problems[0].Code)
		})
	}
}

func TestBuildGraph_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ir.GearSpec)
		code   string
	}{
		{"negative teeth", func(g *ir.GearSpec) { g.Teeth = -3 }, ErrNegativeTeeth},
		{"zero radius", func(g *ir.GearSpec) { g.Radius = 0 }, ErrInvalidRadius},
		{"negative radius", func(g *ir.GearSpec) { g.Radius = -5 }, ErrInvalidRadius},
		{"NaN radius", func(g *ir.GearSpec) { g.Radius = math.NaN() }, ErrInvalidRadius},
		{"infinite radius", func(g *ir.GearSpec) { g.Radius = math.Inf(1) }, ErrInvalidRadius},
		{"unknown type", func(g *ir.GearSpec) { g.Type = "Sprocket" }, ErrUnknownGearType},
		{"index mismatch", func(g *ir.GearSpec) { g.Index = 7 }, ErrIndexMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gears := []ir.GearSpec{spur(0, 20, 1), spur(1, 40)}
			tt.mutate(&gears[1])

			_, _, err := BuildGraph(gears, BuildOptions{})
			require.Error(t, err)
			assert.True(t, IsInvalidValue(err))

			var ge *GraphError
			require.ErrorAs(t, err, &ge)
			require.NotEmpty(t, ge.Problems)
			assert.Equal(t, tt.code, ge.Problems[0].Code)
			assert.Equal(t, 1, ge.Gear)
		})
	}
}

func TestBuildGraph_ZeroTeethTolerated(t *testing.T) {
	gears := []ir.GearSpec{spur(0, 0, 1), spur(1, 40)}

	_, _, err := BuildGraph(gears, BuildOptions{})
	assert.NoError(t, err)
}

func TestBuildGraph_NoGears(t *testing.T) {
	_, _, err := BuildGraph(nil, BuildOptions{})
	require.Error(t, err)
	assert.True(t, IsInvalidValue(err))

	var ge *GraphError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, ErrNoGears, ge.Problems[0].Code)
	assert.Equal(t, -1, ge.Gear)
}

func TestBuildGraph_ValuesReportedBeforeReferences(t *testing.T) {
	gears := []ir.GearSpec{spur(0, 20, 5), spur(1, -1)}

	_, _, err := BuildGraph(gears, BuildOptions{})
	require.Error(t, err)
	assert.True(t, IsInvalidValue(err))

	var ge *GraphError
	require.ErrorAs(t, err, &ge)
	require.Len(t, ge.Problems, 2)
	assert.Equal(t, ErrNegativeTeeth, ge.Problems[0].Code)
	assert.Equal(t, ErrDanglingReference, ge.Problems[1].Code)
	assert.Contains(t, err.Error(), "and 1 more")
}

func TestBuildGraph_ValidationBeforeCycle(t *testing.T) {
	// Both a cycle and a bad radius: the value problem wins.
	gears := []ir.GearSpec{spur(0, 20, 1), spur(1, 40, 0)}
	gears[1].Radius = 0

	_, _, err := BuildGraph(gears, BuildOptions{})
	require.Error(t, err)
	assert.True(t, IsInvalidValue(err))
}

func TestBuildGraph_CompatWarn(t *testing.T) {
	gears := []ir.GearSpec{
		{Index: 0, Type: ir.Worm, Teeth: 1, Radius: 10, Connections: []int{1, 2}},
		{Index: 1, Type: ir.Spur, Teeth: 40, Radius: 50},
		{Index: 2, Type: ir.Helical, Teeth: 40, Radius: 50},
	}

	g, warnings, err := BuildGraph(gears, BuildOptions{Compat: CompatWarn})
	require.NoError(t, err)
	require.NotNil(t, g)
	require.Len(t, warnings, 1)

	w := warnings[0]
	assert.Equal(t, 0, w.From)
	assert.Equal(t, 2, w.To)
	assert.Equal(t, ir.Worm, w.FromType)
	assert.Equal(t, ir.Helical, w.ToType)
	assert.Equal(t, "warning", w.Level)
	assert.Contains(t, w.Message, "allowed: Spur")
}

func TestBuildGraph_CompatDefaultIsWarn(t *testing.T) {
	gears := []ir.GearSpec{
		{Index: 0, Type: ir.Rack, Teeth: 30, Radius: 10, Connections: []int{1}},
		{Index: 1, Type: ir.Spur, Teeth: 20, Radius: 10},
	}

	_, warnings, err := BuildGraph(gears, BuildOptions{})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "allowed: none")
}

func TestBuildGraph_CompatOff(t *testing.T) {
	gears := []ir.GearSpec{
		{Index: 0, Type: ir.Bevel, Teeth: 20, Radius: 10, Connections: []int{1}},
		{Index: 1, Type: ir.Spur, Teeth: 20, Radius: 10},
	}

	g, warnings, err := BuildGraph(gears, BuildOptions{Compat: CompatOff})
	require.NoError(t, err)
	assert.NotNil(t, g)
	assert.Nil(t, warnings)
}

func TestBuildGraph_CompatStrict(t *testing.T) {
	gears := []ir.GearSpec{
		{Index: 0, Type: ir.Worm, Teeth: 1, Radius: 10, Connections: []int{1}},
		{Index: 1, Type: ir.Helical, Teeth: 40, Radius: 50},
	}

	g, _, err := BuildGraph(gears, BuildOptions{Compat: CompatStrict})
	require.Error(t, err)
	assert.Nil(t, g)
	assert.True(t, IsIncompatibleTypes(err))

	var ge *GraphError
	require.ErrorAs(t, err, &ge)
	require.Len(t, ge.Problems, 1)
	assert.Equal(t, ErrIncompatibleTypes, ge.Problems[0].Code)
}

func TestBuildGraph_CompatStrictAcceptsValidTrain(t *testing.T) {
	gears := []ir.GearSpec{
		{Index: 0, Type: ir.Bevel, Teeth: 20, Radius: 10, Connections: []int{1}},
		{Index: 1, Type: ir.SpiralBevel, Teeth: 30, Radius: 15},
	}

	_, warnings, err := BuildGraph(gears, BuildOptions{Compat: CompatStrict})
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestBuildGraph_CycleBeforeCompat(t *testing.T) {
	gears := []ir.GearSpec{
		{Index: 0, Type: ir.Rack, Teeth: 20, Radius: 10, Connections: []int{1}},
		{Index: 1, Type: ir.Spur, Teeth: 20, Radius: 10, Connections: []int{0}},
	}

	_, _, err := BuildGraph(gears, BuildOptions{Compat: CompatStrict})
	require.Error(t, err)
	assert.True(t, IsCycleError(err))
}

func TestBuildTrain_RootInputs(t *testing.T) {
	train := ir.TrainSpec{
		RootRPM:    math.Inf(1),
		RootTorque: 10,
		Gears:      []ir.GearSpec{spur(0, 20)},
	}

	_, _, err := BuildTrain(train, BuildOptions{})
	require.Error(t, err)
	assert.True(t, IsInvalidValue(err))

	var ge *GraphError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, ErrInvalidRootRPM, ge.Problems[0].Code)
}

func TestBuildTrain_Valid(t *testing.T) {
	train := ir.TrainSpec{
		RootRPM:    1000,
		RootTorque: 10,
		Gears:      []ir.GearSpec{spur(0, 20, 1), spur(1, 40)},
	}

	g, _, err := BuildTrain(train, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
}
