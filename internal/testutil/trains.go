package testutil

import (
	"os"
	"path/filepath"

	"github.com/roach88/gearmatrix/internal/ir"
)

// ReducerTrain returns a two-gear reduction: a 20-tooth gear of radius
// 50 mm driving a 40-tooth gear of radius 100 mm at 1000 rpm and 10 Nm.
func ReducerTrain() ir.TrainSpec {
	return ir.TrainSpec{
		Name:       "reducer",
		Units:      ir.Units{Length: "mm", Torque: "Nm"},
		RootRPM:    1000,
		RootTorque: 10,
		Gears: []ir.GearSpec{
			{Index: 0, Type: ir.Spur, Teeth: 20, Radius: 50, Connections: []int{1}},
			{Index: 1, Type: ir.Spur, Teeth: 40, Radius: 100},
		},
	}
}

// ReducerYAML is ReducerTrain as a YAML train document.
const ReducerYAML = `name: reducer
units: {length: mm, torque: Nm}
input: {rpm: 1000, torque: 10}
gears:
  - {type: Spur, teeth: 20, radius: 50, connects: [1]}
  - {type: Spur, teeth: 40, radius: 100}
`

// CycleYAML is a two-gear train whose gears drive each other.
const CycleYAML = `name: cycle
input: {rpm: 1000, torque: 10}
gears:
  - {teeth: 20, radius: 50, connects: [1]}
  - {teeth: 40, radius: 100, connects: [0]}
`

// TB is the part of testing.TB that WriteFile needs.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
