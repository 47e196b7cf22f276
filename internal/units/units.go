// Package units converts user-facing lengths and torques into the base
// units the calculation core works in (millimetres and newton-metres).
//
// The conversion tables are fixed; unit names match case-insensitively.
package units

import (
	"fmt"
	"math"
	"slices"

	"golang.org/x/text/cases"

	"github.com/roach88/gearmatrix/internal/ir"
)

// Base units every normalised train is expressed in.
const (
	BaseLength = "mm"
	BaseTorque = "Nm"
)

type unit struct {
	name   string
	factor float64
}

// lengthUnits scale to millimetres.
var lengthUnits = []unit{
	{"mm", 1},
	{"cm", 10},
	{"m", 1000},
	{"inch", 25.4},
	{"ft", 304.8},
}

// torqueUnits scale to newton-metres.
var torqueUnits = []unit{
	{"Nm", 1},
	{"kgm", 9.80665},
	{"lbf-ft", 1.35582},
	{"lbf-in", 0.1129848},
}

func lookup(table []unit, kind, name string) (unit, error) {
	fold := cases.Fold() // a Caser is stateful; not shared across goroutines
	want := fold.String(name)
	for _, u := range table {
		if fold.String(u.name) == want {
			return u, nil
		}
	}
	return unit{}, fmt.Errorf("unknown %s unit %q: must be one of %v", kind, name, names(table))
}

// LengthUnits returns the supported length unit names in display order.
func LengthUnits() []string {
	return names(lengthUnits)
}

// TorqueUnits returns the supported torque unit names in display order.
func TorqueUnits() []string {
	return names(torqueUnits)
}

func names(table []unit) []string {
	out := make([]string, len(table))
	for i, u := range table {
		out[i] = u.name
	}
	return slices.Clip(out)
}

// LengthFactor returns the millimetre factor for a length unit.
func LengthFactor(name string) (float64, error) {
	u, err := lookup(lengthUnits, "length", name)
	return u.factor, err
}

// TorqueFactor returns the newton-metre factor for a torque unit.
func TorqueFactor(name string) (float64, error) {
	u, err := lookup(torqueUnits, "torque", name)
	return u.factor, err
}

// CanonicalLength returns the table spelling of a length unit name.
func CanonicalLength(name string) (string, error) {
	u, err := lookup(lengthUnits, "length", name)
	return u.name, err
}

// CanonicalTorque returns the table spelling of a torque unit name.
func CanonicalTorque(name string) (string, error) {
	u, err := lookup(torqueUnits, "torque", name)
	return u.name, err
}

// ToBaseLength converts a length in the named unit to millimetres.
func ToBaseLength(value float64, name string) (float64, error) {
	f, err := LengthFactor(name)
	if err != nil {
		return 0, err
	}
	return value * f, nil
}

// ToBaseTorque converts a torque in the named unit to newton-metres.
func ToBaseTorque(value float64, name string) (float64, error) {
	f, err := TorqueFactor(name)
	if err != nil {
		return 0, err
	}
	return value * f, nil
}

// FromBaseLength converts millimetres to the named unit.
func FromBaseLength(value float64, name string) (float64, error) {
	f, err := LengthFactor(name)
	if err != nil {
		return 0, err
	}
	return value / f, nil
}

// FromBaseTorque converts newton-metres to the named unit.
func FromBaseTorque(value float64, name string) (float64, error) {
	f, err := TorqueFactor(name)
	if err != nil {
		return 0, err
	}
	return value / f, nil
}

// Normalize returns a copy of t with every radius in millimetres and the
// root torque in newton-metres. Empty unit names mean the base unit.
// The input is not modified.
func Normalize(t ir.TrainSpec) (ir.TrainSpec, error) {
	lengthName := t.Units.Length
	if lengthName == "" {
		lengthName = BaseLength
	}
	torqueName := t.Units.Torque
	if torqueName == "" {
		torqueName = BaseTorque
	}

	lf, err := LengthFactor(lengthName)
	if err != nil {
		return ir.TrainSpec{}, err
	}
	tf, err := TorqueFactor(torqueName)
	if err != nil {
		return ir.TrainSpec{}, err
	}
	if math.IsNaN(t.RootTorque) || math.IsInf(t.RootTorque, 0) {
		return ir.TrainSpec{}, fmt.Errorf("root torque must be finite, got %v", t.RootTorque)
	}

	out := t
	out.Units = ir.Units{Length: BaseLength, Torque: BaseTorque}
	out.RootTorque = t.RootTorque * tf
	out.Gears = make([]ir.GearSpec, len(t.Gears))
	for i, g := range t.Gears {
		g.Radius *= lf
		g.Connections = slices.Clone(g.Connections)
		out.Gears[i] = g
	}
	return out, nil
}
