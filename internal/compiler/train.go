package compiler

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/gearmatrix/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// CompileTrains compiles every train declared under the top-level "train"
// field of a CUE value, in declaration order:
//
//	train: reducer: {
//		units: length: "mm"
//		input: {rpm: 1000, torque: 10}
//		gears: [
//			{type: "Spur", teeth: 20, radius: 50, connects: [1]},
//			{type: "Spur", teeth: 40, radius: 100},
//		]
//	}
func CompileTrains(v cue.Value) ([]ir.TrainSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	trainsVal := v.LookupPath(cue.ParsePath("train"))
	if !trainsVal.Exists() {
		return nil, &CompileError{
			Field:   "train",
			Message: "no train declared (expected a top-level \"train\" field)",
			Pos:     v.Pos(),
		}
	}

	iter, err := trainsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var trains []ir.TrainSpec
	for iter.Next() {
		spec, err := compileTrain(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		trains = append(trains, *spec)
	}
	if len(trains) == 0 {
		return nil, &CompileError{
			Field:   "train",
			Message: "no train declared (\"train\" has no fields)",
			Pos:     trainsVal.Pos(),
		}
	}
	return trains, nil
}

// compileTrain checks one train struct against the schema and extracts it.
func compileTrain(name string, v cue.Value) (*ir.TrainSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	// Check the shape against the embedded schema. The schema must be
	// compiled in the value's own context to be unifiable with it.
	schema := v.Context().CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling train schema: %w", err)
	}
	checked := schema.LookupPath(cue.ParsePath("#Train")).Unify(v)
	if err := checked.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.TrainSpec{Name: name}

	if s, ok, err := optionalString(checked, "units.length"); err != nil {
		return nil, err
	} else if ok {
		spec.Units.Length = s
	}
	if s, ok, err := optionalString(checked, "units.torque"); err != nil {
		return nil, err
	} else if ok {
		spec.Units.Torque = s
	}

	rpm, err := checked.LookupPath(cue.ParsePath("input.rpm")).Float64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	spec.RootRPM = rpm

	torque, err := checked.LookupPath(cue.ParsePath("input.torque")).Float64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	spec.RootTorque = torque

	gears, err := parseGears(checked.LookupPath(cue.ParsePath("gears")))
	if err != nil {
		return nil, err
	}
	spec.Gears = gears

	return spec, nil
}

// parseGears extracts gears in list order; the list position is the index.
func parseGears(v cue.Value) ([]ir.GearSpec, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var gears []ir.GearSpec
	for i := 0; iter.Next(); i++ {
		gv := iter.Value()

		typeVal, _ := gv.LookupPath(cue.ParsePath("type")).Default()
		typeName, err := typeVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		gearType, err := ir.ParseGearType(typeName)
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("gears[%d].type", i),
				Message: err.Error(),
				Pos:     typeVal.Pos(),
			}
		}

		teeth, err := gv.LookupPath(cue.ParsePath("teeth")).Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}

		radius, err := gv.LookupPath(cue.ParsePath("radius")).Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}

		gear := ir.GearSpec{
			Index:  i,
			Type:   gearType,
			Teeth:  int(teeth),
			Radius: radius,
		}

		connVal := gv.LookupPath(cue.ParsePath("connects"))
		if connVal.Exists() {
			connIter, err := connVal.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for connIter.Next() {
				target, err := connIter.Value().Int64()
				if err != nil {
					return nil, formatCUEError(err)
				}
				gear.Connections = append(gear.Connections, int(target))
			}
		}

		gears = append(gears, gear)
	}

	return gears, nil
}

func optionalString(v cue.Value, path string) (string, bool, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() || !f.IsConcrete() {
		return "", false, nil
	}
	s, err := f.String()
	if err != nil {
		return "", false, formatCUEError(err)
	}
	return s, true, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
