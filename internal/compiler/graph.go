package compiler

import (
	"fmt"
	"slices"

	"github.com/roach88/gearmatrix/internal/ir"
)

// BuildOptions configures BuildGraph.
type BuildOptions struct {
	// Compat selects how type-compatibility violations are handled.
	// The zero value behaves as CompatWarn.
	Compat CompatMode
}

// BuildGraph turns gear specs into a validated, acyclic graph.
//
// Checks run in a fixed order and the first failing stage wins:
//  1. Values and references (all problems collected) → InvalidValue or
//     InvalidReference
//  2. Cycles over every gear, reachable from the root or not → CycleDetected
//  3. Type compatibility → warnings, or IncompatibleTypes in strict mode
//
// Successor lists keep declaration order; a repeated connection is kept
// once, at its first position. BuildGraph does not modify gears.
func BuildGraph(gears []ir.GearSpec, opts BuildOptions) (*ir.Graph, []ir.CompatWarning, error) {
	if problems := validateGears(gears); len(problems) > 0 {
		return nil, nil, newValidationFailure(problems)
	}

	g := &ir.Graph{Successors: make([][]int, len(gears))}
	for i, gear := range gears {
		succ := make([]int, 0, len(gear.Connections))
		for _, target := range gear.Connections {
			if !slices.Contains(succ, target) {
				succ = append(succ, target)
			}
		}
		g.Successors[i] = succ
	}

	if path := findCycle(g.Successors); path != nil {
		return nil, nil, NewCycleError(path)
	}

	mode := opts.Compat
	if mode == "" {
		mode = CompatWarn
	}
	if mode == CompatOff {
		return g, nil, nil
	}

	warnings := CheckCompatibility(gears, g)
	if mode == CompatStrict && len(warnings) > 0 {
		first := warnings[0]
		return nil, nil, &GraphError{
			Code:     ErrCodeIncompatibleTypes,
			Message:  first.Message,
			Gear:     first.From,
			Problems: compatProblems(warnings),
		}
	}

	return g, warnings, nil
}

// BuildTrain checks a whole train, root inputs included, and builds its
// graph. Root problems are reported alongside gear problems.
func BuildTrain(t ir.TrainSpec, opts BuildOptions) (*ir.Graph, []ir.CompatWarning, error) {
	if problems := Validate(t); len(problems) > 0 {
		return nil, nil, newValidationFailure(problems)
	}
	return BuildGraph(t.Gears, opts)
}

func compatProblems(warnings []ir.CompatWarning) []ValidationError {
	problems := make([]ValidationError, len(warnings))
	for i, w := range warnings {
		problems[i] = ValidationError{
			Field:   fmt.Sprintf("gears[%d].connections", w.From),
			Message: w.Message,
			Code:    ErrIncompatibleTypes,
			Gear:    w.From,
		}
	}
	return problems
}
