package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/gearmatrix/internal/compiler"
	"github.com/roach88/gearmatrix/internal/engine"
	"github.com/roach88/gearmatrix/internal/ir"
	"github.com/roach88/gearmatrix/internal/report"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs on a fresh engine with a fixed run ID and a logger
// that discards output.
//
// Execution flow:
// 1. Load the train (file or inline document)
// 2. Calculate it
// 3. Render the text report of a successful calculation
// 4. Evaluate assertions
//
// A train that fails validation is not a Run error: the failure is
// recorded in the result for error assertions. Run returns an error only
// when the scenario itself cannot be executed.
func Run(scenario *Scenario) (*Result, error) {
	train, err := loadTrain(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load train: %w", err)
	}

	mode, err := compiler.ParseCompatMode(scenario.Compat)
	if err != nil {
		return nil, err
	}

	eng := engine.New(
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
		engine.WithRunIDGenerator(engine.NewFixedGenerator(scenario.RunID)),
		engine.WithCompatMode(mode),
	)

	result := NewResult()
	result.Train = train.Name

	calc, calcErr := eng.Calculate(train)
	if calcErr != nil {
		result.Error = calcErr.Error()
		result.ErrorCode = string(compiler.CodeOf(calcErr))
		if !expectsError(scenario.Assertions) {
			result.AddError(fmt.Sprintf("calculation failed: %v", calcErr))
		}
	} else {
		text, err := report.TextString(calc, report.Options{
			LengthUnit: train.Units.Length,
			TorqueUnit: train.Units.Torque,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to render report: %w", err)
		}
		result.Calculation = calc
		result.Report = text
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// loadTrain returns the scenario's train. Inline trains are named after the
// scenario unless they carry a name.
func loadTrain(s *Scenario) (ir.TrainSpec, error) {
	if s.Train != nil {
		return s.Train.Spec(s.Name)
	}

	trains, err := compiler.LoadTrainFile(s.TrainFile)
	if err != nil {
		return ir.TrainSpec{}, err
	}
	if len(trains) == 0 {
		return ir.TrainSpec{}, fmt.Errorf("no trains in %s", s.TrainFile)
	}
	if s.TrainName == "" {
		return trains[0], nil
	}
	for _, t := range trains {
		if t.Name == s.TrainName {
			return t, nil
		}
	}
	return ir.TrainSpec{}, fmt.Errorf("train %q not found in %s", s.TrainName, s.TrainFile)
}

func expectsError(assertions []Assertion) bool {
	for _, a := range assertions {
		if a.Type == AssertError {
			return true
		}
	}
	return false
}
