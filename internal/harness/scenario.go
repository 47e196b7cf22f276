package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gearmatrix/internal/compiler"
)

// Scenario defines a gear train test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// TrainFile is a train file (.cue, .yaml, .yml, .json, .hcl).
	// Exactly one of TrainFile and Train must be set.
	TrainFile string `yaml:"train_file,omitempty"`

	// TrainName selects a train when TrainFile declares several.
	// Empty selects the first.
	TrainName string `yaml:"train_name,omitempty"`

	// Train is an inline train document.
	Train *compiler.TrainDocument `yaml:"train,omitempty"`

	// Compat is the compatibility mode: off, warn (default) or strict.
	Compat string `yaml:"compat,omitempty"`

	// RunID is a fixed run ID for deterministic output.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Assertions validate the calculation.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of a calculation.
//
// Optional numeric fields are only checked when set. Numbers match within
// Tolerance (default DefaultTolerance).
type Assertion struct {
	// Type selects the assertion:
	// - "edge": the traversal contains edge from → to with the given values
	// - "gear_state": gear has the given values; reached: false asserts nil speed
	// - "final_gear": the final gear has the given index and values
	// - "traversal_order": the traversal visited exactly these edges in order
	// - "warning_count": exactly count compatibility warnings
	// - "error": the calculation failed with code
	Type string `yaml:"type"`

	Gear *int `yaml:"gear,omitempty"`
	From *int `yaml:"from,omitempty"`
	To   *int `yaml:"to,omitempty"`

	Speed       *float64 `yaml:"speed,omitempty"`
	Torque      *float64 `yaml:"torque,omitempty"`
	Efficiency  *float64 `yaml:"efficiency,omitempty"`
	GearRatio   *float64 `yaml:"gear_ratio,omitempty"`
	RadiusRatio *float64 `yaml:"radius_ratio,omitempty"`
	Module      *float64 `yaml:"module,omitempty"`
	Reached     *bool    `yaml:"reached,omitempty"`

	// Edges is the expected traversal (used by traversal_order).
	Edges [][2]int `yaml:"edges,omitempty"`

	// Count is the expected number of warnings (used by warning_count).
	Count *int `yaml:"count,omitempty"`

	// Code is the expected error code (used by error), e.g. CYCLE_DETECTED.
	Code string `yaml:"code,omitempty"`

	// Tolerance overrides DefaultTolerance for this assertion.
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

// Assertion type constants.
const (
	AssertEdge           = "edge"
	AssertGearState      = "gear_state"
	AssertFinalGear      = "final_gear"
	AssertTraversalOrder = "traversal_order"
	AssertWarningCount   = "warning_count"
	AssertError          = "error"
)

// DefaultTolerance is the absolute tolerance for numeric assertions.
const DefaultTolerance = 1e-6

// LoadScenario reads and parses a scenario YAML file.
// A relative train_file is resolved against the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving a relative train_file against basePath.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the train path BEFORE validation
	if scenario.TrainFile != "" && !filepath.IsAbs(scenario.TrainFile) && basePath != "" {
		scenario.TrainFile = filepath.Join(basePath, scenario.TrainFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.TrainFile == "" && s.Train == nil:
		return fmt.Errorf("one of train_file or train is required")
	case s.TrainFile != "" && s.Train != nil:
		return fmt.Errorf("train_file and train are mutually exclusive")
	}

	if s.TrainFile != "" {
		if _, err := os.Stat(s.TrainFile); os.IsNotExist(err) {
			return fmt.Errorf("train file not found: %s", s.TrainFile)
		}
	}
	if s.TrainName != "" && s.TrainFile == "" {
		return fmt.Errorf("train_name requires train_file")
	}

	if _, err := compiler.ParseCompatMode(s.Compat); err != nil {
		return err
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validErrorCodes are the codes an error assertion may expect.
var validErrorCodes = map[string]bool{
	string(compiler.ErrCodeInvalidValue):      true,
	string(compiler.ErrCodeInvalidReference):  true,
	string(compiler.ErrCodeCycleDetected):     true,
	string(compiler.ErrCodeIncompatibleTypes): true,
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Tolerance < 0 {
		return fmt.Errorf("assertions[%d]: tolerance must be non-negative", index)
	}

	switch a.Type {
	case AssertEdge:
		if a.From == nil || a.To == nil {
			return fmt.Errorf("assertions[%d]: from and to are required for edge", index)
		}
	case AssertGearState:
		if a.Gear == nil {
			return fmt.Errorf("assertions[%d]: gear is required for gear_state", index)
		}
	case AssertFinalGear:
		if a.Gear == nil {
			return fmt.Errorf("assertions[%d]: gear is required for final_gear", index)
		}
	case AssertTraversalOrder:
		if a.Edges == nil {
			return fmt.Errorf("assertions[%d]: edges list is required for traversal_order", index)
		}
	case AssertWarningCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for warning_count", index)
		}
	case AssertError:
		if !validErrorCodes[a.Code] {
			return fmt.Errorf("assertions[%d]: unknown error code %q", index, a.Code)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
