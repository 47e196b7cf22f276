package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gearmatrix/internal/compiler"
	"github.com/roach88/gearmatrix/internal/ir"
	"github.com/roach88/gearmatrix/internal/units"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Compat string
}

// TrainProblem is one reason a train is invalid. Code is the error
// category (INVALID_VALUE, INVALID_REFERENCE, CYCLE_DETECTED,
// INCOMPATIBLE_TYPES); DetailCode is the E2xx validation code.
type TrainProblem struct {
	File       string `json:"file"`
	Train      string `json:"train"`
	Code       string `json:"code"`
	DetailCode string `json:"detail_code,omitempty"`
	Field      string `json:"field,omitempty"`
	Gear       int    `json:"gear"`
	Message    string `json:"message"`
}

// TrainWarning is a compatibility warning found during validation.
type TrainWarning struct {
	File    string `json:"file"`
	Train   string `json:"train"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool           `json:"valid"`
	Trains   int            `json:"trains"`
	Errors   []TrainProblem `json:"errors,omitempty"`
	Warnings []TrainWarning `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Validate train files without calculating",
		Long: `Validate gear trains without propagating speed and torque.

Each path is a train file or a directory searched recursively for train
files. Checks values, units, connection references, acyclicity and gear
type compatibility. Compatibility violations are warnings unless
--compat strict is set.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Compat, "compat", "", "compatibility mode (off|warn|strict, default from config)")

	return cmd
}

func runValidate(opts *ValidateOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	mode, err := resolveCompat(opts.Compat, opts.config().CompatMode())
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}

	loaded, err := LoadTrains(paths)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return outputCommandError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}

	result := ValidationResult{Trains: len(loaded)}
	for _, lt := range loaded {
		formatter.VerboseLog("Validating train %q from %s", lt.Train.Name, lt.File)
		problems, warnings := validateTrain(lt.Train, mode)
		for _, p := range problems {
			p.File, p.Train = lt.File, lt.Train.Name
			result.Errors = append(result.Errors, p)
		}
		for _, w := range warnings {
			result.Warnings = append(result.Warnings, TrainWarning{File: lt.File, Train: lt.Train.Name, Message: w.Message})
		}
	}
	result.Valid = len(result.Errors) == 0

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// validateTrain runs every check short of propagation.
func validateTrain(t ir.TrainSpec, mode compiler.CompatMode) ([]TrainProblem, []ir.CompatWarning) {
	normalized, err := units.Normalize(t)
	if err != nil {
		return []TrainProblem{{Code: string(compiler.ErrCodeInvalidValue), Field: "units", Gear: -1, Message: err.Error()}}, nil
	}

	_, warnings, err := compiler.BuildTrain(normalized, compiler.BuildOptions{Compat: mode})
	if err == nil {
		return nil, warnings
	}

	var graphErr *compiler.GraphError
	if !errors.As(err, &graphErr) {
		return []TrainProblem{{Code: ErrCodeGeneric, Gear: -1, Message: err.Error()}}, nil
	}
	if len(graphErr.Problems) == 0 {
		problem := TrainProblem{Code: string(graphErr.Code), Gear: graphErr.Gear, Message: graphErr.Message}
		if graphErr.Code == compiler.ErrCodeCycleDetected {
			problem.DetailCode = compiler.ErrCycle
		}
		return []TrainProblem{problem}, nil
	}

	problems := make([]TrainProblem, len(graphErr.Problems))
	for i, p := range graphErr.Problems {
		problems[i] = TrainProblem{
			Code:       string(compiler.Category(p.Code)),
			DetailCode: p.Code,
			Field:      p.Field,
			Gear:       p.Gear,
			Message:    p.Message,
		}
	}
	return problems, nil
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	writeWarnings(formatter, result.Warnings)
	fmt.Fprintf(formatter.Writer, "✓ All trains valid (%d)\n", result.Trains)
	return nil
}

// outputValidationErrors outputs validation problems.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	first := result.Errors[0]

	if formatter.Format == "json" {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    first.Code,
				Message: first.Message,
			},
		}); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, p := range result.Errors {
		fmt.Fprintf(formatter.Writer, "%s (%s)\n", p.Train, p.File)
		if p.Gear >= 0 {
			fmt.Fprintf(formatter.Writer, "  gear %d\n", p.Gear)
		}
		if p.DetailCode != "" {
			fmt.Fprintf(formatter.Writer, "  %s [%s]: %s\n\n", p.Code, p.DetailCode, p.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", p.Code, p.Message)
		}
	}
	writeWarnings(formatter, result.Warnings)

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}

func writeWarnings(formatter *OutputFormatter, warnings []TrainWarning) {
	for _, w := range warnings {
		fmt.Fprintf(formatter.Writer, "⚠ %s (%s): %s\n", w.Train, w.File, w.Message)
	}
}
