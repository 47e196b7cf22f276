package cli

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gearmatrix/internal/compiler"
	"github.com/roach88/gearmatrix/internal/engine"
	"github.com/roach88/gearmatrix/internal/ir"
	"github.com/roach88/gearmatrix/internal/report"
)

// CalcOptions holds flags for the calc command.
type CalcOptions struct {
	*RootOptions
	Gears      []string // form rows TYPE:TEETH:RADIUS[:CONNECTIONS]
	RPM        string
	Torque     string
	LengthUnit string
	TorqueUnit string
	Compat     string
	Train      string // selects one train from a file
}

// CalcOutput is the JSON payload of one calculation.
type CalcOutput struct {
	File   string          `json:"file,omitempty"`
	Result *ir.Result      `json:"result"`
	Chart  []report.Series `json:"chart"`
}

// NewCalcCommand creates the calc command.
func NewCalcCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CalcOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "calc [train-file]",
		Short: "Calculate a gear train",
		Long: `Calculate speed and torque through a gear train.

The train comes from a file (.cue, .yaml, .yml, .json, .hcl) or from
--gear rows. Each row is TYPE:TEETH:RADIUS[:CONNECTIONS], where
CONNECTIONS is a comma-separated list of the gears this gear drives.
Gear 0 is the root and receives --rpm and --torque.

Exit codes:
  0 - Calculation succeeded
  1 - Train is invalid (bad values, dangling reference, cycle, strict incompatibility)
  2 - Command error (unreadable file, bad flags, etc.)

Examples:
  gearmatrix calc trains/reducer.cue
  gearmatrix calc --gear Spur:20:50:1 --gear Spur:40:100 --rpm 1000 --torque 10
  gearmatrix calc --gear Worm:1:8:1 --gear Helical:30:48 --rpm 1450 --torque 3 --compat strict
  gearmatrix calc trains/reducer.cue --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(opts, args, cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Gears, "gear", "g", nil, "gear row TYPE:TEETH:RADIUS[:CONNECTIONS] (repeatable)")
	cmd.Flags().StringVar(&opts.RPM, "rpm", "", "root gear speed in RPM (form input)")
	cmd.Flags().StringVar(&opts.Torque, "torque", "", "root gear torque (form input)")
	cmd.Flags().StringVar(&opts.LengthUnit, "length-unit", "", "radius unit for form input (default from config)")
	cmd.Flags().StringVar(&opts.TorqueUnit, "torque-unit", "", "torque unit for form input (default from config)")
	cmd.Flags().StringVar(&opts.Compat, "compat", "", "compatibility mode (off|warn|strict, default from config)")
	cmd.Flags().StringVar(&opts.Train, "train", "", "calculate only the named train from the file")

	return cmd
}

func runCalc(opts *CalcOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	cfg := opts.config()

	mode, err := resolveCompat(opts.Compat, cfg.CompatMode())
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}

	trains, err := calcInputs(opts, args)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return outputCommandError(formatter, loadErr.Code, loadErr.Message)
		}
		var graphErr *compiler.GraphError
		if errors.As(err, &graphErr) {
			_ = formatter.Error(string(graphErr.Code), graphErr.Message, nil)
			return WrapExitError(ExitFailure, "invalid gear input", err)
		}
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}

	eng := engine.New(
		engine.WithLogger(opts.logger(cmd.ErrOrStderr())),
		engine.WithCompatMode(mode),
	)

	// Every train is calculated before anything is written, so a failing
	// train never leaves earlier reports on stdout.
	results := make([]*ir.Result, len(trains))
	for i, lt := range trains {
		formatter.VerboseLog("Calculating train %q (%d gears)", lt.Train.Name, len(lt.Train.Gears))

		result, err := eng.Calculate(lt.Train)
		if err != nil {
			_ = formatter.TrainError(err)
			return WrapExitError(ExitFailure, "calculation failed", err)
		}
		results[i] = result
	}

	if formatter.Format == "json" {
		outputs := make([]CalcOutput, len(trains))
		for i, lt := range trains {
			chart, err := report.Chart(results[i], reportOptions(lt.Train))
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to build chart", err)
			}
			outputs[i] = CalcOutput{File: lt.File, Result: results[i], Chart: chart}
		}
		if len(outputs) == 1 {
			return formatter.encode(CLIResponse{Status: "ok", Data: outputs[0], RunID: outputs[0].Result.RunID})
		}
		return formatter.Success(outputs)
	}

	var buf bytes.Buffer
	for i, lt := range trains {
		if len(trains) > 1 {
			fmt.Fprintf(&buf, "═══ %s ═══\n", lt.Train.Name)
		}
		if err := report.Text(&buf, results[i], reportOptions(lt.Train)); err != nil {
			return WrapExitError(ExitCommandError, "failed to render report", err)
		}
		if len(trains) > 1 {
			fmt.Fprintln(&buf)
		}
	}
	_, err = buf.WriteTo(formatter.Writer)
	return err
}

func reportOptions(t ir.TrainSpec) report.Options {
	return report.Options{LengthUnit: t.Units.Length, TorqueUnit: t.Units.Torque}
}

// calcInputs returns the trains to calculate: from the train file if one
// is given, otherwise from the --gear rows.
func calcInputs(opts *CalcOptions, args []string) ([]LoadedTrain, error) {
	if len(args) == 1 {
		if len(opts.Gears) > 0 {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: "pass either a train file or --gear rows, not both"}
		}
		loaded, err := LoadTrains(args)
		if err != nil {
			return nil, err
		}
		return selectTrain(loaded, opts.Train)
	}

	if len(opts.Gears) == 0 {
		return nil, &LoadError{Code: ErrCodeNoTrain, Message: "no train given: pass a train file or --gear rows"}
	}
	if opts.RPM == "" || opts.Torque == "" {
		return nil, &LoadError{Code: ErrCodeNoTrain, Message: "--rpm and --torque are required with --gear"}
	}

	train, err := compiler.ParseForm(opts.Gears, opts.RPM, opts.Torque)
	if err != nil {
		return nil, err
	}

	cfg := opts.config()
	train.Name = "form"
	train.Units = ir.Units{Length: cfg.Units.Length, Torque: cfg.Units.Torque}
	if opts.LengthUnit != "" {
		train.Units.Length = opts.LengthUnit
	}
	if opts.TorqueUnit != "" {
		train.Units.Torque = opts.TorqueUnit
	}

	return []LoadedTrain{{Train: train}}, nil
}

// selectTrain keeps only the named train, or every train when name is empty.
func selectTrain(loaded []LoadedTrain, name string) ([]LoadedTrain, error) {
	if name == "" {
		return loaded, nil
	}
	for _, lt := range loaded {
		if lt.Train.Name == name {
			return []LoadedTrain{lt}, nil
		}
	}
	return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("train %q not found", name)}
}

// resolveCompat returns the flag's compatibility mode, or fallback when the
// flag is empty.
func resolveCompat(flag string, fallback compiler.CompatMode) (compiler.CompatMode, error) {
	if flag == "" {
		return fallback, nil
	}
	return compiler.ParseCompatMode(flag)
}

// outputCommandError reports an error that prevented the command from
// running (exit code 2).
func outputCommandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

