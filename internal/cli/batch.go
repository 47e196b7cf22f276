package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gearmatrix/internal/compiler"
	"github.com/roach88/gearmatrix/internal/engine"
	"github.com/roach88/gearmatrix/internal/ir"
	"github.com/roach88/gearmatrix/internal/units"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Workers int
	Compat  string
}

// BatchEntry is the outcome of one train in a batch.
type BatchEntry struct {
	File       string        `json:"file"`
	Train      string        `json:"train"`
	Pass       bool          `json:"pass"`
	RunID      string        `json:"run_id,omitempty"`
	Final      *ir.FinalGear `json:"final,omitempty"` // torque in TorqueUnit
	TorqueUnit string        `json:"torque_unit,omitempty"`
	Code       string        `json:"code,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// BatchSummary holds the overall batch result.
type BatchSummary struct {
	Trains []BatchEntry `json:"trains"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Total  int          `json:"total"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <path>...",
		Short: "Calculate many trains concurrently",
		Long: `Calculate every train found in the given files and directories.

Trains are independent and run on a bounded pool of workers. A failing
train does not stop the others. Output lists the final gear of every
train in input order.

Exit codes:
  0 - Every train calculated
  1 - One or more trains failed
  2 - Command error (invalid paths, unreadable files, etc.)

Examples:
  gearmatrix batch ./trains
  gearmatrix batch ./trains --workers 4 --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "concurrent calculations (default from config, 0 = one per CPU)")
	cmd.Flags().StringVar(&opts.Compat, "compat", "", "compatibility mode (off|warn|strict, default from config)")

	return cmd
}

func runBatch(opts *BatchOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	cfg := opts.config()

	mode, err := resolveCompat(opts.Compat, cfg.CompatMode())
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}
	workers := cfg.Workers
	if cmd.Flags().Changed("workers") {
		workers = opts.Workers
	}
	if workers < 0 {
		return outputCommandError(formatter, ErrCodeGeneric, "--workers must not be negative")
	}

	loaded, err := LoadTrains(paths)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return outputCommandError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}
	formatter.VerboseLog("Loaded %d train(s)", len(loaded))

	trains := make([]ir.TrainSpec, len(loaded))
	for i, lt := range loaded {
		trains[i] = lt.Train
	}

	eng := engine.New(
		engine.WithLogger(opts.logger(cmd.ErrOrStderr())),
		engine.WithCompatMode(mode),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results := eng.CalculateBatch(ctx, trains, workers)

	summary := BatchSummary{
		Trains: make([]BatchEntry, len(results)),
		Total:  len(results),
	}
	for i, r := range results {
		entry := BatchEntry{File: loaded[i].File, Train: r.Name}
		if r.Err != nil {
			entry.Error = r.Err.Error()
			entry.Code = string(compiler.CodeOf(r.Err))
			if !engine.IsInvalidTrain(r.Err) {
				// canceled before it ran
				entry.Code = ErrCodeGeneric
			}
			summary.Failed++
		} else {
			entry.Pass = true
			entry.RunID = r.Result.RunID
			entry.Final = displayFinal(r.Result.Final, loaded[i].Train.Units.Torque)
			entry.TorqueUnit = displayTorqueUnit(loaded[i].Train.Units.Torque)
			summary.Passed++
		}
		summary.Trains[i] = entry
	}

	if formatter.Format == "json" {
		return outputBatchJSON(formatter, summary)
	}
	return outputBatchText(formatter, summary)
}

// displayFinal converts the final gear torque from Nm into the train's unit.
func displayFinal(final ir.FinalGear, torqueUnit string) *ir.FinalGear {
	if v, err := units.FromBaseTorque(final.Torque, displayTorqueUnit(torqueUnit)); err == nil {
		final.Torque = v
	}
	return &final
}

func displayTorqueUnit(name string) string {
	if name == "" {
		return units.BaseTorque
	}
	canonical, err := units.CanonicalTorque(name)
	if err != nil {
		return units.BaseTorque
	}
	return canonical
}

// outputBatchJSON outputs the batch summary as JSON.
func outputBatchJSON(formatter *OutputFormatter, summary BatchSummary) error {
	response := CLIResponse{
		Status: "ok",
		Data:   summary,
	}
	if summary.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_BATCH_FAILED",
			Message: fmt.Sprintf("%d train(s) failed", summary.Failed),
		}
	}

	if err := formatter.encode(response); err != nil {
		return err
	}

	if summary.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d train(s) failed", summary.Failed))
	}
	return nil
}

// outputBatchText outputs the batch summary as text.
func outputBatchText(formatter *OutputFormatter, summary BatchSummary) error {
	w := formatter.Writer

	for _, e := range summary.Trains {
		if e.Pass {
			fmt.Fprintf(w, "✓ %s: Final Gear %d, RPM %.2f, Torque %.2f %s\n",
				e.Train, e.Final.Index, e.Final.Speed, e.Final.Torque, e.TorqueUnit)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", e.Train)
		fmt.Fprintf(w, "  %s\n", e.Error)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Batch Summary: %d passed, %d failed, %d total\n", summary.Passed, summary.Failed, summary.Total)

	if summary.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d train(s) failed", summary.Failed))
	}
	return nil
}
