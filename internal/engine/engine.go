package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/gearmatrix/internal/compiler"
	"github.com/roach88/gearmatrix/internal/ir"
	"github.com/roach88/gearmatrix/internal/units"
)

// Engine runs gear train calculations.
//
// Thread-safety: an Engine holds no per-calculation state and is safe for
// concurrent use as long as its RunIDGenerator is.
type Engine struct {
	logger *slog.Logger
	runIDs RunIDGenerator
	compat compiler.CompatMode
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRunIDGenerator sets the run ID source. Default: UUIDv7Generator.
// Use NewFixedGenerator in tests for stable output.
func WithRunIDGenerator(gen RunIDGenerator) Option {
	return func(e *Engine) {
		e.runIDs = gen
	}
}

// WithCompatMode sets how type-compatibility violations are handled.
// Default: compiler.CompatWarn.
func WithCompatMode(mode compiler.CompatMode) Option {
	return func(e *Engine) {
		e.compat = mode
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.Default(),
		runIDs: UUIDv7Generator{},
		compat: compiler.CompatWarn,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calculate validates a train and propagates its root drive.
//
// The train is normalised to millimetres and newton-metres first, so every
// radius and torque in the result is in base units. On error no partial
// result is returned; the error is a *CalculationError wrapping a
// *compiler.GraphError for invalid trains.
func (e *Engine) Calculate(train ir.TrainSpec) (*ir.Result, error) {
	log := e.logger.With("train", train.Name)

	normalized, err := units.Normalize(train)
	if err != nil {
		return nil, e.fail(log, train.Name, newUnitError(err))
	}

	graph, warnings, err := compiler.BuildTrain(normalized, compiler.BuildOptions{Compat: e.compat})
	if err != nil {
		return nil, e.fail(log, train.Name, err)
	}
	for _, w := range warnings {
		log.Warn("incompatible gear types", "from", w.From, "to", w.To, "message", w.Message)
	}

	hash, err := ir.TrainHash(normalized)
	if err != nil {
		return nil, e.fail(log, train.Name, fmt.Errorf("hashing train: %w", err))
	}

	states, events := Propagate(graph, normalized.Gears, normalized.RootRPM, normalized.RootTorque)
	if err := checkFinite(events); err != nil {
		return nil, e.fail(log, train.Name, err)
	}
	final, _ := FinalGear(states)

	result := &ir.Result{
		RunID:     e.runIDs.Generate(),
		Name:      train.Name,
		TrainHash: hash,
		Events:    events,
		States:    states,
		Final:     final,
		Warnings:  warnings,
	}

	log.Debug("train calculated",
		"run_id", result.RunID,
		"gears", graph.Len(),
		"edges", len(events),
		"final_gear", final.Index,
	)
	return result, nil
}

func (e *Engine) fail(log *slog.Logger, name string, err error) error {
	log.Debug("train rejected", "error", err)
	return &CalculationError{Train: name, Err: err}
}

// BatchResult is the outcome of one train in a batch. Exactly one of
// Result and Err is set.
type BatchResult struct {
	Index  int
	Name   string
	Result *ir.Result
	Err    error
}

// CalculateBatch calculates independent trains on up to workers goroutines.
// workers <= 0 means runtime.GOMAXPROCS(0).
//
// Results are returned in input order. A failing train does not stop the
// others. Once ctx is done, trains not yet started get ctx.Err().
func (e *Engine) CalculateBatch(ctx context.Context, trains []ir.TrainSpec, workers int) []BatchResult {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]BatchResult, len(trains))
	for i, t := range trains {
		results[i] = BatchResult{Index: i, Name: t.Name}
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i, train := range trains {
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Result, results[i].Err = e.Calculate(train)
			return nil
		})
	}
	_ = g.Wait()

	e.logger.Debug("batch finished", "trains", len(trains), "workers", workers)
	return results
}
