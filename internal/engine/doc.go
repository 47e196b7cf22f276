// Package engine propagates speed and torque through a gear train.
//
// A calculation runs in three stages:
//  1. units.Normalize converts radius and torque to millimetres and
//     newton-metres
//  2. compiler.BuildTrain validates the train and returns an acyclic graph
//  3. Propagate walks the graph depth-first from gear 0
//
// Propagate is a pure function. It visits successors in declaration order
// and finalises a gear the first time it is reached, so on a reconvergent
// train (two paths into the same gear) the earlier path wins. The walk uses
// an explicit stack and does not recurse, so train depth is bounded only by
// memory.
//
// Engine wraps the stages, stamps each result with a run ID and a train
// hash, and logs through log/slog. Every calculation builds its own state;
// an Engine may be shared between goroutines and CalculateBatch runs
// independent trains on a bounded worker pool.
package engine
