// Package solver implements the layer-by-layer construction engine
// (spec component C5): state enumeration, width-limited merging, long-arc
// skipping, primal pruning, and the pluggable mergers/comparators that
// enforce the width limit.
package solver

import (
	"log/slog"

	"github.com/ctjandra/ddopt-cut/bdd"
	"github.com/ctjandra/ddopt-cut/problem"
)

// Options configures a single construction run (spec.md §4.3).
type Options struct {
	// Width is the maximum number of nodes allowed per layer. 0 means
	// unlimited (no merger is invoked).
	Width int

	// LongArcs enables skipping a variable for states the problem
	// reports as irrelevant to it (spec.md §4.3 step 2).
	LongArcs bool

	// PrimalPruning enables dropping children whose completion bound
	// cannot beat PrimalBound (spec.md §4.3 step 5).
	PrimalPruning bool
	PrimalBound   float64

	// DeleteOldStates releases a node's State once its layer is complete
	// (spec.md §3 "Ownership").
	DeleteOldStates bool

	// Logger receives per-layer construction diagnostics. A nil Logger
	// disables logging.
	Logger *slog.Logger

	// Callback receives the engine's lifecycle hooks in addition to the
	// problem's own OnLayerEnd (spec.md §4.3 step 6, "solver_callback").
	Callback EngineCallback

	// DataFuncs registers the per-node auxiliary data passes evaluated on
	// every transition and merge (spec.md §3 "data"). Registration order
	// is evaluation order.
	DataFuncs []bdd.DataFunc
}

// EngineCallback mirrors the original's solver_callback collaborator
// (spec.md §9 "cb_layer_end problem/solver callback pair"). Build calls
// OnLayerEnd after every layer, so an implementation must provide it;
// Build does not call OnStateRemoved.
type EngineCallback interface {
	OnLayerEnd(variable int, frontierWidth int)
	OnStateRemoved(s problem.State)
}

func (o Options) log() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(discardWriter{}, nil))
	}
	return o.Logger
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
