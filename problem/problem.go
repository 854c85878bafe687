// Package problem declares the abstract state/problem interfaces consumed
// by the construction engine (spec component C6), and the concrete
// independent-set and binary-program specializations live in its
// subpackages problem/indepset and problem/bp.
package problem

import "github.com/ctjandra/ddopt-cut/bdd"

// State is a problem-specific object carried by every BDD node. Hot paths
// (Transition, Equals, Less) are called Theta(nodes*variables) times by
// the construction engine, per spec.md §9's monomorphization guidance;
// concrete states should avoid unnecessary allocation on these paths.
type State interface {
	// Transition computes the state reached by deciding variable v to
	// val. ok=false means infeasible: the engine drops the in-arc.
	Transition(p Problem, v int, val bdd.Val) (next State, ok bool)

	// Merge returns the relaxation of this state with other (spec.md
	// §4.3's "node-level merge" calls this unless skipStateMerge).
	Merge(p Problem, other State) State

	// Equals reports exact equality, used for layer dedup.
	Equals(other State) bool

	// Less gives a total order used for hashing/dedup/sorting; it need
	// not be semantically meaningful beyond being a stable tie-breaker.
	Less(other State) bool

	// String renders the state for diagnostics.
	String() string
}

// Ordering selects the next variable to branch the construction engine on
// (spec.md §4.3 step 1). SelectNextVar must never return a variable
// already assigned to an earlier layer; the engine treats that as a
// caller-bug panic.
type Ordering interface {
	SelectNextVar(layer int) int
}

// Merger enforces the width limit on a layer's frontier (spec.md §4.3
// "Width control"). It returns the surviving node set (len <= width),
// having already performed whatever bdd-level node merges were needed to
// reach it. Implementations live in package solver, parametrized by a
// NodeComparator.
type Merger interface {
	MergeLayer(p Problem, layer int, nodes []*bdd.Node, width int) []*bdd.Node
}

// Completion supplies an optional dual bound used for primal pruning
// (spec.md §4.3 step 5). A Problem with no useful bound can implement
// DualBound to always return +Inf (for maximization).
type Completion interface {
	DualBound(inst any, newState State, fromNode *bdd.Node) float64
}

// Problem bundles an Instance with the capabilities the construction
// engine needs: ordering, merger, optional completion bound, and the
// callbacks of spec.md §4.3/§4.5.
type Problem interface {
	// Instance returns the opaque problem instance (graph, rows, ...)
	// that States reference when transitioning.
	Instance() any

	// NumVars is the number of 0/1 decision variables.
	NumVars() int

	// CreateInitialState returns the root's state.
	CreateInitialState() State

	Ordering() Ordering
	Merger() Merger

	// Completion may return nil if no useful dual bound is available.
	Completion() Completion

	// ExpectSingleTerminal: if true and more than one terminal-layer
	// node survives construction, that is a fatal error (spec.md §4.3).
	ExpectSingleTerminal() bool

	// SkipVarForLongArc reports whether variable v can be skipped for
	// state s when long arcs are enabled (spec.md §4.3 step 2).
	SkipVarForLongArc(v int, s State) bool

	// OnLayerEnd is the problem-global bookkeeping hook fired after each
	// layer finishes branching (spec.md §4.3 step 6).
	OnLayerEnd(v int)

	// Weight is the objective coefficient of variable v (contributed to
	// LongestPath when v is set to 1).
	Weight(v int) float64

	// Maximize reports whether the construction engine should maximize
	// (vs. minimize) LongestPath.
	Maximize() bool
}
