package solver_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctjandra/ddopt-cut/bdd"
	"github.com/ctjandra/ddopt-cut/problem"
	"github.com/ctjandra/ddopt-cut/solver"
)

// subsetState is a tiny test-local problem.State: the set of variables
// fixed to 1 so far, represented as a bitmask. Transition always succeeds
// (no feasibility constraint), so the resulting BDD is the full binary
// tree modulo whatever the merger collapses.
type subsetState uint64

func (s subsetState) Transition(p problem.Problem, v int, val bdd.Val) (problem.State, bool) {
	if val == bdd.One {
		return s | (1 << uint(v)), true
	}
	return s, true
}

func (s subsetState) Merge(p problem.Problem, other problem.State) problem.State {
	o := other.(subsetState)
	if o > s {
		return o
	}
	return s
}

func (s subsetState) Equals(other problem.State) bool { return s == other.(subsetState) }
func (s subsetState) Less(other problem.State) bool    { return s < other.(subsetState) }
func (s subsetState) String() string                   { return fmt.Sprintf("%d", uint64(s)) }

// inputOrdering assigns variable i to layer i, in input order.
type inputOrdering struct{}

func (inputOrdering) SelectNextVar(layer int) int { return layer }

// noopMerger never merges (used when Width is 0 / unlimited).
type noopMerger struct{}

func (noopMerger) MergeLayer(p problem.Problem, layer int, nodes []*bdd.Node, width int) []*bdd.Node {
	return nodes
}

// subsetProblem is a minimal problem.Problem: maximize sum of weights of
// variables set to 1, every assignment feasible.
type subsetProblem struct {
	n          int
	weights    []float64
	merger     problem.Merger
	completion problem.Completion
}

func (p *subsetProblem) Instance() any               { return p }
func (p *subsetProblem) NumVars() int                { return p.n }
func (p *subsetProblem) CreateInitialState() problem.State { return subsetState(0) }
func (p *subsetProblem) Ordering() problem.Ordering  { return inputOrdering{} }
func (p *subsetProblem) Merger() problem.Merger {
	if p.merger == nil {
		return noopMerger{}
	}
	return p.merger
}
func (p *subsetProblem) Completion() problem.Completion { return p.completion }
func (p *subsetProblem) ExpectSingleTerminal() bool  { return true }
func (p *subsetProblem) SkipVarForLongArc(v int, s problem.State) bool { return false }
func (p *subsetProblem) OnLayerEnd(v int)            {}
func (p *subsetProblem) Weight(v int) float64        { return p.weights[v] }
func (p *subsetProblem) Maximize() bool              { return true }

// subsetCompletion bounds the best any completion from fromNode's layer
// onward could add: the sum of every not-yet-decided variable's weight,
// since subsetState never reports infeasibility.
type subsetCompletion struct{ weights []float64 }

func (c subsetCompletion) DualBound(inst any, newState problem.State, fromNode *bdd.Node) float64 {
	sum := 0.0
	for i := fromNode.Layer + 1; i < len(c.weights); i++ {
		sum += c.weights[i]
	}
	return sum
}

func TestBuildFullBinaryTreeHasCorrectBound(t *testing.T) {
	p := &subsetProblem{n: 3, weights: []float64{5, 1, 3}}
	b := solver.Build(multiTerminalOverride{p}, solver.Options{})
	ok, msg := b.IntegrityCheck()
	require.True(t, ok, msg)
	assert.Equal(t, 9.0, b.Bound)
	assert.NotNil(t, b.Root())
	assert.NotNil(t, b.Terminal())
}

func TestBuildWithWidthLimitStillReachesTerminal(t *testing.T) {
	m := &solver.AtOnceMerger{Cmp: solver.ByLongestPathDescending}
	p := &subsetProblem{n: 4, weights: []float64{2, 4, 1, 3}, merger: m}
	b := solver.Build(multiTerminalOverride{p}, solver.Options{
		Width: 2,
	})
	ok, msg := b.IntegrityCheck()
	require.True(t, ok, msg)
	assert.NotNil(t, b.Terminal())
	// A width-limited relaxation's bound is never below the exact optimum.
	assert.GreaterOrEqual(t, b.Bound, 10.0)
}

func TestBuildPanicsOnDuplicateVariableFromOrdering(t *testing.T) {
	p := &subsetProblem{n: 2, weights: []float64{1, 1}}
	bad := fixedOrdering{vars: []int{0, 0}}
	p2 := &orderingOverride{subsetProblem: p, ord: bad}
	assert.Panics(t, func() {
		solver.Build(p2, solver.Options{})
	})
}

// TestBuildPrimalPruningDropsProvablyDominatedArcsButKeepsOptimalBound
// exercises the fixed pruning formula (childLongest + completion bound,
// spec.md §4.3 step 5): with PrimalBound set just below the true optimum,
// only the path that can still reach it survives at every layer, yet the
// reported bound stays exactly correct.
func TestBuildPrimalPruningDropsProvablyDominatedArcsButKeepsOptimalBound(t *testing.T) {
	weights := []float64{5, 1, 3} // optimum: all ones, value 9
	p := &subsetProblem{n: 3, weights: weights, completion: subsetCompletion{weights: weights}}
	b := solver.Build(p, solver.Options{PrimalPruning: true, PrimalBound: 8.99})
	ok, msg := b.IntegrityCheck()
	require.True(t, ok, msg)
	assert.Equal(t, 9.0, b.Bound)

	total := 0
	for _, layer := range b.Layers {
		total += len(layer)
	}
	// Unpruned, the n=3 full binary tree has 1+2+4 nodes in layers 0..2
	// plus one terminal once its 8 leaves are merged (8 in all); every
	// suboptimal branch here is provably dominated and must be pruned,
	// leaving exactly one node per layer.
	assert.Equal(t, 4, total)
}

// multiTerminalOverride lifts the ExpectSingleTerminal() requirement so
// tests can build a full, unmerged tree whose leaves are genuinely
// distinct subsetStates.
type multiTerminalOverride struct{ *subsetProblem }

func (multiTerminalOverride) ExpectSingleTerminal() bool { return false }

func TestBuildPrimalPruningWithLaxBoundChangesNothing(t *testing.T) {
	weights := []float64{5, 1, 3}
	p := &subsetProblem{n: 3, weights: weights, completion: subsetCompletion{weights: weights}}
	b := solver.Build(multiTerminalOverride{p}, solver.Options{PrimalPruning: true, PrimalBound: -1000})
	ok, msg := b.IntegrityCheck()
	require.True(t, ok, msg)
	assert.Equal(t, 9.0, b.Bound)

	total := 0
	for _, layer := range b.Layers {
		total += len(layer)
	}
	// Unpruned: layers 0..2 keep their full 1+2+4 nodes; the 8 distinct
	// terminal-layer leaves are merged down to 1 surviving terminal.
	assert.Equal(t, 7+1, total)
}

// constantDataFunc tags every node's data with a running count of 1-arcs
// taken, rejecting transitions once the count would exceed max. It
// exercises both ApplyDataFuncs (transition) and MergeNodeData (dedup and
// relaxation merge).
func constantDataFunc(max int) bdd.DataFunc {
	return bdd.DataFunc{
		Name: "ones-budget",
		OnTransition: func(parent bdd.NodeData, layer, variable int, val bdd.Val) (bdd.NodeData, bool) {
			count, _ := parent["ones"].(int)
			if val == bdd.One {
				count++
			}
			if count > max {
				return nil, false
			}
			return bdd.NodeData{"ones": count}, true
		},
		OnMerge: func(a, b bdd.NodeData) bdd.NodeData {
			av, _ := a["ones"].(int)
			bv, _ := b["ones"].(int)
			if bv < av {
				av = bv
			}
			return bdd.NodeData{"ones": av}
		},
	}
}

func TestBuildDataFuncsRejectTransitionAndAreReachableOnEveryNode(t *testing.T) {
	p := &subsetProblem{n: 3, weights: []float64{5, 1, 3}}
	b := solver.Build(multiTerminalOverride{p}, solver.Options{DataFuncs: []bdd.DataFunc{constantDataFunc(1)}})
	ok, msg := b.IntegrityCheck()
	require.True(t, ok, msg)

	// At most one variable may be set to 1, so the optimum is the single
	// highest-weight variable (5).
	assert.Equal(t, 5.0, b.Bound)

	// Layer 0 is the root, whose Data is never passed through a DataFunc
	// (ApplyDataFuncs only runs on transitions out of a node); every other
	// surviving node was produced by a transition and must carry the tag.
	for _, layer := range b.Layers[1:] {
		for _, n := range layer {
			count, ok := n.Data["ones"].(int)
			require.True(t, ok, "every surviving node must carry the ones-budget tag")
			assert.LessOrEqual(t, count, 1)
		}
	}
}

type fixedOrdering struct{ vars []int }

func (f fixedOrdering) SelectNextVar(layer int) int { return f.vars[layer] }

type orderingOverride struct {
	*subsetProblem
	ord problem.Ordering
}

func (o *orderingOverride) Ordering() problem.Ordering { return o.ord }
