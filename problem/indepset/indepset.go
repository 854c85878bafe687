// Package indepset specializes the bdd/solver construction engine to the
// maximum-weight independent set problem: variable i means "vertex i is in
// the set"; neighborhood conflicts are enforced by dropping the 1-arc once
// any neighbor is already fixed in.
package indepset

import (
	"fmt"
	"math/bits"

	"github.com/ctjandra/ddopt-cut/bdd"
	"github.com/ctjandra/ddopt-cut/problem"
)

// Graph is the instance: n vertices 0..n-1, symmetric adjacency, and per-
// vertex weights (1.0 for the unweighted cardinality case).
type Graph struct {
	N         int
	Adjacency []uint64 // n rows of words 64-bit words each, row-major: Adjacency[v*words+w]
	Weight    []float64
	words     int
}

// NewGraph allocates an empty graph on n vertices with unit weights.
func NewGraph(n int) *Graph {
	words := (n + 63) / 64
	g := &Graph{N: n, words: words, Weight: make([]float64, n)}
	g.Adjacency = make([]uint64, n*words)
	for i := range g.Weight {
		g.Weight[i] = 1
	}
	return g
}

// AddEdge marks u and v as adjacent (symmetric).
func (g *Graph) AddEdge(u, v int) {
	g.setBit(u, v)
	g.setBit(v, u)
}

func (g *Graph) setBit(v, neighbor int) {
	idx := v*g.words + neighbor/64
	g.Adjacency[idx] |= 1 << uint(neighbor%64)
}

func (g *Graph) hasEdge(v, neighbor int) bool {
	idx := v*g.words + neighbor/64
	return g.Adjacency[idx]&(1<<uint(neighbor%64)) != 0
}

// neighbors returns the bitset row for v.
func (g *Graph) neighbors(v int) []uint64 {
	return g.Adjacency[v*g.words : (v+1)*g.words]
}

// bitset is a fixed-width bitset over the graph's vertex set, used both as
// the "set to 1" accumulator and the "still-available" state.
type bitset []uint64

func newBitset(words int) bitset { return make(bitset, words) }

func (b bitset) clone() bitset {
	c := make(bitset, len(b))
	copy(c, b)
	return c
}

func (b bitset) set(i int)        { b[i/64] |= 1 << uint(i%64) }
func (b bitset) clear(i int)      { b[i/64] &^= 1 << uint(i%64) }
func (b bitset) test(i int) bool  { return b[i/64]&(1<<uint(i%64)) != 0 }
func (b bitset) andNot(other bitset) {
	for i := range b {
		b[i] &^= other[i]
	}
}
func (b bitset) popcount() int {
	total := 0
	for _, w := range b {
		total += bits.OnesCount64(w)
	}
	return total
}
func (b bitset) equals(other bitset) bool {
	for i := range b {
		if b[i] != other[i] {
			return false
		}
	}
	return true
}
func (b bitset) less(other bitset) bool {
	for i := range b {
		if b[i] != other[i] {
			return b[i] < other[i]
		}
	}
	return false
}

// State is the problem.State for independent-set construction: the set of
// vertices still available to be added (not yet excluded by a prior
// inclusion), restricted to variables at or after the current layer.
type State struct {
	available bitset
}

var _ problem.State = State{}

// Transition implements problem.State (spec.md §5 "Independent set").
// val=One is infeasible iff vertex v is not currently available (i.e. some
// already-included neighbor excluded it).
func (s State) Transition(p problem.Problem, v int, val bdd.Val) (problem.State, bool) {
	if val == bdd.Zero {
		next := s.available.clone()
		next.clear(v)
		return State{available: next}, true
	}
	if !s.available.test(v) {
		return nil, false
	}
	g := p.Instance().(*Graph)
	next := s.available.clone()
	next.clear(v)
	next.andNot(bitset(g.neighbors(v)))
	return State{available: next}, true
}

// Merge takes the union of available sets: a relaxed node can still reach
// any state either branch could (spec.md §4.3 node-level merge: the
// resulting reachable-set is a relaxation, never tighter).
func (s State) Merge(p problem.Problem, other problem.State) problem.State {
	o := other.(State)
	merged := s.available.clone()
	for i := range merged {
		merged[i] |= o.available[i]
	}
	return State{available: merged}
}

func (s State) Equals(other problem.State) bool { return s.available.equals(other.(State).available) }
func (s State) Less(other problem.State) bool   { return s.available.less(other.(State).available) }
func (s State) String() string                  { return fmt.Sprintf("%v", []uint64(s.available)) }

// Problem bundles a Graph with an ordering/merger/completion selection.
type Problem struct {
	Graph      *Graph
	Order      problem.Ordering
	MergeRule  problem.Merger
	BoundRule  problem.Completion
	SingleTerm bool
}

var _ problem.Problem = (*Problem)(nil)

func (p *Problem) Instance() any  { return p.Graph }
func (p *Problem) NumVars() int   { return p.Graph.N }

func (p *Problem) CreateInitialState() problem.State {
	words := p.Graph.words
	full := newBitset(words)
	for i := range full {
		full[i] = ^uint64(0)
	}
	// Clear any padding bits beyond N so popcount/equality stay exact.
	if rem := p.Graph.N % 64; rem != 0 {
		full[words-1] &= (1 << uint(rem)) - 1
	}
	return State{available: full}
}

func (p *Problem) Ordering() problem.Ordering { return p.Order }
func (p *Problem) Merger() problem.Merger     { return p.MergeRule }

func (p *Problem) Completion() problem.Completion { return p.BoundRule }

func (p *Problem) ExpectSingleTerminal() bool { return p.SingleTerm }

// SkipVarForLongArc reports whether vertex v is already excluded for every
// reachable continuation of s, letting the engine fold a run of forced
// zeros into one long arc (spec.md §4.3 step 2, §9 "long arcs").
func (p *Problem) SkipVarForLongArc(v int, s problem.State) bool {
	return !s.(State).available.test(v)
}

func (p *Problem) OnLayerEnd(v int) {}

func (p *Problem) Weight(v int) float64 { return p.Graph.Weight[v] }

func (p *Problem) Maximize() bool { return true }

// Size returns the popcount of a node's available set, for use as a
// NodeComparator size function (spec.md §4.3 width-control comparators).
func Size(n *bdd.Node) int {
	return n.State.(State).available.popcount()
}

// Completion is the independent-set problem.Completion: DualBound returns
// the sum of weights of the vertices still available in newState, since
// every remaining vertex could in principle still be added; the engine adds
// it to the child's LongestPath (already-chosen weight) for primal pruning
// (spec.md §4.3 step 5). This over-counts adjacency conflicts among the remaining
// vertices, so it is a valid (if loose) relaxation upper bound.
type Completion struct{}

var _ problem.Completion = Completion{}

func (c Completion) DualBound(inst any, newState problem.State, fromNode *bdd.Node) float64 {
	s := newState.(State)
	g := inst.(*Graph)
	sum := 0.0
	for i := 0; i < g.N; i++ {
		if s.available.test(i) {
			sum += g.Weight[i]
		}
	}
	return sum
}
