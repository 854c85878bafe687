package bdd

import "math"

// ArcWeights supplies the per-layer 0-arc / 1-arc coefficients used by the
// path kernels (spec.md §4.4): Zero[layer] is the weight contributed by a
// 0-arc leaving that layer, One[layer] the weight of a 1-arc.
type ArcWeights struct {
	Zero []float64
	One  []float64
}

func (w ArcWeights) of(layer int, val Val) float64 {
	if val == Zero {
		return w.Zero[layer]
	}
	return w.One[layer]
}

// Path is a reconstructed root-to-terminal path: one Val per variable, in
// layer order, plus its accumulated value. Variables skipped by a long
// arc are filled per spec.md §9's convention (zero, except the first
// skipped slot of a 1-arc long arc, which carries the 1).
type Path struct {
	Vals  []Val
	Value float64
}

type pathState struct {
	value      float64
	parent     *Node
	parentVal  Val
	parentLay  int
	reachable  bool
}

// LongestPath computes the longest (if maximize) or shortest root-to-
// terminal path under weights w, grounded on lvlath/graph/dijkstra.go's
// relaxation loop with the min-heap replaced by the DD's topological
// layer order and min-relaxation replaced by max-relaxation when
// maximizing. ignoreRelaxed skips any node other than the root with
// RelaxedNode=true as a source; if the terminal becomes unreachable this way, it returns an
// empty path and +/-Inf.
func LongestPath(b *BDD, w ArcWeights, maximize bool, ignoreRelaxed bool) (Path, float64) {
	worst := math.Inf(-1)
	if !maximize {
		worst = math.Inf(1)
	}

	states := make(map[*Node]*pathState, b.nodeCount())
	for _, layer := range b.Layers {
		for _, n := range layer {
			states[n] = &pathState{value: worst}
		}
	}
	root := b.Root()
	if root == nil {
		return Path{}, worst
	}
	states[root].value = 0
	states[root].reachable = true

	better := func(a, b float64) bool {
		if maximize {
			return a > b
		}
		return a < b
	}

	for layer := 0; layer < b.NumVars; layer++ {
		for _, parent := range b.Layers[layer] {
			ps := states[parent]
			if !ps.reachable {
				continue
			}
			if ignoreRelaxed && parent.RelaxedNode && parent != root {
				continue
			}
			relax(states, parent, parent.ZeroArc, Zero, layer, ps.value, w, better)
			relax(states, parent, parent.OneArc, One, layer, ps.value, w, better)
		}
	}

	term := b.Terminal()
	if term == nil || !states[term].reachable {
		return Path{}, worst
	}

	path := reconstructPath(b, states, term)
	path.Value = states[term].value
	return path, states[term].value
}

func relax(states map[*Node]*pathState, parent, child *Node, val Val, layer int, parentVal float64, w ArcWeights, better func(a, b float64) bool) {
	if child == nil {
		return
	}
	cs, ok := states[child]
	if !ok {
		return
	}
	cand := parentVal + w.of(layer, val)
	if !cs.reachable || better(cand, cs.value) {
		cs.value = cand
		cs.reachable = true
		cs.parent = parent
		cs.parentVal = val
		cs.parentLay = layer
	}
}

// reconstructPath traces lp_parent/lp_parent_arctype back from the
// terminal, filling long-arc gaps per the convention of spec.md §9: zeros
// except the first skipped slot of a 1-arc long arc, which carries the 1.
func reconstructPath(b *BDD, states map[*Node]*pathState, term *Node) Path {
	vals := make([]Val, b.NumVars)
	cur := term
	for cur != b.Root() {
		cs := states[cur]
		parent := cs.parent
		parentLayer := cs.parentLay
		childLayer := cur.Layer
		if childLayer == openPos {
			// Unconsolidated terminal (shouldn't occur post-construction)
			childLayer = parentLayer + 1
		}
		vals[parentLayer] = cs.parentVal
		for l := parentLayer + 1; l < childLayer; l++ {
			vals[l] = Zero
		}
		cur = parent
	}
	return Path{Vals: vals}
}

// VerifyPathValue recomputes a path's value by summing per-arc
// contributions and compares it to reported, within eps (spec.md §8
// "longest-path agreement").
func VerifyPathValue(path Path, w ArcWeights, reported, eps float64) bool {
	sum := 0.0
	for layer, v := range path.Vals {
		sum += w.of(layer, v)
	}
	return sum-reported <= eps && reported-sum <= eps
}

// Fixing describes whether a layer's variable is forced to a constant
// value by every surviving arc leaving it.
type Fixing int

const (
	NotFixed Fixing = iota
	FixedZero
	FixedOne
)

// DetectFixedVariables returns, per layer, whether every arc leaving that
// layer's nodes shares the same value (spec.md §4.4 "variable-fixing
// detection"). A long arc of the form (1,0,...,0) counts as a 1-arc for
// its own layer and a 0-arc for every layer it skips over.
func DetectFixedVariables(b *BDD) []Fixing {
	fixings := make([]Fixing, b.NumVars)
	sawZero := make([]bool, b.NumVars)
	sawOne := make([]bool, b.NumVars)

	for layer := 0; layer < b.NumVars; layer++ {
		for _, n := range b.Layers[layer] {
			if n.ZeroArc != nil {
				markSkipped(sawZero, layer, n.ZeroArc.Layer)
			}
			if n.OneArc != nil {
				sawOne[layer] = true
				markSkipped(sawZero, layer+1, n.OneArc.Layer)
			}
		}
	}

	for layer := 0; layer < b.NumVars; layer++ {
		switch {
		case sawZero[layer] && !sawOne[layer]:
			fixings[layer] = FixedZero
		case sawOne[layer] && !sawZero[layer]:
			fixings[layer] = FixedOne
		default:
			fixings[layer] = NotFixed
		}
	}
	return fixings
}

// markSkipped marks every layer in [from, to) as having seen an implicit
// 0-arc contribution, used for both plain 0-arcs (to = from+1) and the
// zero-filled tail of a long arc.
func markSkipped(sawZero []bool, from, to int) {
	for l := from; l < to && l < len(sawZero); l++ {
		sawZero[l] = true
	}
}
