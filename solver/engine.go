package solver

import (
	"fmt"

	"github.com/ctjandra/ddopt-cut/bdd"
	"github.com/ctjandra/ddopt-cut/problem"
)

// frontier is the open, not-yet-consolidated node set of the layer
// currently being built. It mirrors the teacher's subproblem queue
// (subproblem.go) but keyed by problem-state equality instead of bound
// order, since the construction engine's dedup step (spec.md §4.3 step 4)
// needs to find an existing node with an identical state in O(1) amortized
// rather than scan.
type frontier struct {
	order   []*bdd.Node
	buckets map[string][]*bdd.Node
}

func newFrontier() *frontier {
	return &frontier{buckets: map[string][]*bdd.Node{}}
}

func (f *frontier) find(s problem.State) *bdd.Node {
	for _, cand := range f.buckets[s.String()] {
		if cand.State.(problem.State).Equals(s) {
			return cand
		}
	}
	return nil
}

func (f *frontier) add(n *bdd.Node) {
	f.order = append(f.order, n)
	key := n.State.(problem.State).String()
	f.buckets[key] = append(f.buckets[key], n)
}

func (f *frontier) remove(n *bdd.Node) {
	for i, x := range f.order {
		if x == n {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	key := n.State.(problem.State).String()
	bucket := f.buckets[key]
	for i, x := range bucket {
		if x == n {
			f.buckets[key] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
}

// Build runs the layer-by-layer construction algorithm (spec.md §4.3) and
// returns the resulting BDD. It panics on caller-contract violations
// (duplicate variable from Ordering, ExpectSingleTerminal violated by a
// genuinely infeasible merge). It also panics when no terminal node
// survives (an infeasible instance); it has no non-panicking infeasible
// result.
func Build(p problem.Problem, opts Options) *bdd.BDD {
	n := p.NumVars()
	logger := opts.log()

	layerToVar := make([]int, n)
	assigned := make([]bool, n)
	ordering := p.Ordering()
	for layer := 0; layer < n; layer++ {
		v := ordering.SelectNextVar(layer)
		if v < 0 || v >= n || assigned[v] {
			panic("solver: ordering selected an already-assigned or out-of-range variable")
		}
		assigned[v] = true
		layerToVar[layer] = v
	}

	b := bdd.NewBDD(n, layerToVar)
	b.LongArcsEnabled = opts.LongArcs
	b.DataFuncs = opts.DataFuncs

	if binder, ok := p.Merger().(BDDBinder); ok {
		binder.SetBDD(b)
	}

	root := b.NewOpenNode(p.CreateInitialState())
	b.Consolidate(root, 0)

	fr := newFrontier()
	fr.add(root)

	for layer := 0; layer < n; layer++ {
		v := layerToVar[layer]
		logger.Debug("layer start", "layer", layer, "variable", v, "width", len(fr.order))

		// Step 2: long-arc skipping. A node whose state reports the
		// variable irrelevant simply stays open across this layer; it is
		// neither consolidated here nor branched on.
		var toConsolidate []*bdd.Node
		var skipped []*bdd.Node
		for _, node := range fr.order {
			if opts.LongArcs && p.SkipVarForLongArc(v, node.State.(problem.State)) {
				skipped = append(skipped, node)
				continue
			}
			toConsolidate = append(toConsolidate, node)
		}

		for _, node := range toConsolidate {
			b.Consolidate(node, layer)
		}

		// Step 3: width control via the pluggable merger.
		if opts.Width > 0 && len(toConsolidate) > opts.Width {
			kept := p.Merger().MergeLayer(p, layer, toConsolidate, opts.Width)
			toConsolidate = kept
		}

		next := newFrontier()
		for _, skippedNode := range skipped {
			next.add(skippedNode)
		}

		for _, parent := range toConsolidate {
			for _, val := range [2]bdd.Val{bdd.Zero, bdd.One} {
				childState, ok := parent.State.(problem.State).Transition(p, v, val)
				if !ok {
					continue
				}

				childData, ok := b.ApplyDataFuncs(parent.Data, layer, v, val)
				if !ok {
					continue
				}

				arcWeight := 0.0
				if val == bdd.One {
					arcWeight = p.Weight(v)
				}
				childLongest := combineLongestPath(p, parent.LongestPath, arcWeight)

				// Step 5: primal pruning.
				if opts.PrimalPruning && p.Completion() != nil {
					bound := p.Completion().DualBound(p.Instance(), childState, parent)
					if primalPrunes(p, childLongest+bound, opts.PrimalBound) {
						continue
					}
				}

				if existing := next.find(childState); existing != nil {
					b.AssignArc(parent, existing, val)
					if childLongest > existing.LongestPath && p.Maximize() {
						existing.LongestPath = childLongest
					} else if childLongest < existing.LongestPath && !p.Maximize() {
						existing.LongestPath = childLongest
					}
					b.MergeNodeData(existing, childData)
					continue
				}

				child := b.NewOpenNode(childState)
				child.LongestPath = childLongest
				child.Data = childData
				b.AssignArc(parent, child, val)
				next.add(child)
			}

			if opts.DeleteOldStates {
				parent.State = nil
			}
		}

		p.OnLayerEnd(v)
		if opts.Callback != nil {
			opts.Callback.OnLayerEnd(v, len(next.order))
		}
		logger.Debug("layer end", "layer", layer, "variable", v, "newWidth", len(next.order))

		fr = next
	}

	if len(fr.order) == 0 {
		panic("solver: construction produced no terminal node (instance is infeasible)")
	}

	for _, node := range fr.order {
		b.Consolidate(node, n)
	}
	terminal := fr.order[0]
	for _, extra := range fr.order[1:] {
		if p.ExpectSingleTerminal() {
			panic("solver: more than one terminal node survived construction but ExpectSingleTerminal is set")
		}
		b.MergeOpenNodes(terminal, extra, stateMergeFunc(p), false)
		b.RemoveNode(extra)
	}

	b.Bound = terminal.LongestPath
	return b
}

// combineLongestPath folds an arc weight onto a parent's accumulated
// LongestPath. Maximization and minimization both simply add: the sign
// convention of Weight is the problem's own business.
func combineLongestPath(p problem.Problem, parentValue, arcWeight float64) float64 {
	return parentValue + arcWeight
}

// primalPrunes reports whether a child with the given completion bound can
// be safely dropped given the best known primal solution value so far.
func primalPrunes(p problem.Problem, bound, primalBound float64) bool {
	if p.Maximize() {
		return bound <= primalBound
	}
	return bound >= primalBound
}

// String satisfies fmt.Stringer for frontier diagnostics in logging.
func (f *frontier) String() string {
	return fmt.Sprintf("frontier(%d nodes)", len(f.order))
}
