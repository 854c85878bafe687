package solver

import (
	"math/rand"
	"sort"

	"github.com/ctjandra/ddopt-cut/bdd"
	"github.com/ctjandra/ddopt-cut/problem"
)

// NodeComparator orders open frontier nodes for a merger's sort or
// selection step. Returns true if a sorts before b.
type NodeComparator func(a, b *bdd.Node) bool

// ByLongestPathDescending keeps high-longest-path nodes first, so a
// merger that "picks the survivor at position width-1" keeps the most
// promising nodes intact and merges away the tail.
func ByLongestPathDescending(a, b *bdd.Node) bool { return a.LongestPath > b.LongestPath }

// ByLongestPathAscending is the genuine opposite of the descending
// comparator (spec.md §9 open question 1: the two must not be textually
// identical).
func ByLongestPathAscending(a, b *bdd.Node) bool { return a.LongestPath < b.LongestPath }

// ByStateSizeAscending/Descending order by a caller-supplied state size
// function (e.g. popcount of an independent-set bitset).
func ByStateSizeAscending(size func(*bdd.Node) int) NodeComparator {
	return func(a, b *bdd.Node) bool { return size(a) < size(b) }
}

func ByStateSizeDescending(size func(*bdd.Node) int) NodeComparator {
	return func(a, b *bdd.Node) bool { return size(a) > size(b) }
}

// ByStateLexicographic orders by the problem state's own total order.
func ByStateLexicographic(a, b *bdd.Node) bool {
	return a.State.(problem.State).Less(b.State.(problem.State))
}

// ByPassValueAscending/Descending order by a value accumulated during
// construction via a partial pass (spec.md §4.2 "pass-func-node-data").
func ByPassValueAscending(value func(*bdd.Node) float64) NodeComparator {
	return func(a, b *bdd.Node) bool { return value(a) < value(b) }
}

func ByPassValueDescending(value func(*bdd.Node) float64) NodeComparator {
	return func(a, b *bdd.Node) bool { return value(a) > value(b) }
}

// RandomShuffle returns a comparator-driven ordering by assigning each
// node a random key the first time the returned comparator sees it; the
// key is kept for the comparator's lifetime, across MergeLayer calls
// (teacher's own math/rand Boolgen pattern, ilp_test.go).
func RandomShuffle(rng *rand.Rand) NodeComparator {
	keys := map[*bdd.Node]float64{}
	return func(a, b *bdd.Node) bool {
		ka, ok := keys[a]
		if !ok {
			ka = rng.Float64()
			keys[a] = ka
		}
		kb, ok := keys[b]
		if !ok {
			kb = rng.Float64()
			keys[b] = kb
		}
		return ka < kb
	}
}

// sortNodes is a small stable-sort helper shared by every merger below.
func sortNodes(nodes []*bdd.Node, less NodeComparator) {
	sort.SliceStable(nodes, func(i, j int) bool { return less(nodes[i], nodes[j]) })
}

// stateMergeFunc adapts problem.State.Merge to the signature bdd.MergeOpenNodes expects.
func stateMergeFunc(p problem.Problem) func(a, b any) any {
	return func(a, other any) any {
		return a.(problem.State).Merge(p, other.(problem.State))
	}
}

// dedupAgainst absorbs survivor into any node in candidates whose state
// already equals survivor's, per the mergers' "equivalence sweep"
// post-condition (spec.md §4.3). Returns true if an absorption happened.
func dedupAgainst(b *bdd.BDD, p problem.Problem, survivor *bdd.Node, candidates []*bdd.Node, skip *bdd.Node) (*bdd.Node, bool) {
	sState := survivor.State.(problem.State)
	for _, n := range candidates {
		if n == survivor || n == skip {
			continue
		}
		if n.State.(problem.State).Equals(sState) {
			b.MergeOpenNodes(n, survivor, stateMergeFunc(p), true)
			b.RemoveNode(survivor)
			return n, true
		}
	}
	return nil, false
}

// boundMerger is embedded by every concrete merger below to hold the BDD
// the engine is currently building. The engine calls SetBDD once per
// construction run; problem.Merger's own signature carries only the
// problem/nodes/width spec.md names, so the BDD travels alongside instead
// of through it.
type boundMerger struct {
	B *bdd.BDD
}

// SetBDD attaches the BDD under construction. Called by the engine before
// the first MergeLayer invocation of a run.
func (bm *boundMerger) SetBDD(b *bdd.BDD) { bm.B = b }

// AtOnceMerger sorts by cmp, keeps the best (width-1) nodes intact, and
// merges every node at position >= width into the survivor at position
// width-1, then runs one equivalence sweep (spec.md §4.3 merger #1).
type AtOnceMerger struct {
	boundMerger
	Cmp NodeComparator
}

func (m *AtOnceMerger) MergeLayer(p problem.Problem, layer int, nodes []*bdd.Node, width int) []*bdd.Node {
	b := m.B
	sortNodes(nodes, m.Cmp)
	survivor := nodes[width-1]
	for _, extra := range nodes[width:] {
		b.MergeOpenNodes(survivor, extra, stateMergeFunc(p), false)
		b.RemoveNode(extra)
	}
	kept := append([]*bdd.Node(nil), nodes[:width]...)
	return dedupWithinKept(b, p, kept)
}

// dedupWithinKept repeatedly absorbs any pair of kept nodes that end up
// with equal states (e.g. after the survivor merge) into one.
func dedupWithinKept(b *bdd.BDD, p problem.Problem, kept []*bdd.Node) []*bdd.Node {
	changed := true
	for changed {
		changed = false
		for i := 0; i < len(kept); i++ {
			for j := i + 1; j < len(kept); j++ {
				if kept[i].State.(problem.State).Equals(kept[j].State.(problem.State)) {
					b.MergeOpenNodes(kept[i], kept[j], stateMergeFunc(p), true)
					b.RemoveNode(kept[j])
					kept = append(kept[:j], kept[j+1:]...)
					changed = true
					break
				}
			}
			if changed {
				break
			}
		}
	}
	return kept
}

// IterativeMerger repeatedly merges the last two nodes (by cmp order),
// checking after each merge whether the result already matches a kept
// node (spec.md §4.3 merger #2).
type IterativeMerger struct {
	boundMerger
	Cmp NodeComparator
}

func (m *IterativeMerger) MergeLayer(p problem.Problem, layer int, nodes []*bdd.Node, width int) []*bdd.Node {
	b := m.B
	sortNodes(nodes, m.Cmp)
	kept := append([]*bdd.Node(nil), nodes...)
	for len(kept) > width {
		n := len(kept)
		a, other := kept[n-2], kept[n-1]
		kept = kept[:n-1]
		b.MergeOpenNodes(a, other, stateMergeFunc(p), false)
		b.RemoveNode(other)
		if survivor, absorbed := dedupAgainst(b, p, a, kept[:len(kept)-1], nil); absorbed {
			// a was absorbed into survivor; drop a from kept.
			for i, x := range kept {
				if x == a {
					kept = append(kept[:i], kept[i+1:]...)
					break
				}
			}
			_ = survivor
		}
	}
	return kept
}

// ConsecutivePairsMerger sorts, then repeatedly pops pairs from the end,
// merges each pair, dedups against both the new and old lists, and
// requeues until within width (spec.md §4.3 merger #3).
type ConsecutivePairsMerger struct {
	boundMerger
	Cmp NodeComparator
}

func (m *ConsecutivePairsMerger) MergeLayer(p problem.Problem, layer int, nodes []*bdd.Node, width int) []*bdd.Node {
	b := m.B
	sortNodes(nodes, m.Cmp)
	kept := append([]*bdd.Node(nil), nodes...)
	for len(kept) > width {
		n := len(kept)
		a, other := kept[n-2], kept[n-1]
		kept = kept[:n-2]
		b.MergeOpenNodes(a, other, stateMergeFunc(p), false)
		b.RemoveNode(other)
		if _, absorbed := dedupAgainst(b, p, a, kept, nil); !absorbed {
			kept = append(kept, a)
		}
	}
	return kept
}

// PairByValueMerger exhaustively picks the pair maximizing (or, if
// Minimize is set, minimizing) Value(a, b), merges it, dedups, and
// repeats until within width (spec.md §4.3 merger #4).
type PairByValueMerger struct {
	boundMerger
	Value    func(a, b *bdd.Node) float64
	Minimize bool
}

func (m *PairByValueMerger) MergeLayer(p problem.Problem, layer int, nodes []*bdd.Node, width int) []*bdd.Node {
	b := m.B
	kept := append([]*bdd.Node(nil), nodes...)
	for len(kept) > width {
		bestI, bestJ := 0, 1
		bestVal := m.Value(kept[0], kept[1])
		for i := 0; i < len(kept); i++ {
			for j := i + 1; j < len(kept); j++ {
				v := m.Value(kept[i], kept[j])
				if (m.Minimize && v < bestVal) || (!m.Minimize && v > bestVal) {
					bestVal, bestI, bestJ = v, i, j
				}
			}
		}
		a, other := kept[bestI], kept[bestJ]
		// bestJ > bestI always (j ranges over i+1..); remove bestJ first so
		// bestI's index is unaffected by the shift.
		kept = append(kept[:bestJ], kept[bestJ+1:]...)
		kept = append(kept[:bestI], kept[bestI+1:]...)
		b.MergeOpenNodes(a, other, stateMergeFunc(p), false)
		b.RemoveNode(other)
		if _, absorbed := dedupAgainst(b, p, a, kept, nil); !absorbed {
			kept = append(kept, a)
		}
	}
	return kept
}

// MinNewSolsBound is the "min new-sols bound" comparator value function:
// max(a.lp + size(b.state), b.lp + size(a.state)).
func MinNewSolsBound(size func(*bdd.Node) int) func(a, b *bdd.Node) float64 {
	return func(a, b *bdd.Node) float64 {
		x := a.LongestPath + float64(size(b))
		y := b.LongestPath + float64(size(a))
		if x > y {
			return x
		}
		return y
	}
}

// BDDBinder is implemented by every merger in this package. The engine
// type-asserts a problem.Merger to BDDBinder and calls SetBDD once before
// the first layer of a construction run.
type BDDBinder interface {
	SetBDD(b *bdd.BDD)
}
