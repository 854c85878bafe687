package bdd

import "math/big"

// Center computes, for each layer 0..n-1, the fraction of root-to-
// terminal paths that take the 1-arc out of that layer (spec.md §4.4
// "Center of DD"). Path counts are required to use arbitrary precision:
// realistic instances overflow any native integer width (spec.md §9).
// The final conversion to float64 is the only place precision is lost.
func Center(b *BDD) []float64 {
	topDown := countTopDown(b)
	bottomUp := countBottomUp(b)

	total := new(big.Int)
	root := b.Root()
	if root != nil {
		total.Set(bottomUp[root])
	}

	center := make([]float64, b.NumVars)
	if total.Sign() == 0 {
		return center
	}

	for layer := 0; layer < b.NumVars; layer++ {
		onePaths := new(big.Int)
		for _, n := range b.Layers[layer] {
			if n.OneArc == nil {
				continue
			}
			contribution := new(big.Int).Mul(topDown[n], bottomUp[n.OneArc])
			onePaths.Add(onePaths, contribution)
		}
		frac := new(big.Rat).SetFrac(onePaths, total)
		f, _ := frac.Float64()
		center[layer] = f
	}
	return center
}

// ApproximateCenter returns a concrete 0/1 root-to-terminal path close to
// point, found by a single top-down min-distance pass (spec.md §4.2
// MinDistanceApply; §4.4's interior-point routines need an actual feasible
// assignment, not Center's fractional per-layer summary). It wraps
// MinDistanceApply's Apply to additionally record, for every node whose
// running value improves, the arc that produced it, then backtracks from
// the terminal along those recorded arcs once the pass completes.
func ApproximateCenter(b *BDD, point []float64) []float64 {
	spec := MinDistanceApply(point, false)
	parentOf := make(map[*Node]*Node)
	valOf := make(map[*Node]Val)

	inner := spec.Apply
	spec.Apply = func(layer, variable int, val Val, sourceVal, targetVal any, source, dest *Node) any {
		cand := inner(layer, variable, val, sourceVal, targetVal, source, dest)
		if cand.(float64) < targetVal.(float64) {
			parentOf[dest] = source
			valOf[dest] = val
		}
		return cand
	}

	RunPass(b, TopDown, spec)
	defer CleanUp(b)

	assignment := make([]float64, b.NumVars)
	term := b.Terminal()
	if term == nil {
		return assignment
	}
	for n := term; n != nil; {
		parent, ok := parentOf[n]
		if !ok {
			break
		}
		assignment[parent.Layer] = float64(valOf[n])
		n = parent
	}
	return assignment
}

// countTopDown returns, for every node, the exact number of root-to-node
// paths.
func countTopDown(b *BDD) map[*Node]*big.Int {
	counts := make(map[*Node]*big.Int, b.nodeCount())
	for _, layer := range b.Layers {
		for _, n := range layer {
			counts[n] = new(big.Int)
		}
	}
	root := b.Root()
	if root == nil {
		return counts
	}
	counts[root].SetInt64(1)

	for layer := 0; layer < b.NumVars; layer++ {
		for _, parent := range b.Layers[layer] {
			c := counts[parent]
			if c.Sign() == 0 {
				continue
			}
			if parent.ZeroArc != nil {
				counts[parent.ZeroArc].Add(counts[parent.ZeroArc], c)
			}
			if parent.OneArc != nil {
				counts[parent.OneArc].Add(counts[parent.OneArc], c)
			}
		}
	}
	return counts
}

// countBottomUp returns, for every node, the exact number of node-to-
// terminal paths.
func countBottomUp(b *BDD) map[*Node]*big.Int {
	counts := make(map[*Node]*big.Int, b.nodeCount())
	for _, layer := range b.Layers {
		for _, n := range layer {
			counts[n] = new(big.Int)
		}
	}
	term := b.Terminal()
	if term == nil {
		return counts
	}
	counts[term].SetInt64(1)

	for layer := b.NumVars - 1; layer >= 0; layer-- {
		for _, parent := range b.Layers[layer] {
			total := new(big.Int)
			if parent.ZeroArc != nil {
				total.Add(total, counts[parent.ZeroArc])
			}
			if parent.OneArc != nil {
				total.Add(total, counts[parent.OneArc])
			}
			counts[parent] = total
		}
	}
	return counts
}
