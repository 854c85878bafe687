package bdd

// Direction selects which sweep(s) a pass runs.
type Direction int

const (
	TopDown Direction = 1 << iota
	BottomUp
)

// PassSpec is a generic top-down/bottom-up fold over the BDD (spec.md
// §4.2), grounded on lvlath/graph's BFS/DFS fold-with-visited-set
// traversal style generalized to a parametric start/init/apply triple.
//
// For a top-down pass the fold runs over (parent, arc, child) with parent
// as the "source"; for a bottom-up pass it runs over (child, arc, parent)
// with child as the "source". layer is always the layer of the parent
// endpoint, regardless of direction.
type PassSpec struct {
	// StartVal is the value installed at the traversal's source end: the
	// root for a top-down pass, the terminal for a bottom-up pass.
	StartVal func() any

	// InitVal is the value every other node starts with before folding.
	InitVal func() any

	// Apply folds one arc's contribution into the target's running value.
	Apply func(layer, variable int, val Val, sourceVal, targetVal any, source, target *Node) any
}

// scratch holds one pass's working value per node, keyed by node identity
// via the node's own tempData field (a side table keyed by node, typed to
// the current pass per SPEC_FULL.md's ambient-stack note).
type scratch struct {
	byNode map[*Node]any
}

// RunPass allocates scratch on every consolidated node, runs the
// requested direction(s), and leaves the scratch populated in the
// returned map for the caller to read. CleanUp must be called afterward.
func RunPass(b *BDD, dirs Direction, spec PassSpec) map[*Node]any {
	s := &scratch{byNode: make(map[*Node]any)}
	for _, layer := range b.Layers {
		for _, n := range layer {
			n.tempData = s
			s.byNode[n] = spec.InitVal()
		}
	}

	if dirs&TopDown != 0 {
		root := b.Root()
		if root != nil {
			s.byNode[root] = spec.StartVal()
			for layer := 0; layer < b.NumVars; layer++ {
				variable := b.LayerToVar[layer]
				for _, parent := range b.Layers[layer] {
					runArcsTopDown(s, parent, layer, variable, spec)
				}
			}
		}
	}

	if dirs&BottomUp != 0 {
		term := b.Terminal()
		if term != nil {
			s.byNode[term] = spec.StartVal()
			for layer := b.NumVars - 1; layer >= 0; layer-- {
				variable := b.LayerToVar[layer]
				for _, parent := range b.Layers[layer] {
					runArcsBottomUp(s, parent, layer, variable, spec)
				}
			}
		}
	}

	return s.byNode
}

func runArcsTopDown(s *scratch, parent *Node, layer, variable int, spec PassSpec) {
	if child := parent.ZeroArc; child != nil {
		s.byNode[child] = spec.Apply(layer, variable, Zero, s.byNode[parent], s.byNode[child], parent, child)
	}
	if child := parent.OneArc; child != nil {
		s.byNode[child] = spec.Apply(layer, variable, One, s.byNode[parent], s.byNode[child], parent, child)
	}
}

func runArcsBottomUp(s *scratch, parent *Node, layer, variable int, spec PassSpec) {
	if child := parent.ZeroArc; child != nil {
		s.byNode[parent] = spec.Apply(layer, variable, Zero, s.byNode[child], s.byNode[parent], child, parent)
	}
	if child := parent.OneArc; child != nil {
		s.byNode[parent] = spec.Apply(layer, variable, One, s.byNode[child], s.byNode[parent], child, parent)
	}
}

// CleanUp frees the scratch allocated by RunPass, resetting every
// consolidated node's tempData to nil so IntegrityCheck passes again.
func CleanUp(b *BDD) {
	for _, layer := range b.Layers {
		for _, n := range layer {
			n.tempData = nil
		}
	}
}

// PartialPassNodes bundles the consolidated nodes of a BDD together with
// the still-open children reachable from some consolidated parent's arc,
// for running a pass over an in-construction diagram (spec.md §4.2
// "partial pass").
type PartialPassNodes struct {
	Consolidated []*Node
	Open         []*Node
}

// RunPartialPass runs a top-down pass over a diagram that is still under
// construction: frontier nodes reachable only as open children get
// scratch too, seeded from InitVal, so the engine can read accumulated
// values mid-construction (used by pass-value-based mergers).
func RunPartialPass(consolidatedLayers [][]*Node, open []*Node, layerToVar []int, spec PassSpec) map[*Node]any {
	s := &scratch{byNode: make(map[*Node]any)}
	for _, layer := range consolidatedLayers {
		for _, n := range layer {
			n.tempData = s
			s.byNode[n] = spec.InitVal()
		}
	}
	for _, n := range open {
		n.tempData = s
		s.byNode[n] = spec.InitVal()
	}

	if len(consolidatedLayers) == 0 {
		return s.byNode
	}
	root := firstNode(consolidatedLayers)
	if root == nil {
		return s.byNode
	}
	s.byNode[root] = spec.StartVal()
	for layer, nodes := range consolidatedLayers {
		variable := -1
		if layer < len(layerToVar) {
			variable = layerToVar[layer]
		}
		for _, parent := range nodes {
			runArcsTopDown(s, parent, layer, variable, spec)
		}
	}
	return s.byNode
}

func firstNode(layers [][]*Node) *Node {
	for _, l := range layers {
		if len(l) > 0 {
			return l[0]
		}
	}
	return nil
}

// DeepCleanUp releases scratch from both consolidated and open nodes
// after a partial pass.
func DeepCleanUp(consolidatedLayers [][]*Node, open []*Node) {
	for _, layer := range consolidatedLayers {
		for _, n := range layer {
			n.tempData = nil
		}
	}
	for _, n := range open {
		n.tempData = nil
	}
}

// MinDistanceApply builds the "min-distance-to-point" pass spec (spec.md
// §4.2): Manhattan (L1) if euclidean is false, squared Euclidean (L2^2)
// otherwise.
func MinDistanceApply(point []float64, euclidean bool) PassSpec {
	return PassSpec{
		StartVal: func() any { return 0.0 },
		InitVal:  func() any { return float64(1 << 62) },
		Apply: func(_, variable int, val Val, sourceVal, targetVal any, _, _ *Node) any {
			v := float64(val)
			p := point[variable]
			var d float64
			if euclidean {
				d = (p - v) * (p - v)
			} else {
				d = abs(p - v)
			}
			cand := sourceVal.(float64) + d
			if cand < targetVal.(float64) {
				return cand
			}
			return targetVal
		},
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
