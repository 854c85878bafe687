package bdd

import "fmt"

// BDD is an ordered sequence of layers L0..Ln (spec.md §3). L0 has exactly
// one node (the root); once construction finishes, Ln has exactly one node
// (the terminal). The BDD exclusively owns every Node it contains.
type BDD struct {
	// NumVars is n, the number of problem variables (and layers beyond
	// the root).
	NumVars int

	// Layers[k] holds the consolidated nodes of layer k, indexed by id.
	Layers [][]*Node

	// LayerToVar[k] is the problem variable decided at layer k;
	// VarToLayer is its inverse (spec.md §3 "round trip: layer<->var").
	LayerToVar []int
	VarToLayer []int

	// LongArcsEnabled allows an arc to jump past layer+1, representing a
	// run of implicit zeros (spec.md §3, §9 "long arcs").
	LongArcsEnabled bool

	// Bound is the terminal's LongestPath once construction has finished.
	Bound float64

	// DataFuncs is the ordered list of registered per-node data passes
	// (spec.md §3 "data"; SPEC_FULL.md "NodeData pass-through typing").
	DataFuncs []DataFunc

	nextGlobalID int64
}

// NewBDD allocates an empty BDD shell for a problem with the given number
// of variables and static layer/variable mapping. Layers are populated by
// the construction engine (solver package) via NewOpenNode/Consolidate.
func NewBDD(numVars int, layerToVar []int) *BDD {
	if len(layerToVar) != numVars {
		panic("bdd: layerToVar must have length numVars")
	}
	varToLayer := make([]int, numVars)
	for layer, v := range layerToVar {
		varToLayer[v] = layer
	}
	return &BDD{
		NumVars:    numVars,
		Layers:     make([][]*Node, numVars+1),
		LayerToVar: append([]int(nil), layerToVar...),
		VarToLayer: varToLayer,
	}
}

// Root returns the single node of layer 0, or nil if construction has not
// consolidated a root yet.
func (b *BDD) Root() *Node {
	if len(b.Layers[0]) == 0 {
		return nil
	}
	return b.Layers[0][0]
}

// Terminal returns the single node of the last layer, or nil if
// construction has not completed.
func (b *BDD) Terminal() *Node {
	last := b.Layers[b.NumVars]
	if len(last) == 0 {
		return nil
	}
	return last[0]
}

// NewOpenNode creates a fresh node not yet attached to any layer (the
// "open" state of spec.md §3, layer = id = -1). Used by the construction
// engine for tentative children awaiting width control and consolidation.
func (b *BDD) NewOpenNode(state any) *Node {
	n := &Node{
		Layer:    openPos,
		ID:       openPos,
		GlobalID: b.nextGlobalID,
		State:    state,
		Data:     NodeData{},
	}
	b.nextGlobalID++
	return n
}

// Consolidate assigns n a permanent position in layer, appending it to the
// layer's node vector. n must currently be open.
func (b *BDD) Consolidate(n *Node, layer int) {
	if !n.isOpen() {
		panic("bdd: consolidating a node that already has a layer/id")
	}
	n.Layer = layer
	n.ID = len(b.Layers[layer])
	b.Layers[layer] = append(b.Layers[layer], n)
}

// CreateNode appends a fresh, arc-less, already-consolidated node to
// layer. Used by post-construction structural edits, not by the
// construction engine's frontier (which goes through NewOpenNode).
func (b *BDD) CreateNode(layer int) *Node {
	n := b.NewOpenNode(nil)
	n.Data = NodeData{}
	b.Consolidate(n, layer)
	return n
}

// DuplicateNode creates a peer of n in the same layer with identical
// children (the children's ancestor lists are updated to include the
// peer); n's parents are not copied onto the peer.
func (b *BDD) DuplicateNode(n *Node) *Node {
	peer := b.CreateNode(n.Layer)
	peer.State = n.State
	peer.Data = n.Data.Clone()
	peer.LongestPath = n.LongestPath
	peer.RelaxedNode = n.RelaxedNode
	if n.ZeroArc != nil {
		b.AssignArc(peer, n.ZeroArc, Zero)
	}
	if n.OneArc != nil {
		b.AssignArc(peer, n.OneArc, One)
	}
	return peer
}

// AssignArc is the only sanctioned way to set an outgoing arc; it updates
// both the source's arc field and the child's ancestor list. Assigning
// over an existing arc first detaches it (spec.md §4.1).
func (b *BDD) AssignArc(src *Node, child *Node, val Val) {
	if *src.childArc(val) != nil {
		b.DetachArc(src, val)
	}
	if !b.LongArcsEnabled && !src.isOpen() && !child.isOpen() && child.Layer != src.Layer+1 {
		panic("bdd: long arcs are disabled but arc does not target layer+1")
	}
	*src.childArc(val) = child
	list := child.ancestorsFor(val)
	*list = append(*list, src)
}

// DetachArc removes src's outgoing arc of value val, if any, restoring
// both endpoints to their arc-less state for that value.
func (b *BDD) DetachArc(src *Node, val Val) {
	child := *src.childArc(val)
	if child == nil {
		return
	}
	*src.childArc(val) = nil
	removeAncestor(child.ancestorsFor(val), src)
}

// RemoveNode detaches both outgoing arcs, severs every incoming reference
// (parents' corresponding arc becomes nil), and shifts the remaining
// layer nodes left to preserve the id-indexing invariant.
func (b *BDD) RemoveNode(n *Node) {
	for _, p := range append([]*Node(nil), n.ZeroAncestors...) {
		if p.ZeroArc == n {
			p.ZeroArc = nil
		}
	}
	for _, p := range append([]*Node(nil), n.OneAncestors...) {
		if p.OneArc == n {
			p.OneArc = nil
		}
	}
	n.ZeroAncestors = nil
	n.OneAncestors = nil
	b.DetachArc(n, Zero)
	b.DetachArc(n, One)

	if n.isOpen() {
		return
	}
	layer := b.Layers[n.Layer]
	idx := n.ID
	b.Layers[n.Layer] = append(layer[:idx], layer[idx+1:]...)
	for i := idx; i < len(b.Layers[n.Layer]); i++ {
		b.Layers[n.Layer][i].ID = i
	}
	n.Layer = openPos
	n.ID = openPos
}

// ApplyDataFuncs folds every registered DataFunc's OnTransition over
// parentData in registration order, producing the tentative NodeDataMap
// for a child reached by deciding variable to val at layer (spec.md §4.3
// step 5 "Create tentative NodeDataMap via the existing data's
// transition"). ok is false if some DataFunc reports the transition
// infeasible, in which case the caller must drop the arc.
func (b *BDD) ApplyDataFuncs(parentData NodeData, layer, variable int, val Val) (NodeData, bool) {
	data := parentData
	for _, f := range b.DataFuncs {
		if f.OnTransition == nil {
			continue
		}
		next, ok := f.OnTransition(data, layer, variable, val)
		if !ok {
			return nil, false
		}
		data = next
	}
	return data, true
}

// MergeNodeData folds otherData into a's data using every registered
// DataFunc's OnMerge (spec.md §4.3 "merge its data"). Exported so both the
// construction engine's exact-state dedup branch and MergeOpenNodes's
// relaxation merge can fold data without duplicating the fold loop; unlike
// MergeOpenNodes, an exact dedup must not set RelaxedNode.
func (b *BDD) MergeNodeData(a *Node, otherData NodeData) {
	for _, f := range b.DataFuncs {
		if f.OnMerge == nil {
			continue
		}
		a.Data = f.OnMerge(a.Data, otherData)
	}
}

// MergeOpenNodes is the node-level merge operation the construction-time
// mergers call (spec.md §4.3 "node-level merge"): it merges the state
// (unless skipStateMerge), pulls other's parents onto a, takes the max of
// LongestPath, merges data, and marks a as relaxed. Precondition: neither
// node has outgoing arcs yet.
func (b *BDD) MergeOpenNodes(a, other *Node, stateMerge func(a, other any) any, skipStateMerge bool) {
	if a.ZeroArc != nil || a.OneArc != nil || other.ZeroArc != nil || other.OneArc != nil {
		panic("bdd: MergeOpenNodes precondition violated: a node already has outgoing arcs")
	}
	if !skipStateMerge && stateMerge != nil {
		a.State = stateMerge(a.State, other.State)
	}
	for _, p := range other.ZeroAncestors {
		if p.ZeroArc == other {
			p.ZeroArc = a
		}
		a.ZeroAncestors = append(a.ZeroAncestors, p)
	}
	for _, p := range other.OneAncestors {
		if p.OneArc == other {
			p.OneArc = a
		}
		a.OneAncestors = append(a.OneAncestors, p)
	}
	other.ZeroAncestors = nil
	other.OneAncestors = nil
	if other.LongestPath > a.LongestPath {
		a.LongestPath = other.LongestPath
	}
	b.MergeNodeData(a, other.Data)
	a.RelaxedNode = true
}

// MergeNodes is the post-construction structural utility (spec.md §4.1):
// precondition a and b are in the same layer with the same pair of
// outgoing arcs. Every parent of b is moved onto a, b's outgoing arcs are
// detached, and b is removed and freed. This ignores states entirely and
// is not the same operation as MergeOpenNodes.
func (b *BDD) MergeNodes(a, other *Node) {
	if a.Layer != other.Layer {
		panic("bdd: MergeNodes requires nodes in the same layer")
	}
	if a.ZeroArc != other.ZeroArc || a.OneArc != other.OneArc {
		panic("bdd: MergeNodes requires identical outgoing arcs")
	}
	for _, p := range append([]*Node(nil), other.ZeroAncestors...) {
		if p.ZeroArc == other {
			p.ZeroArc = a
			a.ZeroAncestors = append(a.ZeroAncestors, p)
		}
	}
	for _, p := range append([]*Node(nil), other.OneAncestors...) {
		if p.OneArc == other {
			p.OneArc = a
			a.OneAncestors = append(a.OneAncestors, p)
		}
	}
	other.ZeroAncestors = nil
	other.OneAncestors = nil
	b.DetachArc(other, Zero)
	b.DetachArc(other, One)
	b.RemoveNode(other)
}

// RemoveChildlessNodes iteratively removes every node of layers 1..n-1 with
// no outgoing arcs at all, cascading: removing a node may childless-orphan
// its own parents. The root and the terminal are never removed.
func (b *BDD) RemoveChildlessNodes() {
	changed := true
	for changed {
		changed = false
		for layer := b.NumVars - 1; layer >= 1; layer-- {
			for i := 0; i < len(b.Layers[layer]); i++ {
				n := b.Layers[layer][i]
				if n.ZeroArc == nil && n.OneArc == nil {
					b.RemoveNode(n)
					changed = true
					i--
				}
			}
		}
	}
}

// RemoveParentlessNodes iteratively removes every node of layers 1..n-1
// with no incoming arcs at all, cascading top-down. The root and the
// terminal are never removed.
func (b *BDD) RemoveParentlessNodes() {
	changed := true
	for changed {
		changed = false
		for layer := 1; layer < b.NumVars; layer++ {
			for i := 0; i < len(b.Layers[layer]); i++ {
				n := b.Layers[layer][i]
				if len(n.ZeroAncestors) == 0 && len(n.OneAncestors) == 0 {
					b.RemoveNode(n)
					changed = true
					i--
				}
			}
		}
	}
}

// RemovePathlessNodes removes every node that lies on no root-to-terminal
// path at all, by alternating the two cascades to a fixpoint.
func (b *BDD) RemovePathlessNodes() {
	for {
		before := b.nodeCount()
		b.RemoveParentlessNodes()
		b.RemoveChildlessNodes()
		if b.nodeCount() == before {
			return
		}
	}
}

func (b *BDD) nodeCount() int {
	total := 0
	for _, l := range b.Layers {
		total += len(l)
	}
	return total
}

// IntegrityCheck verifies the structural invariants of spec.md §8 and
// returns false with a diagnostic on the first violation found.
func (b *BDD) IntegrityCheck() (bool, string) {
	for layer, nodes := range b.Layers {
		for id, n := range nodes {
			if n.Layer != layer || n.ID != id {
				return false, fmt.Sprintf("index-layer violation at layer %d id %d: node reports layer %d id %d", layer, id, n.Layer, n.ID)
			}
			if n.tempData != nil {
				return false, fmt.Sprintf("scratch not empty at layer %d id %d", layer, id)
			}
			if layer > 0 && len(n.ZeroAncestors)+len(n.OneAncestors) == 0 {
				return false, fmt.Sprintf("non-root node at layer %d id %d has no parent", layer, id)
			}
			if layer < b.NumVars && n.ZeroArc == nil && n.OneArc == nil {
				return false, fmt.Sprintf("non-terminal node at layer %d id %d has no child", layer, id)
			}
			if n.ZeroArc != nil {
				found := false
				for _, p := range n.ZeroArc.ZeroAncestors {
					if p == n {
						found = true
						break
					}
				}
				if !found {
					return false, fmt.Sprintf("two-way arc violation: layer %d id %d has 0-arc child not listing it as 0-ancestor", layer, id)
				}
			}
			if n.OneArc != nil {
				found := false
				for _, p := range n.OneArc.OneAncestors {
					if p == n {
						found = true
						break
					}
				}
				if !found {
					return false, fmt.Sprintf("two-way arc violation: layer %d id %d has 1-arc child not listing it as 1-ancestor", layer, id)
				}
			}
		}
	}
	return true, ""
}
