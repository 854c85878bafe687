// Package bdd implements the layered BDD graph (spec component C2), its
// top-down/bottom-up pass framework (C3), and the path/property kernels
// built on top of it (C4). The package owns every Node it contains; a Node
// owns its problem State and NodeData, and ancestor lists are weak
// back-references only (spec.md §3 "Ownership").
package bdd

// openPos is the layer/id sentinel for a node that has been created as
// someone's child but not yet consolidated into a layer (spec.md §3).
const openPos = -1

// Val is an arc label: the 0-arc or the 1-arc of a binary decision.
type Val int

const (
	Zero Val = 0
	One  Val = 1
)

// NodeData is per-node auxiliary user data, keyed by name and propagated
// through transition/merge by a registered DataFunc (spec.md §3 "data";
// the registered-function shape is carried over from the original's
// nodedata_pass.hpp, see SPEC_FULL.md "supplemented features").
type NodeData map[string]any

// Clone returns a shallow copy of d.
func (d NodeData) Clone() NodeData {
	if d == nil {
		return nil
	}
	out := make(NodeData, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// DataFunc is a named pass-through function evaluated during transition and
// merge. OnTransition computes the child's data from the parent's data and
// may report infeasibility (causing the engine to drop the in-arc);
// OnMerge folds two nodes' data together (min or max semantics are the
// function's own business).
type DataFunc struct {
	Name        string
	OnTransition func(parent NodeData, layer int, variable int, val Val) (NodeData, bool)
	OnMerge      func(a, b NodeData) NodeData
}

// Node is a vertex of the BDD. Nodes are owned exclusively by the BDD that
// created them (via NewOpenNode or CreateNode); callers never construct a
// Node directly.
type Node struct {
	Layer int
	ID    int

	// GlobalID is assigned once at creation time and never reused.
	GlobalID int64

	// State is the opaque, problem-owned state this node represents.
	State any

	// Data is this node's auxiliary user data.
	Data NodeData

	// LongestPath is the best objective value accumulated on any
	// root-to-this-node path, updated monotonically under merge.
	LongestPath float64

	ZeroArc *Node
	OneArc  *Node

	// ZeroAncestors / OneAncestors are weak back-references: parents
	// reached via this node's 0-arc / 1-arc, respectively.
	ZeroAncestors []*Node
	OneAncestors  []*Node

	// RelaxedNode is set true when this node is the survivor of a
	// relaxation merge (spec.md §4.3 "node-level merge").
	RelaxedNode bool

	// tempData is scratch space owned by the pass framework (bdd/pass.go).
	// It must be empty outside of a pass; IntegrityCheck verifies this.
	tempData any
}

// isOpen reports whether n has not yet been consolidated into a layer.
func (n *Node) isOpen() bool {
	return n.Layer == openPos
}

// ancestorsFor returns the ancestor slice that should record arcs of the
// given value into n.
func (n *Node) ancestorsFor(val Val) *[]*Node {
	if val == Zero {
		return &n.ZeroAncestors
	}
	return &n.OneAncestors
}

// childArc returns the outgoing arc slot for val.
func (n *Node) childArc(val Val) **Node {
	if val == Zero {
		return &n.ZeroArc
	}
	return &n.OneArc
}

// removeAncestor removes one occurrence of p from n's ancestor list for
// val, preserving order of the rest (order is otherwise immaterial, but
// stable removal keeps IntegrityCheck diagnostics reproducible).
func removeAncestor(list *[]*Node, p *Node) {
	s := *list
	for i, a := range s {
		if a == p {
			*list = append(s[:i], s[i+1:]...)
			return
		}
	}
}
