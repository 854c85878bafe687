package bdd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctjandra/ddopt-cut/bdd"
)

// chainBDD builds a trivial 2-variable chain root -> mid -> terminal with
// only 1-arcs, useful as scaffolding for structural tests.
func chainBDD(t *testing.T) (*bdd.BDD, *bdd.Node, *bdd.Node, *bdd.Node) {
	t.Helper()
	b := bdd.NewBDD(2, []int{0, 1})
	root := b.CreateNode(0)
	mid := b.CreateNode(1)
	term := b.CreateNode(2)
	b.AssignArc(root, mid, bdd.One)
	b.AssignArc(mid, term, bdd.One)
	ok, msg := b.IntegrityCheck()
	require.True(t, ok, msg)
	return b, root, mid, term
}

func TestAssignArcUpdatesBothEndpoints(t *testing.T) {
	_, root, mid, _ := chainBDD(t)
	assert.Equal(t, mid, root.OneArc)
	assert.Contains(t, mid.OneAncestors, root)
}

func TestAssignArcOverExistingDetachesFirst(t *testing.T) {
	b := bdd.NewBDD(2, []int{0, 1})
	root := b.CreateNode(0)
	a := b.CreateNode(1)
	c := b.CreateNode(1)
	term := b.CreateNode(2)
	b.AssignArc(a, term, bdd.One)
	b.AssignArc(c, term, bdd.One)
	b.AssignArc(root, a, bdd.One)
	b.AssignArc(root, c, bdd.One) // reassign root's 1-arc away from a
	assert.Equal(t, c, root.OneArc)
	assert.NotContains(t, a.ZeroAncestors, root)
	assert.NotContains(t, a.OneAncestors, root)
}

func TestDetachArc(t *testing.T) {
	b, root, mid, _ := chainBDD(t)
	b.DetachArc(root, bdd.One)
	assert.Nil(t, root.OneArc)
	assert.NotContains(t, mid.OneAncestors, root)
}

func TestRemoveNodeShiftsIDs(t *testing.T) {
	b := bdd.NewBDD(2, []int{0, 1})
	root := b.CreateNode(0)
	n0 := b.CreateNode(1)
	n1 := b.CreateNode(1)
	n2 := b.CreateNode(1)
	term := b.CreateNode(2)
	b.AssignArc(root, n0, bdd.Zero)
	b.AssignArc(root, n1, bdd.One)
	for _, n := range []*bdd.Node{n0, n1, n2} {
		b.AssignArc(n, term, bdd.One)
	}
	require.Equal(t, 0, n0.ID)
	require.Equal(t, 1, n1.ID)
	require.Equal(t, 2, n2.ID)

	b.RemoveNode(n0)

	assert.Equal(t, 0, n1.ID)
	assert.Equal(t, 1, n2.ID)
	assert.Nil(t, root.ZeroArc)
	assert.Len(t, b.Layers[1], 2)
}

func TestMergeNodesRequiresIdenticalArcs(t *testing.T) {
	b := bdd.NewBDD(2, []int{0, 1})
	a := b.CreateNode(1)
	other := b.CreateNode(1)
	term := b.CreateNode(2)
	b.AssignArc(a, term, bdd.One)
	// other has no outgoing arcs at all: arcs differ, must panic.
	assert.Panics(t, func() { b.MergeNodes(a, other) })
}

func TestMergeNodesMovesParents(t *testing.T) {
	b := bdd.NewBDD(2, []int{0, 1})
	root1 := b.CreateNode(0)
	_ = root1
	a := b.CreateNode(1)
	other := b.CreateNode(1)
	term := b.CreateNode(2)
	b.AssignArc(a, term, bdd.One)
	b.AssignArc(other, term, bdd.One)

	p1 := b.CreateNode(0)
	_ = p1
	b.AssignArc(p1, other, bdd.One)

	b.MergeNodes(a, other)

	assert.Contains(t, a.OneAncestors, p1)
	assert.Equal(t, a, p1.OneArc)
	// other should have been removed from its layer.
	for _, n := range b.Layers[1] {
		assert.NotEqual(t, other, n)
	}
}

func TestDuplicateNodeCopiesChildrenNotParents(t *testing.T) {
	b, root, mid, term := chainBDD(t)
	peer := b.DuplicateNode(mid)
	assert.Equal(t, term, peer.OneArc)
	assert.Contains(t, term.OneAncestors, peer)
	assert.NotContains(t, peer.OneAncestors, root)
	assert.Empty(t, peer.ZeroAncestors)
	assert.Empty(t, peer.OneAncestors)
}

func TestRemoveChildlessNodesCascades(t *testing.T) {
	b := bdd.NewBDD(3, []int{0, 1, 2})
	root := b.CreateNode(0)
	a := b.CreateNode(1)
	deadEnd := b.CreateNode(2) // will have no children
	term := b.CreateNode(3)
	b.AssignArc(root, a, bdd.One)
	b.AssignArc(a, deadEnd, bdd.One)
	_ = term

	b.RemoveChildlessNodes()

	// a became childless once deadEnd was removed, so it should be gone too.
	assert.Empty(t, b.Layers[1])
	assert.Empty(t, b.Layers[2])
	assert.Nil(t, root.OneArc)
}

func TestIntegrityCheckCatchesMissingParent(t *testing.T) {
	b := bdd.NewBDD(2, []int{0, 1})
	root := b.CreateNode(0)
	a := b.CreateNode(1)
	stray := b.CreateNode(1)
	term := b.CreateNode(2)
	b.AssignArc(root, a, bdd.One)
	b.AssignArc(a, term, bdd.One)
	b.AssignArc(stray, term, bdd.One) // stray has an outgoing arc but no parent

	ok, msg := b.IntegrityCheck()
	assert.False(t, ok)
	assert.Contains(t, msg, "no parent")
}

func TestLongArcsDisabledRejectsSkip(t *testing.T) {
	b := bdd.NewBDD(3, []int{0, 1, 2})
	root := b.CreateNode(0)
	term := b.CreateNode(3)
	assert.Panics(t, func() { b.AssignArc(root, term, bdd.One) })
}

func TestLongArcsEnabledAllowsSkip(t *testing.T) {
	b := bdd.NewBDD(3, []int{0, 1, 2})
	b.LongArcsEnabled = true
	root := b.CreateNode(0)
	term := b.CreateNode(3)
	assert.NotPanics(t, func() { b.AssignArc(root, term, bdd.One) })
	assert.Equal(t, term, root.OneArc)
}
