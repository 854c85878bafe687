package bdd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctjandra/ddopt-cut/bdd"
)

// diamondBDD builds root -(0)-> a -(1)-> term, root -(1)-> b -(0)-> term,
// a 2-variable diamond with both arcs reaching the terminal.
func diamondBDD(t *testing.T) (*bdd.BDD, *bdd.Node, *bdd.Node, *bdd.Node, *bdd.Node) {
	t.Helper()
	b := bdd.NewBDD(2, []int{0, 1})
	root := b.CreateNode(0)
	a := b.CreateNode(1)
	bb := b.CreateNode(1)
	term := b.CreateNode(2)
	b.AssignArc(root, a, bdd.Zero)
	b.AssignArc(root, bb, bdd.One)
	b.AssignArc(a, term, bdd.One)
	b.AssignArc(bb, term, bdd.Zero)
	ok, msg := b.IntegrityCheck()
	require.True(t, ok, msg)
	return b, root, a, bb, term
}

func TestRunPassTopDownCountsArcValueSum(t *testing.T) {
	b, root, a, bb, term := diamondBDD(t)
	spec := bdd.PassSpec{
		StartVal: func() any { return 0.0 },
		InitVal:  func() any { return 0.0 },
		Apply: func(_, _ int, val bdd.Val, sourceVal, _ any, _, _ *bdd.Node) any {
			return sourceVal.(float64) + float64(val)
		},
	}
	result := bdd.RunPass(b, bdd.TopDown, spec)
	assert.Equal(t, 0.0, result[root])
	assert.Equal(t, 0.0, result[a])  // root -0-> a
	assert.Equal(t, 1.0, result[bb]) // root -1-> b
	assert.Equal(t, 1.0, result[term])
	bdd.CleanUp(b)
	ok, msg := b.IntegrityCheck()
	assert.True(t, ok, msg)
}

func TestRunPassBottomUp(t *testing.T) {
	b, root, a, bb, term := diamondBDD(t)
	spec := bdd.PassSpec{
		StartVal: func() any { return 0.0 },
		InitVal:  func() any { return 0.0 },
		Apply: func(_, _ int, val bdd.Val, sourceVal, _ any, _, _ *bdd.Node) any {
			return sourceVal.(float64) + float64(val)
		},
	}
	result := bdd.RunPass(b, bdd.BottomUp, spec)
	assert.Equal(t, 0.0, result[term])
	assert.Equal(t, 1.0, result[a])  // a -1-> term
	assert.Equal(t, 0.0, result[bb]) // b -0-> term
	assert.Equal(t, 1.0, result[root])
}

func TestCleanUpEmptiesScratch(t *testing.T) {
	b, _, _, _, _ := diamondBDD(t)
	spec := bdd.PassSpec{
		StartVal: func() any { return 0.0 },
		InitVal:  func() any { return 0.0 },
		Apply:    func(_, _ int, _ bdd.Val, s, _ any, _, _ *bdd.Node) any { return s },
	}
	bdd.RunPass(b, bdd.TopDown, spec)
	bdd.CleanUp(b)
	ok, msg := b.IntegrityCheck()
	assert.True(t, ok, msg)
}

func TestMinDistanceApplyManhattan(t *testing.T) {
	b, _, _, _, term := diamondBDD(t)
	spec := bdd.MinDistanceApply([]float64{0.5, 0.5}, false)
	result := bdd.RunPass(b, bdd.TopDown, spec)
	// path root-0->a-1->term has distance |0.5-0|+|0.5-1| = 1.0
	// path root-1->b-0->term has distance |0.5-1|+|0.5-0| = 1.0
	assert.InDelta(t, 1.0, result[term].(float64), 1e-9)
}
