package bdd_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctjandra/ddopt-cut/bdd"
)

func TestLongestPathDiamondUnitWeights(t *testing.T) {
	// The 2-variable diamond, whose paths (0,1) and (1,0) each set exactly
	// one variable: with weights (1,1) the bound should be 1.
	b, root, a, bb, term := diamondBDD(t)
	_ = a
	_ = bb
	w := bdd.ArcWeights{Zero: []float64{0, 0}, One: []float64{1, 1}}
	path, val := bdd.LongestPath(b, w, true, false)
	assert.Equal(t, 1.0, val)
	assert.True(t, bdd.VerifyPathValue(path, w, val, 1e-9))
	_ = root
	_ = term
}

func TestLongestPathUnreachableReturnsWorst(t *testing.T) {
	b := bdd.NewBDD(1, []int{0})
	_, val := bdd.LongestPath(b, bdd.ArcWeights{Zero: []float64{0}, One: []float64{1}}, true, false)
	assert.True(t, math.IsInf(val, -1))
}

func TestLongestPathIgnoreRelaxedNodes(t *testing.T) {
	b := bdd.NewBDD(2, []int{0, 1})
	root := b.CreateNode(0)
	relaxed := b.CreateNode(1)
	relaxed.RelaxedNode = true
	term := b.CreateNode(2)
	b.AssignArc(root, relaxed, bdd.One)
	b.AssignArc(relaxed, term, bdd.One)
	ok, msg := b.IntegrityCheck()
	require.True(t, ok, msg)

	w := bdd.ArcWeights{Zero: []float64{0, 0}, One: []float64{1, 1}}
	_, val := bdd.LongestPath(b, w, true, true)
	assert.True(t, math.IsInf(val, -1))
}

func TestDetectFixedVariablesAllOneArcsMeansFixedOne(t *testing.T) {
	b := bdd.NewBDD(1, []int{0})
	root := b.CreateNode(0)
	term := b.CreateNode(1)
	b.AssignArc(root, term, bdd.One)
	fixings := bdd.DetectFixedVariables(b)
	assert.Equal(t, bdd.FixedOne, fixings[0])
}

func TestDetectFixedVariablesMixedArcsMeansNotFixed(t *testing.T) {
	b, _, _, _, _ := diamondBDD(t)
	fixings := bdd.DetectFixedVariables(b)
	assert.Equal(t, bdd.NotFixed, fixings[0])
	assert.Equal(t, bdd.NotFixed, fixings[1])
}
