package bdd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ctjandra/ddopt-cut/bdd"
)

func TestCenterBoundsInZeroOne(t *testing.T) {
	b, _, _, _, _ := diamondBDD(t)
	center := bdd.Center(b)
	require := assert.New(t)
	for _, c := range center {
		require.GreaterOrEqual(c, 0.0)
		require.LessOrEqual(c, 1.0)
	}
}

func TestCenterUniformDiamondIsOneHalf(t *testing.T) {
	b, _, _, _, _ := diamondBDD(t)
	center := bdd.Center(b)
	// Two equally-weighted root-terminal paths, one taking the 1-arc at
	// layer 0 and the other at layer 1: each layer's one-fraction is 1/2.
	assert.InDelta(t, 0.5, center[0], 1e-9)
	assert.InDelta(t, 0.5, center[1], 1e-9)
}

func TestCenterEmptyBDDIsZero(t *testing.T) {
	b := bdd.NewBDD(2, []int{0, 1})
	center := bdd.Center(b)
	assert.Equal(t, []float64{0, 0}, center)
}

// diamondBDD has exactly two root-terminal paths, (0,1) and (1,0); a point
// exactly matching one of them has zero distance to it and must win
// unambiguously over the other.
func TestApproximateCenterReturnsTheExactlyMatchingPath(t *testing.T) {
	b, _, _, _, _ := diamondBDD(t)
	assert.Equal(t, []float64{0, 1}, bdd.ApproximateCenter(b, []float64{0, 1}))
	assert.Equal(t, []float64{1, 0}, bdd.ApproximateCenter(b, []float64{1, 0}))
}

func TestApproximateCenterOfEmptyBDDIsZero(t *testing.T) {
	b := bdd.NewBDD(2, []int{0, 1})
	assert.Equal(t, []float64{0, 0}, bdd.ApproximateCenter(b, []float64{0.5, 0.5}))
}
