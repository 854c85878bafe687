package cut_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctjandra/ddopt-cut/bdd"
	"github.com/ctjandra/ddopt-cut/cut"
)

// atMostOneBDD builds the "at most one of x1,x2,x3 is set" BDD: the
// triangle-shaped independent-set hull {(0,0,0),(1,0,0),(0,1,0),(0,0,1)},
// whose only non-trivial facet is x1+x2+x3 <= 1.
func atMostOneBDD(t *testing.T) *bdd.BDD {
	t.Helper()
	b := bdd.NewBDD(3, []int{0, 1, 2})
	root := b.CreateNode(0)
	n10 := b.CreateNode(1)
	n11 := b.CreateNode(1)
	n20 := b.CreateNode(2)
	n21 := b.CreateNode(2)
	term := b.CreateNode(3)

	b.AssignArc(root, n10, bdd.Zero)
	b.AssignArc(root, n11, bdd.One)

	b.AssignArc(n10, n20, bdd.Zero)
	b.AssignArc(n10, n21, bdd.One)
	b.AssignArc(n11, n21, bdd.Zero)
	// n11's one-arc (a second vertex already set) is infeasible and omitted.

	b.AssignArc(n20, term, bdd.Zero)
	b.AssignArc(n20, term, bdd.One)
	b.AssignArc(n21, term, bdd.Zero)
	// n21's one-arc is likewise infeasible and omitted.

	ok, msg := b.IntegrityCheck()
	require.True(t, ok, msg)
	return b
}

func TestGenerateTargetCutFindsSimplexFacet(t *testing.T) {
	b := atMostOneBDD(t)
	x := []float64{1, 1, 1}
	interior := []float64{0.25, 0.25, 0.25} // centroid of the hull's 4 vertices

	ineq, ok := cut.GenerateTargetCut(b, x, interior, cut.PerturbationOptions{})
	require.True(t, ok)

	assert.Greater(t, ineq.Violation(x), 0.0)
	// Every hull vertex lies on or inside the found facet.
	for _, v := range [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		assert.LessOrEqual(t, ineq.Violation(v), 1e-6)
	}
	// (1,0,0), (0,1,0), (0,0,1) lie exactly on the facet x1+x2+x3<=1.
	assert.InDelta(t, 0.0, ineq.Violation([]float64{1, 0, 0}), 1e-6)
	assert.InDelta(t, 0.0, ineq.Violation([]float64{0, 1, 0}), 1e-6)
	assert.InDelta(t, 0.0, ineq.Violation([]float64{0, 0, 1}), 1e-6)
}

// On atMostOneBDD, the polar LP's optimum for x=(1,1,1) against the
// centroid interior point is the unique point u=(4,4,4) (spec.md §4.7's
// facet x1+x2+x3<=1 scaled by the centroid distance): fixing the optimal
// objective value as a constraint leaves exactly that one feasible point,
// so every perturbation variant must reproduce it exactly.
func TestGenerateTargetCutIterativePerturbationReproducesUniqueOptimum(t *testing.T) {
	b := atMostOneBDD(t)
	x := []float64{1, 1, 1}
	interior := []float64{0.25, 0.25, 0.25}

	ineq, ok := cut.GenerateTargetCut(b, x, interior, cut.PerturbationOptions{Iterative: true})
	require.True(t, ok)

	for i, want := range []float64{4, 4, 4} {
		assert.InDelta(t, want, ineq.Coeffs[i], 1e-6)
	}
	assert.InDelta(t, 4.0, ineq.RHS, 1e-6)
}

func TestGenerateTargetCutRandomPerturbationReproducesUniqueOptimum(t *testing.T) {
	b := atMostOneBDD(t)
	x := []float64{1, 1, 1}
	interior := []float64{0.25, 0.25, 0.25}

	ineq, ok := cut.GenerateTargetCut(b, x, interior, cut.PerturbationOptions{
		Random: true,
		Rng:    rand.New(rand.NewSource(7)),
	})
	require.True(t, ok)

	for i, want := range []float64{4, 4, 4} {
		assert.InDelta(t, want, ineq.Coeffs[i], 1e-6)
	}
	assert.InDelta(t, 4.0, ineq.RHS, 1e-6)
}

// TestGenerateTargetCutPerturbationStaysOnOptimalFace checks that the
// un-perturbed, iterative and random variants all cut x off by the same
// amount: a perturbed re-solve keeps the optimal objective value fixed, so
// it must not lose any of the un-perturbed cut's violation of x.
func TestGenerateTargetCutPerturbationStaysOnOptimalFace(t *testing.T) {
	b := atMostOneBDD(t)
	x := []float64{1, 1, 1}
	interior := []float64{0.25, 0.25, 0.25}

	base, ok := cut.GenerateTargetCut(b, x, interior, cut.PerturbationOptions{})
	require.True(t, ok)
	iterative, ok := cut.GenerateTargetCut(b, x, interior, cut.PerturbationOptions{Iterative: true})
	require.True(t, ok)
	random, ok := cut.GenerateTargetCut(b, x, interior, cut.PerturbationOptions{Random: true, Rng: rand.New(rand.NewSource(3))})
	require.True(t, ok)

	for _, ineq := range []cut.Inequality{base, iterative, random} {
		assert.InDelta(t, base.Violation(x), ineq.Violation(x), 1e-6)
	}
}
