package cut

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/ctjandra/ddopt-cut/bdd"
	"github.com/ctjandra/ddopt-cut/internal/arith"
)

// PerturbationOptions configures the optional re-solve step that pushes a
// polar-optimal face solution to an extreme point of the polar polytope
// (spec.md §4.7; SPEC_FULL.md's resolved open question on snap-to-zero).
type PerturbationOptions struct {
	// Iterative re-fixes the LP's optimal objective value as a
	// constraint, then re-solves once per coordinate, maximizing that
	// coordinate alone and freezing it before moving to the next.
	Iterative bool
	// Random re-fixes the optimal objective value as a constraint and
	// re-solves once with every coefficient perturbed by a small random
	// amount whose sign matches (x - interiorPoint)'s sign.
	Random bool
	Rng    *rand.Rand

	// SnapToZero is the magnitude below which a solved u_k coefficient is
	// rounded to exactly 0 (SPEC_FULL.md: default 1e-9, arith.DefaultEpsilon).
	SnapToZero float64
}

// nodeVar indexes the free variable v[layer][id] assigned to bdd node n in
// the polar LP's variable ordering.
type nodeVar struct {
	layer, id int
}

// targetCutModel is the polar separation LP of spec.md §4.7 in row form,
// assembled once per BDD from its arc structure and interior point and
// re-solved with different objectives (and, during perturbation, extra
// equality rows) without rebuilding the arc rows each time:
//
//	max  sum_i u_i (x_i - interior_i)
//	s.t. v[child] - v[parent]        <= 0   for every 0-arc (parent, child)
//	     v[child] - v[parent] + u_i  <= 0   for every 1-arc (parent, child), i = parent's layer index
//	     v[root] = 1 + u . interior
//	     v[terminal] = 0
//	     u, v free
//
// gonum's lp.Simplex only accepts standard form (minimize, equalities,
// nonnegative variables), so every free variable is split into a
// nonnegative plus/minus pair and every <= row gets a nonnegative slack.
// Variable layout: [u+_0..u+_{n-1}, u-_0..u-_{n-1}, v+_0..v+_{numNodes-1}, v-_0..v-_{numNodes-1}, slacks...]
type targetCutModel struct {
	n, numNodes, numVars int
	interiorPoint        []float64

	// rows/bVec are the base equality constraints (arc rows plus the
	// root/terminal rows); solve appends any extra rows on top.
	rows [][]float64
	bVec []float64
}

func (m *targetCutModel) uPlus(i int) int   { return i }
func (m *targetCutModel) uMinus(i int) int  { return m.n + i }
func (m *targetCutModel) vPlus(idx int) int { return 2*m.n + idx }
func (m *targetCutModel) vMinus(idx int) int {
	return 2*m.n + m.numNodes + idx
}

// buildTargetCutModel assembles the arc-row and root/terminal-row
// constraints of the polar LP once; interiorPoint is fixed for the life of
// the model (only the objective and extra freezing rows vary across a
// perturbation re-solve sequence).
func buildTargetCutModel(b *bdd.BDD, interiorPoint []float64) (*targetCutModel, bool) {
	n := b.NumVars

	type arcRow struct {
		parent, child nodeVar
		withU         int // -1 if this is a 0-arc row, else the u index (== parent's layer index)
	}
	nodeIndex := map[*bdd.Node]int{}
	posOf := map[nodeVar]int{}
	var nodeOrder []nodeVar
	for layer := 0; layer <= n; layer++ {
		for id, nd := range b.Layers[layer] {
			nv := nodeVar{layer: layer, id: id}
			nodeIndex[nd] = len(nodeOrder)
			posOf[nv] = len(nodeOrder)
			nodeOrder = append(nodeOrder, nv)
		}
	}
	numNodes := len(nodeOrder)

	var arcRows []arcRow
	for layer := 0; layer < n; layer++ {
		for _, parent := range b.Layers[layer] {
			if parent.ZeroArc != nil {
				arcRows = append(arcRows, arcRow{
					parent: nodeVar{layer, parent.ID},
					child:  nodeVar{parent.ZeroArc.Layer, parent.ZeroArc.ID},
					withU:  -1,
				})
			}
			if parent.OneArc != nil {
				arcRows = append(arcRows, arcRow{
					parent: nodeVar{layer, parent.ID},
					child:  nodeVar{parent.OneArc.Layer, parent.OneArc.ID},
					withU:  layer,
				})
			}
		}
	}

	root := b.Root()
	term := b.Terminal()
	if root == nil || term == nil {
		return nil, false
	}
	rootIdx := nodeIndex[root]
	termIdx := nodeIndex[term]

	m := &targetCutModel{
		n:             n,
		numNodes:      numNodes,
		numVars:       2*n + 2*numNodes + len(arcRows),
		interiorPoint: interiorPoint,
	}
	nodePos := func(nv nodeVar) int { return posOf[nv] }

	for rowIdx, ar := range arcRows {
		row := make([]float64, m.numVars)
		ci, pi := nodePos(ar.child), nodePos(ar.parent)
		row[m.vPlus(ci)] += 1
		row[m.vMinus(ci)] -= 1
		row[m.vPlus(pi)] -= 1
		row[m.vMinus(pi)] += 1
		if ar.withU >= 0 {
			row[m.uPlus(ar.withU)] += 1
			row[m.uMinus(ar.withU)] -= 1
		}
		row[2*n+2*numNodes+rowIdx] = 1 // this row's own slack
		m.rows = append(m.rows, row)
		m.bVec = append(m.bVec, 0)
	}

	rootRow := make([]float64, m.numVars)
	for i := 0; i < n; i++ {
		rootRow[m.uPlus(i)] -= interiorPoint[i]
		rootRow[m.uMinus(i)] += interiorPoint[i]
	}
	rootRow[m.vPlus(rootIdx)] += 1
	rootRow[m.vMinus(rootIdx)] -= 1
	m.rows = append(m.rows, rootRow)
	m.bVec = append(m.bVec, 1)

	termRow := make([]float64, m.numVars)
	termRow[m.vPlus(termIdx)] += 1
	termRow[m.vMinus(termIdx)] -= 1
	m.rows = append(m.rows, termRow)
	m.bVec = append(m.bVec, 0)

	return m, true
}

// objective builds the minimize-form objective vector for maximizing
// sum_i u_i*(x_i - interiorPoint_i).
func (m *targetCutModel) objective(x []float64) []float64 {
	c := make([]float64, m.numVars)
	for i := 0; i < m.n; i++ {
		w := x[i] - m.interiorPoint[i]
		c[m.uPlus(i)] = -w
		c[m.uMinus(i)] = w
	}
	return c
}

// solve runs lp.Simplex over the model's base rows plus any extra equality
// rows, returning the raw variable solution and its objective value.
func (m *targetCutModel) solve(c []float64, extraRows [][]float64, extraB []float64) (solution []float64, z float64, ok bool) {
	numEqs := len(m.rows) + len(extraRows)
	A := mat.NewDense(numEqs, m.numVars, nil)
	bVec := make([]float64, numEqs)
	for i, row := range m.rows {
		for j, v := range row {
			if v != 0 {
				A.Set(i, j, v)
			}
		}
		bVec[i] = m.bVec[i]
	}
	for i, row := range extraRows {
		for j, v := range row {
			if v != 0 {
				A.Set(len(m.rows)+i, j, v)
			}
		}
		bVec[len(m.rows)+i] = extraB[i]
	}

	z, solution, err := lp.Simplex(c, A, bVec, 0, nil)
	if err != nil {
		return nil, 0, false
	}
	return solution, z, true
}

// coeffsFromSolution extracts u = u+ - u- from a raw LP solution.
func (m *targetCutModel) coeffsFromSolution(solution []float64) []float64 {
	coeffs := make([]float64, m.n)
	for i := 0; i < m.n; i++ {
		coeffs[i] = solution[m.uPlus(i)] - solution[m.uMinus(i)]
	}
	return coeffs
}

// freezeRow builds the equality row "u_k = value", used to pin a
// coordinate found by one round of iterative perturbation before the next.
func (m *targetCutModel) freezeRow(k int, value float64) ([]float64, float64) {
	row := make([]float64, m.numVars)
	row[m.uPlus(k)] = 1
	row[m.uMinus(k)] = -1
	return row, value
}

// GenerateTargetCut separates x from interiorPoint using the BDD's
// relaxation polytope and returns the resulting facet-defining inequality
// (spec.md §4.7). ok is false if the BDD or LP is degenerate.
func GenerateTargetCut(b *bdd.BDD, x, interiorPoint []float64, perturb PerturbationOptions) (Inequality, bool) {
	model, ok := buildTargetCutModel(b, interiorPoint)
	if !ok {
		return Inequality{}, false
	}

	c := model.objective(x)
	solution, z, ok := model.solve(c, nil, nil)
	if !ok {
		return Inequality{}, false
	}
	coeffs := model.coeffsFromSolution(solution)

	threshold := perturb.SnapToZero
	if threshold == 0 {
		threshold = arith.DefaultEpsilon
	}
	for i, v := range coeffs {
		coeffs[i] = arith.SnapToZero(v, threshold)
	}

	switch {
	case perturb.Iterative:
		coeffs = perturbIterative(model, c, z, threshold)
	case perturb.Random:
		coeffs = perturbRandom(model, c, z, x, interiorPoint, coeffs, perturb.Rng, threshold)
	}

	rhs := 1.0
	for i := range coeffs {
		rhs += coeffs[i] * interiorPoint[i]
	}
	return Inequality{Coeffs: coeffs, RHS: rhs}, true
}

// perturbIterative implements spec.md §4.7's iterative perturbation: fix
// the LP's optimal objective value as a constraint, then for each
// coordinate in turn, re-solve maximizing that coordinate alone (subject
// to the fixed objective and every previously frozen coordinate), freezing
// it at the result (or 0 if the re-solve is infeasible) before moving on.
func perturbIterative(model *targetCutModel, c []float64, optimalValue float64, threshold float64) []float64 {
	extraRows := [][]float64{append([]float64(nil), c...)}
	extraB := []float64{optimalValue}

	out := make([]float64, model.n)
	for k := 0; k < model.n; k++ {
		ck := make([]float64, model.numVars)
		ck[model.uPlus(k)] = -1 // minimize -u_k == maximize u_k
		ck[model.uMinus(k)] = 1

		value := 0.0
		if solution, _, ok := model.solve(ck, extraRows, extraB); ok {
			value = solution[model.uPlus(k)] - solution[model.uMinus(k)]
		}
		value = arith.SnapToZero(value, threshold)
		out[k] = value

		row, rhs := model.freezeRow(k, value)
		extraRows = append(extraRows, row)
		extraB = append(extraB, rhs)
	}
	return out
}

// perturbRandom implements spec.md §4.7's random perturbation: fix the LP's
// optimal objective value as a constraint, perturb every coefficient of the
// original objective by a small random amount whose sign matches
// (x - interiorPoint)'s sign, and re-solve once.
func perturbRandom(model *targetCutModel, c []float64, optimalValue float64, x, interiorPoint, fallback []float64, rng *rand.Rand, threshold float64) []float64 {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	objRow := append([]float64(nil), c...)

	perturbed := append([]float64(nil), c...)
	for i := 0; i < model.n; i++ {
		w := x[i] - interiorPoint[i]
		if w == 0 {
			continue
		}
		sign := 1.0
		if w < 0 {
			sign = -1.0
		}
		delta := sign * rng.Float64() * threshold * 10
		perturbed[model.uPlus(i)] -= delta
		perturbed[model.uMinus(i)] += delta
	}

	solution, _, ok := model.solve(perturbed, [][]float64{objRow}, []float64{optimalValue})
	if !ok {
		return fallback
	}
	out := model.coeffsFromSolution(solution)
	for i := range out {
		out[i] = arith.SnapToZero(out[i], threshold)
	}
	return out
}
