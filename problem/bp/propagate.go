package bp

import "github.com/ctjandra/ddopt-cut/internal/arith"

// varRow links a variable to one row it participates in, with its
// coefficient cached to avoid a Row.Coeff scan on every propagation step.
type varRow struct {
	row   int
	coeff float64
}

// Instance is a binary program: nvars variables, a list of rows, and a
// precomputed variable-to-rows index (spec.md §9 "supplemented features",
// the original's BPInstance).
type Instance struct {
	NumVars int
	Rows    []*Row
	varRows [][]varRow
}

// NewInstance precomputes the variable->row membership index.
func NewInstance(numVars int, rows []*Row) *Instance {
	inst := &Instance{NumVars: numVars, Rows: rows, varRows: make([][]varRow, numVars)}
	for ri, row := range rows {
		for i, v := range row.Vars {
			inst.varRows[v] = append(inst.varRows[v], varRow{row: ri, coeff: row.Coeffs[i]})
		}
	}
	return inst
}

// smallestDomain returns the only feasible domain left for var given a
// single row's current activity bounds, or DomZeroOne if both remain
// possible (spec.md §9, ported from get_smallest_domain; DBL_LT/DBL_GT
// become internal/arith.Lt/Gt so both propagation and the rest of this
// module share one tolerance regime).
func smallestDomain(row *Row, coeff float64, minAct, maxAct float64) Domain {
	switch row.Sense {
	case GE:
		if coeff < 0 {
			if arith.Lt(maxAct+coeff, row.RHS, arith.DefaultEpsilon) {
				return DomZero
			}
		} else if arith.Lt(maxAct-coeff, row.RHS, arith.DefaultEpsilon) {
			return DomOne
		}
	case LE:
		if coeff < 0 {
			if arith.Gt(minAct-coeff, row.RHS, arith.DefaultEpsilon) {
				return DomOne
			}
		} else if arith.Gt(minAct+coeff, row.RHS, arith.DefaultEpsilon) {
			return DomZero
		}
	}
	return DomZeroOne
}

// Propagate tightens domains starting from the single variable v just
// fixed, cascading through shared rows for up to maxPasses rounds
// (spec.md §9 "supplemented features": BPPropMultipass wrapping
// BPPropLinearcons). Returns false if any row becomes infeasible.
func Propagate(inst *Instance, d *Domains, v int, maxPasses int) bool {
	fixed := map[int]bool{v: true}

	for pass := 0; pass < maxPasses && len(fixed) > 0; pass++ {
		next := map[int]bool{}
		for cur := range fixed {
			if !propagateOne(inst, d, cur, next) {
				return false
			}
		}
		fixed = next
	}
	return true
}

// propagateOne runs one linear-constraint propagation step seeded at the
// just-fixed variable cur, recording any newly fixed neighbor into next.
func propagateOne(inst *Instance, d *Domains, cur int, next map[int]bool) bool {
	candidates := map[int]bool{}
	for _, vr := range inst.varRows[cur] {
		row := inst.Rows[vr.row]
		if row.AlwaysFeasible(d) {
			continue
		}
		for _, u := range row.Vars {
			if u != cur && d.Get(u) == DomZeroOne {
				candidates[u] = true
			}
		}
	}

	for u := range candidates {
		if d.Get(u) != DomZeroOne {
			continue // may have been fixed earlier in this same pass
		}
		for _, vr := range inst.varRows[u] {
			row := inst.Rows[vr.row]
			if row.Infeasible(d) {
				return false
			}
			dom := smallestDomain(row, vr.coeff, row.MinActivity(d), row.MaxActivity(d))
			if dom != DomZeroOne {
				d.SetDomain(u, dom)
				next[u] = true
				break
			}
		}
	}
	return true
}
