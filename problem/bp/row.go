package bp

// Sense is the direction of a linear constraint.
type Sense int

const (
	LE Sense = iota // coeffs . x <= RHS
	GE               // coeffs . x >= RHS
)

// Row is a sparse linear constraint over a subset of the problem's
// variables (spec.md §9 "supplemented features": the original's BPRow).
type Row struct {
	RHS    float64
	Sense  Sense
	Coeffs []float64
	Vars   []int
}

// Coeff does a linear scan for v's coefficient in the row, returning 0 if
// v does not participate (rows are short; a map would not pay for itself).
func (r *Row) Coeff(v int) float64 {
	for i, idx := range r.Vars {
		if idx == v {
			return r.Coeffs[i]
		}
	}
	return 0
}

// Activity bounds given the current domains: MinActivity/MaxActivity sum
// each term's smallest/largest possible contribution (0 or 1 times the
// coefficient's sign), folding in already-fixed variables exactly.
func (r *Row) MinActivity(d *Domains) float64 {
	total := 0.0
	for i, v := range r.Vars {
		c := r.Coeffs[i]
		switch d.Get(v) {
		case DomOne:
			total += c
		case DomZero:
			// contributes 0
		default:
			if c < 0 {
				total += c
			}
		}
	}
	return total
}

func (r *Row) MaxActivity(d *Domains) float64 {
	total := 0.0
	for i, v := range r.Vars {
		c := r.Coeffs[i]
		switch d.Get(v) {
		case DomOne:
			total += c
		case DomZero:
			// contributes 0
		default:
			if c > 0 {
				total += c
			}
		}
	}
	return total
}

// AlwaysFeasible reports whether the row is satisfied regardless of how
// remaining unset variables resolve, letting the propagator skip it for
// the rest of construction (spec.md §9 "always-feasible detection").
func (r *Row) AlwaysFeasible(d *Domains) bool {
	switch r.Sense {
	case LE:
		return r.MaxActivity(d) <= r.RHS
	default:
		return r.MinActivity(d) >= r.RHS
	}
}

// Infeasible reports whether the row can no longer be satisfied by any
// completion of the current domains.
func (r *Row) Infeasible(d *Domains) bool {
	switch r.Sense {
	case LE:
		return r.MinActivity(d) > r.RHS
	default:
		return r.MaxActivity(d) < r.RHS
	}
}
