// Package arith centralizes the tolerant floating-point comparisons used
// throughout the DD engine. Two independent epsilon regimes are kept
// distinct on purpose (spec.md §9): one for general float equality (used
// by BP activity-bound propagation and cut-coefficient snap-to-zero) and
// one that matches the LP solver's own residual tolerance (FlowEpsilon,
// which no other package of this module uses).
package arith

import "math"

// DefaultEpsilon is the general-purpose float equality tolerance.
const DefaultEpsilon = 1e-9

// FlowEpsilon is the tolerance used for LP/flow residuals, matching the
// default tolerance of the simplex backend used by the cut LP.
const FlowEpsilon = 1e-6

// Eq reports whether a and b are equal within eps.
func Eq(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// Lt reports whether a is strictly less than b, outside eps.
func Lt(a, b, eps float64) bool {
	return b-a > eps
}

// Gt reports whether a is strictly greater than b, outside eps.
func Gt(a, b, eps float64) bool {
	return a-b > eps
}

// Leq reports whether a is less than or equal to b within eps.
func Leq(a, b, eps float64) bool {
	return a-b <= eps
}

// Geq reports whether a is greater than or equal to b within eps.
func Geq(a, b, eps float64) bool {
	return b-a <= eps
}

// IsZero reports whether v is zero within eps.
func IsZero(v, eps float64) bool {
	return math.Abs(v) <= eps
}

// Max returns the greater of a and b.
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Min returns the lesser of a and b.
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// SnapToZero returns 0 if |v| < threshold, else v unchanged. Used by the
// cut-perturbation routine (spec.md §9, open question 2) to make the
// small-coefficient rounding explicit rather than an implicit side effect.
func SnapToZero(v, threshold float64) float64 {
	if math.Abs(v) < threshold {
		return 0
	}
	return v
}

// Saturate clamps v into [lo, hi].
func Saturate(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
