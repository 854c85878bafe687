package cut

import "math"

// DistanceToHyperplane is the Euclidean distance between the hyperplane
// coeffs.x = RHS and point x (cut efficacy).
func DistanceToHyperplane(ineq Inequality, x []float64) float64 {
	norm := 0.0
	for _, c := range ineq.Coeffs {
		norm += c * c
	}
	if norm == 0 {
		return 0
	}
	return ineq.Violation(x) / math.Sqrt(norm)
}

// CosAngle returns the cosine of the angle between two inequalities'
// normal vectors, optionally appending RHS as an extra coordinate
// (spec.md §9 "supplemented features").
func CosAngle(a, b Inequality, includeRHS bool) float64 {
	va, vb := vectorOf(a, includeRHS), vectorOf(b, includeRHS)
	dot, na, nb := 0.0, 0.0, 0.0
	for i := range va {
		dot += va[i] * vb[i]
		na += va[i] * va[i]
		nb += vb[i] * vb[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Angle returns the angle in radians between two inequalities' normal
// vectors.
func Angle(a, b Inequality, includeRHS bool) float64 {
	c := CosAngle(a, b, includeRHS)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}

func vectorOf(ineq Inequality, includeRHS bool) []float64 {
	if !includeRHS {
		return ineq.Coeffs
	}
	v := make([]float64, len(ineq.Coeffs)+1)
	copy(v, ineq.Coeffs)
	v[len(ineq.Coeffs)] = ineq.RHS
	return v
}
