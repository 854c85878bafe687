package cut

import (
	"log/slog"
	"time"

	"github.com/ctjandra/ddopt-cut/bdd"
)

// LagrangianOptions configures the subgradient Lagrangian cut (spec.md
// §4.8 "Lagrangian cut, subgradient variant").
type LagrangianOptions struct {
	// IterationLimit caps the number of subgradient steps.
	IterationLimit int
	// IterationsBeyondValidity delays emission once a valid (violated)
	// cut is first found, continuing the subgradient walk to sharpen it.
	IterationsBeyondValidity int
	// Tolerance is the violation threshold above which a candidate
	// (lambda, rhs) is accepted as a cut; zero defaults to
	// arith.DefaultEpsilon via GenerateLagrangianCut.
	Tolerance float64
	Logger    *slog.Logger
}

// GenerateLagrangianCut runs the subgradient method of spec.md §4.8 over
// the BDD's longest-path oracle, grounded on other_examples's
// internal-solvers-subgrad.go (step-length update, dual-iteration loop,
// log/slog diagnostics). maximize must match the sense the BDD was built
// under (bdd.LongestPath's maximize argument). objective is the original
// cost vector in layer space (like x: entry k is the cost of the variable
// decided at layer k), used as lambda's starting point. ok is false
// if the iteration limit is exhausted without ever finding a violated
// cut.
func GenerateLagrangianCut(b *bdd.BDD, x, objective []float64, maximize bool, opts LagrangianOptions) (Inequality, bool) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tolerance := opts.Tolerance
	if tolerance == 0 {
		tolerance = defaultTolerance
	}
	limit := opts.IterationLimit
	if limit <= 0 {
		limit = defaultIterationLimit
	}

	n := b.NumVars
	lambda := append([]float64(nil), objective...)
	zeroWeights := make([]float64, n)

	var best Inequality
	found := false
	beyond := 0

	for k := 0; k < limit; k++ {
		weights := bdd.ArcWeights{Zero: zeroWeights, One: lambda}
		path, rhs := bdd.LongestPath(b, weights, maximize, false)

		lambdaX := 0.0
		for i := 0; i < n; i++ {
			lambdaX += lambda[i] * x[i]
		}
		violation := lambdaX - rhs

		logger.Debug("lagrangian iteration", "k", k, "rhs", rhs, "violation", violation)

		if violation > tolerance {
			best = Inequality{Coeffs: append([]float64(nil), lambda...), RHS: rhs}
			found = true
			beyond++
			if beyond > opts.IterationsBeyondValidity {
				logger.Debug("lagrangian cut found", "k", k, "rhs", rhs)
				return best, true
			}
		}

		xk := make([]float64, n)
		for i, v := range path.Vals {
			if v == bdd.One {
				xk[i] = 1
			}
		}
		step := 1.0 / float64(k+1)
		for i := 0; i < n; i++ {
			lambda[i] += step * (x[i] - xk[i])
		}
	}

	return best, found
}

const (
	defaultTolerance      = 1e-9
	defaultIterationLimit = 1000
)

// BundleOracle is the nonsmooth convex optimizer collaborator of spec.md
// §4.8 "Lagrangian cut, bundle variant" — specified only by the five
// operations the original's conic-bundle wrapper calls. No conic-bundle
// implementation ships in this module (spec.md §1 non-goal); callers
// supply their own.
type BundleOracle interface {
	InitProblem(dim int)
	AddFunction(center []float64, value float64, subgradient []float64)
	DoDescentStep()
	TerminationCode() int
	GetCenter() []float64
}

// GenerateLagrangianCutBundle wraps the same longest-path subproblem as
// GenerateLagrangianCut but drives it via an externally supplied
// BundleOracle instead of a fixed subgradient step rule, honoring a
// wall-clock budget (spec.md §4.8, §5 "Cancellation / timeouts"). Returns
// ErrNoBundleOracle if oracle is nil, and ErrBundleTimedOut if the budget
// is exhausted before the oracle reports a nonzero termination code.
func GenerateLagrangianCutBundle(b *bdd.BDD, x, objective []float64, maximize bool, oracle BundleOracle, budget time.Duration) (Inequality, error) {
	if oracle == nil {
		return Inequality{}, ErrNoBundleOracle
	}

	n := b.NumVars
	zeroWeights := make([]float64, n)
	oracle.InitProblem(n)

	deadline := time.Now().Add(budget)
	center := append([]float64(nil), objective...)

	for oracle.TerminationCode() == 0 {
		if time.Now().After(deadline) {
			return Inequality{}, ErrBundleTimedOut
		}

		weights := bdd.ArcWeights{Zero: zeroWeights, One: center}
		path, rhs := bdd.LongestPath(b, weights, maximize, false)

		lambdaX := 0.0
		for i := 0; i < n; i++ {
			lambdaX += center[i] * x[i]
		}

		subgradient := make([]float64, n)
		for i, v := range path.Vals {
			xk := 0.0
			if v == bdd.One {
				xk = 1
			}
			subgradient[i] = x[i] - xk
		}

		oracle.AddFunction(center, lambdaX-rhs, subgradient)
		oracle.DoDescentStep()
		center = oracle.GetCenter()
	}

	weights := bdd.ArcWeights{Zero: zeroWeights, One: center}
	_, rhs := bdd.LongestPath(b, weights, maximize, false)
	return Inequality{Coeffs: append([]float64(nil), center...), RHS: rhs}, nil
}
