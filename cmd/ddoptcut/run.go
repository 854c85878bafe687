package main

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ctjandra/ddopt-cut/bdd"
	"github.com/ctjandra/ddopt-cut/cut"
	"github.com/ctjandra/ddopt-cut/problem"
	"github.com/ctjandra/ddopt-cut/problem/indepset"
	"github.com/ctjandra/ddopt-cut/solver"
)

func runDD(cmd *cobra.Command, args []string) error {
	path := args[0]

	if cutPerturbation && cutPerturbationIter {
		return fatalf("--cut-perturbation and --cut-perturbation-iter are mutually exclusive")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".clq":
		return runIndepSet(path)
	case ".mps":
		return fatalf("binary-program driver requires the external MPS/LP solver collaborator, which this build does not include")
	default:
		return fatalf("unrecognized instance extension %q (expected .clq or .mps)", filepath.Ext(path))
	}
}

func runIndepSet(path string) error {
	g, err := readDIMACS(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	logger.Info("loaded DIMACS instance", "file", path, "vertices", g.N)

	p := &indepset.Problem{
		Graph:      g,
		Order:      indepSetOrdering(g),
		MergeRule:  indepSetMerger(),
		BoundRule:  indepset.Completion{},
		SingleTerm: true,
	}

	if skipDD {
		logger.Info("--skip-dd set, not building a BDD")
		return nil
	}

	opts := solver.Options{
		Width:    width,
		LongArcs: !noLongArcs,
		Logger:   logger,
	}

	b := solver.Build(p, opts)
	if ok, msg := b.IntegrityCheck(); !ok {
		return fatalf("internal error: constructed BDD failed integrity check: %s", msg)
	}

	logger.Info("construction complete", "bound", b.Bound, "vars", b.NumVars)
	fmt.Printf("bound: %g\n", b.Bound)
	if !ddOnly {
		logger.Warn("this build has no external MIP solver wired in; reporting the DD bound only (as if --dd-only had been passed)")
	}

	if rootOnly {
		return nil
	}
	if noCuts || maxCuts == 0 {
		return nil
	}

	return emitCuts(b, p)
}

func indepSetOrdering(g *indepset.Graph) problem.Ordering {
	switch orderingID {
	case 1:
		return indepset.NewDegreeDescendingOrder(g)
	case 2:
		return indepset.NewRandomOrder(g.N, rand.New(rand.NewSource(1)))
	default:
		return indepset.InputOrder{N: g.N}
	}
}

func indepSetMerger() problem.Merger {
	cmp := solver.ByLongestPathDescending
	switch mergerID {
	case 1:
		return &solver.IterativeMerger{Cmp: cmp}
	case 2:
		return &solver.ConsecutivePairsMerger{Cmp: cmp}
	case 3:
		return &solver.PairByValueMerger{Value: solver.MinNewSolsBound(indepset.Size), Minimize: true}
	default:
		return &solver.AtOnceMerger{Cmp: cmp}
	}
}

// interiorPoint resolves --cut-intpt (spec.md §6): an all-zero point, an
// all-one point, a concrete feasible point near the unit cube's midpoint
// (spec.md §4.2 MinDistanceApply, via bdd.ApproximateCenter), or the exact
// ddcenter computation of spec.md §4.4.
func interiorPoint(b *bdd.BDD) []float64 {
	n := b.NumVars
	switch cutIntPt {
	case 1:
		pt := make([]float64, n)
		for i := range pt {
			pt[i] = 1
		}
		return pt
	case 2:
		target := make([]float64, n)
		for i := range target {
			target[i] = 0.5
		}
		return bdd.ApproximateCenter(b, target)
	case 3:
		return bdd.Center(b)
	default:
		return make([]float64, n)
	}
}

// emitCuts generates the requested cuts against a placeholder fractional
// point, since this binary has no external MIP solver wired in to supply
// a genuine LP relaxation solution (spec.md §1 non-goal); the midpoint of
// the unit cube is used as a reasonable stand-in for --dd-only style runs.
func emitCuts(b *bdd.BDD, p problem.Problem) error {
	n := b.NumVars
	x := make([]float64, n)
	for i := range x {
		x[i] = 0.5
	}
	interior := interiorPoint(b)

	// Cuts live in layer space: objective[layer] is the weight of the
	// variable decided at that layer.
	objective := make([]float64, n)
	for layer := range objective {
		objective[layer] = p.Weight(b.LayerToVar[layer])
	}

	// spec.md §4.7 "Optional input pre-mixing": x <- (1-a)x + a*objective.
	if cutObjWeight != 0 {
		for i := range x {
			x[i] = (1-cutObjWeight)*x[i] + cutObjWeight*objective[i]
		}
	}

	perturb := cut.PerturbationOptions{
		Iterative: cutPerturbationIter,
		Random:    cutPerturbation,
	}
	ineq, ok := cut.GenerateTargetCut(b, x, interior, perturb)
	if ok {
		logger.Info("target cut", "rhs", ineq.RHS, "violation", ineq.Violation(x),
			"distance", cut.DistanceToHyperplane(ineq, x))
	} else {
		logger.Warn("target cut LP was degenerate; no cut emitted")
	}

	if cutLagrangian {
		lc, lok := cut.GenerateLagrangianCut(b, x, objective, p.Maximize(), cut.LagrangianOptions{Logger: logger})
		if lok {
			logger.Info("lagrangian cut", "rhs", lc.RHS)
			if ok {
				logger.Info("lagrangian cut vs target cut", "angle", cut.Angle(lc, ineq, true))
			}
		} else {
			logger.Warn("lagrangian cut: no violated cut found within the iteration limit")
		}
	}
	if cutLagrangianCB {
		logger.Warn("--cut-lagrangian-cb requires the conic-bundle oracle collaborator, which this build does not include")
	}

	if cutFlowDecomp {
		logger.Warn("--cut-flow-decomposition is a non-goal of this build: gonum's lp.Simplex does not expose the per-row dual values the target-cut LP would need to report arc flows")
	}

	return nil
}
