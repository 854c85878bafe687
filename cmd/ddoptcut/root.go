package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
	logger  *slog.Logger

	// Construction flags (spec.md §6)
	mergerID   int
	orderingID int
	width      int
	maxCuts    int
	noCuts     bool
	ddOnly     bool
	noLongArcs bool
	rootOnly   bool
	skipDD     bool

	// Cut flags
	cutPerturbation     bool
	cutPerturbationIter bool
	cutObjWeight        float64
	cutLagrangian       bool
	cutLagrangianCB     bool
	cutFlowDecomp       bool
	cutIntPt            int
)

var rootCmd = &cobra.Command{
	Use:   "ddoptcut [instance-file]",
	Short: "Build a relaxed BDD for a 0/1 instance and report its bound and cuts",
	Long: `ddoptcut constructs a relaxed binary decision diagram for a 0/1
optimization instance and reports the resulting dual bound, target cut,
and Lagrangian cut. It does not compute a flow decomposition of the
target cut.

The instance file extension selects the problem driver: .clq for a DIMACS
edge-list independent-set instance, .mps for a binary program (MPS reading
is an external collaborator and is not implemented by this binary).`,
	Args: cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		return nil
	},
	RunE: runDD,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug-level logging")

	rootCmd.Flags().IntVarP(&mergerID, "merger", "m", 0, "Merger id: 0=at-once 1=iterative 2=consecutive-pairs 3=pair-by-value")
	rootCmd.Flags().IntVarP(&orderingID, "ordering", "o", 0, "Ordering id: 0=input 1=degree-descending/most-constrained 2=random")
	rootCmd.Flags().IntVarP(&width, "width", "w", 0, "Width limit; unlimited if 0 or absent")
	rootCmd.Flags().IntVarP(&maxCuts, "max-cuts", "c", 1, "Max DD cuts; 0 is equivalent to --no-cuts")
	rootCmd.Flags().BoolVar(&noCuts, "no-cuts", false, "Disable cut generation entirely")
	rootCmd.Flags().BoolVar(&ddOnly, "dd-only", false, "Skip the external MIP solver (construction-only run)")
	rootCmd.Flags().BoolVar(&noLongArcs, "no-long-arcs", false, "Disable the long-arc reduction")
	rootCmd.Flags().BoolVar(&rootOnly, "root-only", false, "Stop at the root node")
	rootCmd.Flags().BoolVar(&skipDD, "skip-dd", false, "Do not build a DD (for solver-baseline runs)")

	rootCmd.Flags().BoolVar(&cutPerturbation, "cut-perturbation", false, "Apply the random perturbation variant to generated cuts")
	rootCmd.Flags().BoolVar(&cutPerturbationIter, "cut-perturbation-iter", false, "Apply the iterative perturbation variant to generated cuts (mutually exclusive with --cut-perturbation)")
	rootCmd.Flags().Float64Var(&cutObjWeight, "cut-obj-weight", 0, "Blend weight alpha in [0,1] mixing the objective into the point to separate")
	rootCmd.Flags().BoolVar(&cutLagrangian, "cut-lagrangian", false, "Generate a subgradient Lagrangian cut")
	rootCmd.Flags().BoolVar(&cutLagrangianCB, "cut-lagrangian-cb", false, "Request a bundle-oracle Lagrangian cut (this build has no bundle oracle and only logs a warning)")
	rootCmd.Flags().BoolVar(&cutFlowDecomp, "cut-flow-decomposition", false, "Request a flow decomposition of the target cut (not computed by this build; only logs a warning)")
	rootCmd.Flags().IntVar(&cutIntPt, "cut-intpt", 0, "Interior-point selector: 0=zero 1=one 2=indepset 3=ddcenter")
}

func fatalf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
