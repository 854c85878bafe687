package cut

import "errors"

// Sentinel errors for cut generation collaborators that are named but not
// implemented in-process (spec.md §1 non-goals; SPEC_FULL.md's external
// dependency list), following lvlath's "packagename: message" convention.
var (
	// ErrNoBundleOracle indicates GenerateLagrangianCutBundle was called
	// without a BundleOracle collaborator wired in.
	ErrNoBundleOracle = errors.New("cut: no conic-bundle oracle configured")
	// ErrBundleTimedOut indicates the bundle loop exhausted its wall-clock
	// budget before the oracle reported a termination code.
	ErrBundleTimedOut = errors.New("cut: bundle optimizer exceeded time budget")
)
