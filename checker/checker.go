// Package checker defines the common Checker interface every equivalence
// strategy implements, so the manager can run any subset of them
// uniformly — sequentially, or racing them against each other and taking
// whichever returns first.
package checker

import "github.com/kegliz/qcec/result"

// Checker runs one equivalence-checking strategy to completion (or until
// SignalDone is called from another goroutine) and reports a verdict.
type Checker interface {
	// Name identifies the checker in result.CheckerRun and log output.
	Name() string
	// Run executes the check. It must return promptly after SignalDone is
	// called, even if the underlying algorithm hasn't converged —
	// returning result.NoInformation and a nil error in that case.
	Run() (result.EquivalenceCriterion, error)
	// SignalDone requests cooperative cancellation; safe to call from any
	// goroutine, including concurrently with Run and multiple times.
	SignalDone()
	// JSON returns checker-specific diagnostic fields (node counts, gate
	// counts processed, scheme used) for the HTTP response's
	// performed_checks entries.
	JSON() map[string]any
}
