// Package manager implements the equivalence-checking manager: it
// clones and preprocesses the two input circuits,
// selects and constructs whichever checkers Configuration enables, races
// them to a decision (sequentially or in parallel), and aggregates their
// individual verdicts into one Results envelope. It is the only package
// that imports every checker subpackage.
package manager

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kegliz/qcec/checker"
	"github.com/kegliz/qcec/checker/alternating"
	"github.com/kegliz/qcec/checker/construction"
	"github.com/kegliz/qcec/checker/simulation"
	"github.com/kegliz/qcec/checker/simulation/stategen"
	"github.com/kegliz/qcec/checker/zx"
	"github.com/kegliz/qcec/circuit"
	"github.com/kegliz/qcec/internal/config"
	"github.com/kegliz/qcec/internal/logger"
	"github.com/kegliz/qcec/internal/version"
	"github.com/kegliz/qcec/result"
	"github.com/kegliz/qcec/scheme"
)

// Manager owns the two preprocessed circuits, the resolved configuration,
// and (once Run has been called) the checker instances it raced.
type Manager struct {
	cfg *config.Configuration
	log *logger.Logger

	c1, c2 *circuit.Circuit

	fellBackToConstruction bool
	warnings               []string
}

// New clones c1 and c2, runs the preprocessing pipeline
// on each independently, strips idle qubits, and aligns qubit counts and
// ancilla/garbage marks per invariant I4. It returns
// result.ErrQubitCountMismatch if the circuits still disagree on qubit
// count afterward, result.ErrUnsupportedDynamicCircuit when a circuit
// uses a qubit after measuring it, and result.ErrUsage on an invalid
// option combination (Lookahead selected for the construction checker).
func New(c1, c2 *circuit.Circuit, cfg *config.Configuration, log *logger.Logger) (*Manager, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.NewLogger(logger.LoggerOptions{})
	}
	if cfg.Application.ConstructionScheme == config.SchemeLookahead {
		return nil, fmt.Errorf("manager: lookahead scheme is not allowed for the construction checker: %w", result.ErrUsage)
	}

	m := &Manager{cfg: cfg, log: log.SpawnForService("qcec-manager")}

	pc1, err := m.preprocessOne(c1.Clone())
	if err != nil {
		return nil, err
	}
	pc2, err := m.preprocessOne(c2.Clone())
	if err != nil {
		return nil, err
	}

	pc1 = pc1.StripIdleQubits()
	pc2 = pc2.StripIdleQubits()
	pc1, pc2 = m.alignQubits(pc1, pc2)

	if pc1.Qubits() != pc2.Qubits() {
		return nil, fmt.Errorf("manager: circuit1 has %d qubits, circuit2 has %d after alignment: %w",
			pc1.Qubits(), pc2.Qubits(), result.ErrQubitCountMismatch)
	}

	m.c1, m.c2 = pc1, pc2
	return m, nil
}

// preprocessOne runs the optimization pipeline, then the one step every
// circuit needs regardless of Optimizations: trailing measurements are
// always stripped (the unitary checkers cannot otherwise build a matrix
// DD). The output-permutation check after it runs only when
// FixOutputPermutationMismatch is set.
func (m *Manager) preprocessOne(c *circuit.Circuit) (*circuit.Circuit, error) {
	out, err := preprocess(c, m.cfg.Optimizations)
	if err != nil {
		return nil, err
	}
	out = out.StripFinalMeasurements()
	if m.cfg.Optimizations.FixOutputPermutationMismatch {
		// Detection only: the
		// legacy pass is ambiguous when ancillary/garbage masks disagree,
		// so this module never silently rewrites the output permutation —
		// it only records that a mismatch exists for Results.Warnings.
		if !out.OutputPermutation().IsIdentity() {
			m.warnings = append(m.warnings, fmt.Sprintf(
				"circuit %q: non-identity output permutation detected (fix_output_permutation_mismatch does not resolve it, only reports it)", out.Name()))
		}
	}
	return out, nil
}

// alignQubits implements invariant I4: the smaller circuit is padded up
// to the larger's qubit count (the new lines are ancillary+garbage by
// construction, see Circuit.WithQubits), and the larger circuit's extra
// qubits are marked ancillary so both sides agree on which lines are
// "real" computation.
func (m *Manager) alignQubits(c1, c2 *circuit.Circuit) (*circuit.Circuit, *circuit.Circuit) {
	n1, n2 := c1.Qubits(), c2.Qubits()
	switch {
	case n1 == n2:
		return c1, c2
	case n1 < n2:
		c1 = c1.WithQubits(n2)
		for q := n1; q < n2; q++ {
			c2.SetAncillary(q, true)
		}
	default:
		c2 = c2.WithQubits(n1)
		for q := n2; q < n1; q++ {
			c1.SetAncillary(q, true)
		}
	}
	return c1, c2
}

// canHandleAlternating is the alternating checker's
// eligibility predicate: it refuses circuits whose
// ancillary aliveness disagrees qubit-for-qubit, since the shared-DD
// alternating strategy has no way to represent "ancilla on one side,
// live data qubit on the other" at a single line.
func canHandleAlternating(c1, c2 *circuit.Circuit) bool {
	n := c1.Qubits()
	for q := 0; q < n; q++ {
		if c1.IsAncillary(q) != c2.IsAncillary(q) {
			return false
		}
	}
	return true
}

type namedChecker struct {
	name string
	ck   checker.Checker
}

// schemeFor resolves a Configuration.Application scheme name into a
// scheme.Scheme, loading a gate-cost profile from disk when one is
// configured, and falling back to fallback for any name this manager
// doesn't recognise.
func (m *Manager) schemeFor(name config.ApplicationSchemeName, fallback scheme.Scheme) scheme.Scheme {
	switch name {
	case config.SchemeSequential:
		return scheme.Sequential{}
	case config.SchemeOneToOne:
		return scheme.OneToOne{}
	case config.SchemeProportional:
		return scheme.Proportional{}
	case config.SchemeGateCost:
		if m.cfg.Application.Profile != "" {
			profile, err := scheme.LoadProfile(m.cfg.Application.Profile)
			if err != nil {
				m.log.Warn().Err(err).Str("profile", m.cfg.Application.Profile).
					Msg("manager: failed to load gate-cost profile, using default cost function")
				return scheme.NewGateCost(scheme.DefaultCostFunction)
			}
			profile.OnWarn(func(gateName string, nControls int) {
				m.log.Warn().Str("gate", gateName).Int("controls", nControls).
					Msg("manager: gate-cost profile has no entry for this gate, defaulting to cost 1")
			})
			return scheme.NewGateCost(profile.CostFunc())
		}
		return scheme.NewGateCost(scheme.DefaultCostFunction)
	case config.SchemeLookahead:
		return scheme.NewLookahead()
	default:
		return fallback
	}
}

func stateTypeFor(name config.StateTypeName) stategen.StateType {
	switch name {
	case config.StateRandom1QBasis:
		return stategen.Random1QBasis
	case config.StateStabilizer:
		return stategen.Stabilizer
	default:
		return stategen.ComputationalBasis
	}
}

// buildCheckers constructs one checker per Configuration.Execution flag
// enabled, applying the alternating checker's eligibility fallback to
// construction: if the alternating checker is requested but can't
// handle this pair, it is silently replaced with
// (or added alongside, if already requested) the construction checker.
func (m *Manager) buildCheckers() []namedChecker {
	var list []namedChecker
	eps := m.cfg.Execution.NumericalTolerance

	runAlternating := m.cfg.Execution.RunAlternatingChecker
	runConstruction := m.cfg.Execution.RunConstructionChecker
	if runAlternating && !canHandleAlternating(m.c1, m.c2) {
		m.warnings = append(m.warnings, "alternating checker cannot handle this ancilla layout; falling back to the construction checker")
		m.log.Warn().Msg("manager: alternating checker ineligible (ancillary aliveness disagreement), falling back to construction")
		runAlternating = false
		runConstruction = true
		m.fellBackToConstruction = true
	}

	if runConstruction {
		s := m.schemeFor(m.cfg.Application.ConstructionScheme, scheme.Proportional{})
		ck := construction.New(m.c1, m.c2, s, eps)
		ck.TraceThreshold = m.cfg.Functionality.TraceThreshold
		ck.PartialEquivalence = m.cfg.Functionality.CheckPartialEquivalence
		list = append(list, namedChecker{"construction", ck})
	}
	if runAlternating {
		s := m.schemeFor(m.cfg.Application.AlternatingScheme, scheme.OneToOne{})
		ck := alternating.New(m.c1, m.c2, s, eps)
		ck.TraceThreshold = m.cfg.Functionality.TraceThreshold
		list = append(list, namedChecker{"alternating", ck})
	}
	if m.cfg.Execution.RunZXChecker {
		list = append(list, namedChecker{"zx", zx.New(m.c1, m.c2, eps)})
	}
	if m.cfg.Execution.RunSimulationChecker && m.cfg.Simulation.MaxSims > 0 {
		sim := simulation.New(m.c1, m.c2, eps)
		sim.StateType = stateTypeFor(m.cfg.Simulation.StateType)
		sim.FidelityThreshold = m.cfg.Simulation.FidelityThreshold
		sim.MaxSims = m.cfg.Simulation.MaxSims
		sim.Seed = m.cfg.Simulation.Seed
		sim.StoreCEXInput = m.cfg.Simulation.StoreCEXInput
		sim.StoreCEXOutput = m.cfg.Simulation.StoreCEXOutput
		list = append(list, namedChecker{"simulation", sim})
	}
	return list
}

// runOutcome is one checker's completed verdict, passed back to the
// aggregator whether the checker ran sequentially or in its own
// goroutine.
type runOutcome struct {
	name      string
	criterion result.EquivalenceCriterion
	err       error
	duration  time.Duration
	details   map[string]any
}

func runChecker(nc namedChecker) runOutcome {
	start := time.Now()
	crit, err := nc.ck.Run()
	return runOutcome{
		name:      nc.name,
		criterion: crit,
		err:       err,
		duration:  time.Since(start),
		details:   nc.ck.JSON(),
	}
}

// isFinal reports whether outcome o settles the overall verdict by
// itself, given onlyThisChecker (true when o.name is the sole checker
// Configuration enabled). ZX and Simulation verdicts are only
// conditionally final, everything else decides outright.
func isFinal(o runOutcome, onlyThisChecker bool) bool {
	switch o.criterion {
	case result.NotEquivalent:
		return true
	case result.Equivalent, result.EquivalentUpToGlobalPhase:
		return o.name != "simulation" || onlyThisChecker
	case result.EquivalentUpToPhase, result.ProbablyEquivalent:
		return onlyThisChecker
	case result.ProbablyNotEquivalent:
		return onlyThisChecker
	default: // NoInformation
		return false
	}
}

// Run drives the selected checkers to a verdict, honoring
// Configuration.Execution.Parallel/Timeout and ctx's cancellation, and
// returns the aggregated Results.
func (m *Manager) Run(ctx context.Context) (*result.Results, error) {
	preStart := time.Now()
	checkTimeStart := time.Now()
	checkers := m.buildCheckers()

	res := &result.Results{
		ID:             uuid.Must(uuid.NewRandom()).String(),
		EngineVersion:  version.String(),
		Qubits:         m.c1.Qubits(),
		PreprocessTime: checkTimeStart.Sub(preStart),
		Warnings:       m.warnings,
	}

	if len(checkers) == 0 {
		res.Criterion = result.NoInformation
		res.Message = "no checkers enabled"
		return res, nil
	}

	var done int32
	signalDone := func() {
		if atomic.CompareAndSwapInt32(&done, 0, 1) {
			for _, nc := range checkers {
				nc.ck.SignalDone()
			}
		}
	}
	isDone := func() bool { return atomic.LoadInt32(&done) == 1 }

	if ctx != nil {
		stopWatch := make(chan struct{})
		defer close(stopWatch)
		go func() {
			select {
			case <-ctx.Done():
				signalDone()
			case <-stopWatch:
			}
		}()
	}

	var timedOut int32
	if m.cfg.Execution.TimeoutSeconds > 0 {
		timer := time.AfterFunc(time.Duration(m.cfg.Execution.TimeoutSeconds*float64(time.Second)), func() {
			atomic.StoreInt32(&timedOut, 1)
			signalDone()
		})
		defer timer.Stop()
	}

	var outcomes []runOutcome
	var verdict result.EquivalenceCriterion
	var cex string
	var checkerUsed string

	if m.cfg.Execution.Parallel {
		outcomes, verdict, checkerUsed, cex = m.runParallel(checkers, isDone)
	} else {
		outcomes, verdict, checkerUsed, cex = m.runSequential(checkers, signalDone)
	}

	res.CheckTime = time.Since(checkTimeStart)
	res.Criterion = verdict
	res.CheckerUsed = checkerUsed
	res.CounterExample = cex
	res.Timeout = atomic.LoadInt32(&timedOut) == 1
	if res.Timeout && !res.Criterion.IsEquivalent() && res.Criterion != result.NotEquivalent {
		res.Criterion = result.NoInformation
		res.Message = "equivalence check timed out before a conclusive verdict"
	}

	for _, o := range outcomes {
		run := result.CheckerRun{
			Name:      o.name,
			Criterion: o.criterion,
			Duration:  o.duration,
			Details:   o.details,
		}
		if o.err != nil {
			run.Err = o.err.Error()
		}
		res.Performed = append(res.Performed, run)
	}
	return res, nil
}

// runSequential runs checkers one at a time in a fixed order
// (Simulation, Alternating, Construction, ZX), stopping as soon as one
// outcome is final.
func (m *Manager) runSequential(checkers []namedChecker, signalDone func()) (outcomes []runOutcome, verdict result.EquivalenceCriterion, checkerUsed, cex string) {
	order := map[string]int{"simulation": 0, "alternating": 1, "construction": 2, "zx": 3}
	ordered := append([]namedChecker(nil), checkers...)
	sortByOrder(ordered, order)

	only := len(checkers) == 1
	verdict = result.NoInformation
	for _, nc := range ordered {
		o := runChecker(nc)
		outcomes = append(outcomes, o)
		if isFinal(o, only) {
			verdict = o.criterion
			checkerUsed = o.name
			if o.criterion == result.NotEquivalent {
				cex = cexString(o)
			}
			signalDone()
			return outcomes, verdict, checkerUsed, cex
		}
		if o.criterion.IsEquivalent() {
			verdict = o.criterion
			checkerUsed = o.name
		}
	}
	return outcomes, verdict, checkerUsed, cex
}

func sortByOrder(checkers []namedChecker, order map[string]int) {
	for i := 1; i < len(checkers); i++ {
		for j := i; j > 0 && order[checkers[j].name] < order[checkers[j-1].name]; j-- {
			checkers[j], checkers[j-1] = checkers[j-1], checkers[j]
		}
	}
}

// runParallel races every checker in its own goroutine and consolidates
// results as they complete through a buffered channel:
// first-reporter-wins, except simulations aggregate.
func (m *Manager) runParallel(checkers []namedChecker, isDone func() bool) (outcomes []runOutcome, verdict result.EquivalenceCriterion, checkerUsed, cex string) {
	results := make(chan runOutcome, len(checkers))
	nthreads := m.cfg.Execution.NThreads
	if nthreads < 2 {
		nthreads = 2
	}
	slots := make(chan struct{}, nthreads)
	var wg sync.WaitGroup
	for _, nc := range checkers {
		wg.Add(1)
		go func(nc namedChecker) {
			defer wg.Done()
			slots <- struct{}{}
			defer func() { <-slots }()
			// Every checker goroutine pushes its outcome before
			// unwinding, even on panic recovery, so the consolidation
			// loop below never blocks waiting on a slot that silently
			// died.
			defer func() {
				if r := recover(); r != nil {
					results <- runOutcome{name: nc.name, criterion: result.NoInformation, err: fmt.Errorf("manager: checker %s panicked: %v", nc.name, r)}
				}
			}()
			results <- runChecker(nc)
		}(nc)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	only := len(checkers) == 1
	verdict = result.NoInformation
	remaining := len(checkers)
	var signaledDone bool
	for remaining > 0 {
		o, ok := <-results
		if !ok {
			break
		}
		remaining--
		outcomes = append(outcomes, o)
		if !signaledDone && isFinal(o, only) {
			verdict = o.criterion
			checkerUsed = o.name
			if o.criterion == result.NotEquivalent {
				cex = cexString(o)
			}
			signaledDone = true
			for _, nc := range m.inflightExcept(checkers, o.name) {
				nc.ck.SignalDone()
			}
			// Keep draining so every goroutine's outcome is still
			// recorded in outcomes, matching the per-checker JSON the
			// caller expects even after a definitive early exit.
			continue
		}
		if !signaledDone && o.criterion.IsEquivalent() {
			verdict = o.criterion
			checkerUsed = o.name
		}
	}
	return outcomes, verdict, checkerUsed, cex
}

func (m *Manager) inflightExcept(checkers []namedChecker, done string) []namedChecker {
	out := make([]namedChecker, 0, len(checkers))
	for _, nc := range checkers {
		if nc.name != done {
			out = append(out, nc)
		}
	}
	return out
}

func cexString(o runOutcome) string {
	if o.details == nil {
		return ""
	}
	if _, ok := o.details["cex_input"]; ok {
		return fmt.Sprintf("counterexample captured by %s checker (see performed_checks[].details)", o.name)
	}
	return ""
}
