// Package simulation implements the power-of-simulation equivalence
// checker: sample a random initial state, forward-simulate it through
// both circuits using the dd.Package vector engine, and compare the two
// resulting state vectors by fidelity. It never proves equivalence
// outright: only ProbablyEquivalent after max_sims consecutive passes,
// or NotEquivalent the moment one sample's fidelity falls below
// threshold or two samples pass with inconsistent phases.
package simulation

import (
	"errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/kegliz/qcec/checker/simulation/stategen"
	"github.com/kegliz/qcec/circuit"
	"github.com/kegliz/qcec/dd"
	"github.com/kegliz/qcec/result"
	"github.com/kegliz/qcec/task"
)

// Checker runs repeated simulation rounds until a counterexample is
// found or MaxSims rounds all agree.
type Checker struct {
	c1, c2 *circuit.Circuit
	eps    float64

	StateType         stategen.StateType
	FidelityThreshold float64
	MaxSims           int
	Seed              int64
	StoreCEXInput     bool
	StoreCEXOutput    bool

	done int32

	simsRun         int
	upToPhaseRounds int
	cexInput        []complex128
	cexOutput1      []complex128
	cexOutput2      []complex128
	elapsed         time.Duration
}

// New returns a simulation Checker with its default settings
// (ComputationalBasis, fidelity threshold 1e-8, max rounds computed by
// the caller per Configuration.Simulation.MaxSims).
func New(c1, c2 *circuit.Circuit, eps float64) *Checker {
	if eps <= 0 {
		eps = dd.DefaultEps
	}
	return &Checker{
		c1: c1, c2: c2, eps: eps,
		StateType:         stategen.ComputationalBasis,
		FidelityThreshold: 1e-8,
		MaxSims:           16,
		Seed:              0,
	}
}

func (ck *Checker) Name() string { return "simulation" }

func (ck *Checker) SignalDone() { atomic.StoreInt32(&ck.done, 1) }

func (ck *Checker) isDone() bool { return atomic.LoadInt32(&ck.done) == 1 }

// Run samples at most MaxSims initial states (fewer if MaxSims <= 0,
// which the manager uses to disable the checker entirely, or if the
// generator runs out of unique states first — see below). Each sample
// gets its own dd.Package: a fresh Package per round keeps peak node
// count bounded to one state vector's worth of structure rather than
// accumulating across rounds. The stategen.Generator itself, though, is
// built once and shared across every round, since ComputationalBasis's
// no-duplicate guarantee is only meaningful across the whole run.
func (ck *Checker) Run() (result.EquivalenceCriterion, error) {
	start := time.Now()
	defer func() { ck.elapsed = time.Since(start) }()

	if ck.MaxSims <= 0 {
		return result.NoInformation, nil
	}
	if ck.c1.Qubits() != ck.c2.Qubits() {
		return result.NoInformation, result.ErrQubitCountMismatch
	}

	nq := ck.c1.Qubits()
	data := make([]int, 0, nq)
	for q := 0; q < nq; q++ {
		if !ck.c1.IsAncillary(q) && !ck.c2.IsAncillary(q) {
			data = append(data, q)
		}
	}

	gen := stategen.New(ck.Seed)
	verdict := result.ProbablyEquivalent
	var refPhase complex128
	havePhase := false
	for round := 0; round < ck.MaxSims; round++ {
		if ck.isDone() {
			return result.NoInformation, nil
		}

		pkg := dd.NewPackage(nq, ck.eps)
		initial, err := gen.Generate(pkg, ck.StateType, data)
		if err != nil {
			if errors.Is(err, stategen.ErrBasisStatesExhausted) {
				// Every distinguishable state has already been checked
				// without a mismatch turning up; any further round could
				// only repeat one already passed, so stop sampling instead
				// of treating exhaustion as a checker failure.
				break
			}
			return result.NoInformation, err
		}
		pkg.IncRefV(initial)

		out1, err := ck.simulate(pkg, ck.c1, initial)
		if err != nil {
			return result.NoInformation, err
		}
		out2, err := ck.simulate(pkg, ck.c2, initial)
		if err != nil {
			return result.NoInformation, err
		}
		ck.simsRun++

		ip := pkg.InnerProduct(out1, out2)
		fidelity := real(ip)*real(ip) + imag(ip)*imag(ip)
		realPart := real(ip)

		switch {
		case 1-realPart < ck.FidelityThreshold:
			// Equivalent on this round; keep going.
		case fidelity > 1-ck.FidelityThreshold:
			// |<psi1|psi2>|^2 ~= 1 but the real part disagrees: this
			// round is only EquivalentUpToPhase, which
			// still counts as a pass toward the loop's final
			// ProbablyEquivalent verdict per the stopping rule.
			ck.upToPhaseRounds++
		default:
			ck.captureCEX(pkg, initial, out1, out2)
			return result.NotEquivalent, nil
		}

		// A per-round phase is only benign if it is the SAME phase every
		// round: an input-dependent phase is a relative phase, i.e. a real
		// difference classical stimuli would otherwise never flag (an
		// extra Z after an X looks like a global -1 on half the basis
		// states and a global +1 on the other half).
		phase := ip / complex(magnitude(ip), 0)
		if !havePhase {
			refPhase, havePhase = phase, true
		} else if magnitude(phase-refPhase) > 1e-6 {
			ck.captureCEX(pkg, initial, out1, out2)
			return result.NotEquivalent, nil
		}
	}
	return verdict, nil
}

func (ck *Checker) captureCEX(pkg *dd.Package, initial, out1, out2 dd.VEdge) {
	if ck.StoreCEXInput {
		ck.cexInput = pkg.GetVector(initial)
	}
	if ck.StoreCEXOutput {
		ck.cexOutput1 = pkg.GetVector(out1)
		ck.cexOutput2 = pkg.GetVector(out2)
	}
}

func magnitude(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

// simulate forward-applies c's operations to initial within pkg and
// returns the resulting vector. Ancillary qubits are always |0> in the
// generated initial state (stategen only randomizes the data qubits), so
// no separate ancilla-seeding step is required here. The output
// permutation and initial layout are settled the same way the matrix
// checkers settle them, as wire relabelings applied to the input and the
// output alike, so a circuit and its relabeled twin simulate to the same
// read-back vector.
func (ck *Checker) simulate(pkg *dd.Package, c *circuit.Circuit, initial dd.VEdge) (dd.VEdge, error) {
	id := circuit.Identity(c.Qubits())
	v := pkg.ChangePermutationVec(initial, c.InitialLayout(), id)
	v = pkg.ChangePermutationVec(v, c.InitialLayout(), c.OutputPermutation())

	m := task.NewVectorManager(pkg, c, task.Forward, v)
	if err := m.Finish(); err != nil {
		return dd.ZeroV, err
	}
	m.ChangePermutation(c.OutputPermutation())
	m.NormalizeLayout()
	return m.GetVector(), nil
}

// JSON reports diagnostic fields for the HTTP response's
// performed_checks entries.
func (ck *Checker) JSON() map[string]any {
	j := map[string]any{
		"state_type":         stateTypeName(ck.StateType),
		"sims_run":           ck.simsRun,
		"max_sims":           ck.MaxSims,
		"up_to_phase_rounds": ck.upToPhaseRounds,
		"duration_ns":        ck.elapsed.Nanoseconds(),
	}
	if ck.cexInput != nil {
		j["cex_input"] = complexPairs(ck.cexInput)
	}
	if ck.cexOutput1 != nil {
		j["cex_output1"] = complexPairs(ck.cexOutput1)
	}
	if ck.cexOutput2 != nil {
		j["cex_output2"] = complexPairs(ck.cexOutput2)
	}
	return j
}

func complexPairs(v []complex128) [][2]float64 {
	out := make([][2]float64, len(v))
	for i, c := range v {
		out[i] = [2]float64{real(c), imag(c)}
	}
	return out
}

func stateTypeName(st stategen.StateType) string {
	switch st {
	case stategen.Random1QBasis:
		return "random_1q_basis"
	case stategen.Stabilizer:
		return "stabilizer"
	default:
		return "computational_basis"
	}
}
