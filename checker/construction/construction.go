// Package construction implements the simplest equivalence strategy:
// build the full matrix DD for each circuit independently, then compare.
// It is the most memory-hungry checker and is disabled
// by default (Configuration.Execution.RunConstructionChecker=false),
// serving mainly as a ground-truth fallback when the alternating
// checker's heuristics bail out.
package construction

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/kegliz/qcec/circuit"
	"github.com/kegliz/qcec/dd"
	"github.com/kegliz/qcec/result"
	"github.com/kegliz/qcec/scheme"
	"github.com/kegliz/qcec/task"
)

// Checker builds both circuits' matrix DDs to completion and compares
// them for exact (up to numerical tolerance) equality, optionally up to
// a global phase.
type Checker struct {
	c1, c2 *circuit.Circuit
	sch    scheme.Scheme
	eps    float64

	// TraceThreshold bounds the close-to-identity test deciding matrix
	// equality once the cheap pointer comparison fails.
	TraceThreshold float64
	// PartialEquivalence additionally sums out garbage qubits so circuits
	// are compared on their measured outputs only.
	PartialEquivalence bool

	done int32

	gatesApplied int
	nodeCount    int
	elapsed      time.Duration
}

// New returns a construction Checker for c1 vs c2 using the given
// application scheme (scheme.Sequential if nil) and numerical tolerance.
func New(c1, c2 *circuit.Circuit, sch scheme.Scheme, eps float64) *Checker {
	if sch == nil {
		sch = scheme.Sequential{}
	}
	if eps <= 0 {
		eps = dd.DefaultEps
	}
	return &Checker{c1: c1, c2: c2, sch: sch, eps: eps, TraceThreshold: 1e-8}
}

func (ck *Checker) Name() string { return "construction" }

func (ck *Checker) SignalDone() { atomic.StoreInt32(&ck.done, 1) }

func (ck *Checker) isDone() bool { return atomic.LoadInt32(&ck.done) == 1 }

func (ck *Checker) Run() (result.EquivalenceCriterion, error) {
	start := time.Now()
	defer func() { ck.elapsed = time.Since(start) }()

	if ck.c1.Qubits() != ck.c2.Qubits() {
		return result.NoInformation, result.ErrQubitCountMismatch
	}

	pkg := dd.NewPackage(ck.c1.Qubits(), ck.eps)
	m1 := task.NewManager(pkg, ck.c1, task.Forward)
	m2 := task.NewManager(pkg, ck.c2, task.Forward)

	for !m1.Finished() || !m2.Finished() {
		if ck.isDone() {
			return result.NoInformation, nil
		}
		l, r := ck.sch.Steps(m1, m2)
		if err := m1.Advance(l); err != nil {
			return result.NoInformation, err
		}
		if err := m2.Advance(r); err != nil {
			return result.NoInformation, err
		}
		if l == 0 && r == 0 {
			break
		}
		ck.gatesApplied += l + r
	}

	m1.ChangePermutation(ck.c1.OutputPermutation())
	m2.ChangePermutation(ck.c2.OutputPermutation())
	m1.NormalizeLayout()
	m2.NormalizeLayout()
	m1.ReduceAncillae()
	m2.ReduceAncillae()
	if ck.PartialEquivalence {
		m1.ReduceGarbageBothSides()
		m2.ReduceGarbageBothSides()
	}

	dd1, dd2 := m1.GetDD(), m2.GetDD()
	ck.nodeCount = pkg.NodeCount()

	// Canonicity makes the happy path a pointer comparison: equal DDs
	// built inside the same package share their root node.
	if dd1.Node == dd2.Node {
		if approxEqual(dd1.Weight, dd2.Weight, ck.eps) {
			return result.Equivalent, nil
		}
		return result.EquivalentUpToGlobalPhase, nil
	}

	adj := pkg.ConjugateTranspose(dd2)
	product := pkg.Multiply(dd1, adj)

	tol := ck.TraceThreshold
	if tol <= 0 {
		tol = 1e-8
	}
	if pkg.IsCloseToIdentity(product, tol) {
		return result.Equivalent, nil
	}

	// Up-to-global-phase check: |tr(product)|/2^n equals 1 exactly when
	// the product is the identity times an overall phase factor.
	trace := pkg.Trace(product)
	normalizedTrace := magnitude(trace) / float64(uint(1)<<uint(ck.c1.Qubits()))
	if normalizedTrace > 1-tol {
		return result.EquivalentUpToGlobalPhase, nil
	}

	return result.NotEquivalent, nil
}

func approxEqual(a, b complex128, eps float64) bool {
	d := a - b
	return math.Hypot(real(d), imag(d)) < eps
}

func magnitude(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func (ck *Checker) JSON() map[string]any {
	return map[string]any{
		"scheme":        ck.sch.Name(),
		"gates_applied": ck.gatesApplied,
		"node_count":    ck.nodeCount,
		"duration_ns":   ck.elapsed.Nanoseconds(),
	}
}
