// Package alternating implements the project's flagship strategy: walk
// circuit 1 forward and circuit 2 backward (as its adjoint) into the same
// decision diagram, one gate at a time, so the accumulated DD shrinks
// toward the identity as both ends are consumed — usually keeping peak
// node count far below building each circuit's full matrix
// independently. It is the manager's default checker.
package alternating

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

type Checker struct {
	c1, c2 *circuit.Circuit
	sch    scheme.Scheme
	eps    float64

	// TraceThreshold bounds the close-to-identity test deciding whether
	// the accumulated product has collapsed back to the reduced identity.
	TraceThreshold float64

	done int32

	gatesApplied        int
	matchedPairsSkipped int
	nodeCount           int
	elapsed             time.Duration
}

func New(c1, c2 *circuit.Circuit, sch scheme.Scheme, eps float64) *Checker {
	if sch == nil {
		sch = scheme.OneToOne{}
	}
	if eps <= 0 {
		eps = dd.DefaultEps
	}
	return &Checker{c1: c1, c2: c2, sch: sch, eps: eps, TraceThreshold: 1e-8}
}

func (ck *Checker) Name() string { return "alternating" }

func (ck *Checker) SignalDone() { atomic.StoreInt32(&ck.done, 1) }

func (ck *Checker) isDone() bool { return atomic.LoadInt32(&ck.done) == 1 }

// matchedSkipEligible reports whether the configured scheme allows the
// matched-pair shortcut: only while the gate-cost or
// proportional schemes are in use. Lookahead skips the shortcut entirely
// since it decides one gate at a time by DD size, not gate count.
func (ck *Checker) matchedSkipEligible() bool {
	name := ck.sch.Name()
	return name == "gate_cost" || name == "proportional"
}

func (ck *Checker) Run() (result.EquivalenceCriterion, error) {
	start := time.Now()
	defer func() { ck.elapsed = time.Since(start) }()

	if ck.c1.Qubits() != ck.c2.Qubits() {
		return result.NoInformation, result.ErrQubitCountMismatch
	}

	pkg := dd.NewPackage(ck.c1.Qubits(), ck.eps)
	left := task.NewManager(pkg, ck.c1, task.Forward)
	right := task.NewManager(pkg, ck.c2, task.Backward)

	// F is the single accumulating matrix DD both managers fold their
	// gates into (left from the left, right's already-inverted gates from
	// the right), rather than two independent per-manager accumulators
	// multiplied together only once at the end.
	f := pkg.MakeIdent()
	pkg.IncRefM(f)

	lookahead, isLookahead := ck.sch.(scheme.Lookahead)
	skipEligible := ck.matchedSkipEligible()

	for !left.Finished() && !right.Finished() {
		if ck.isDone() {
			return result.NoInformation, nil
		}

		// SWAPs are permutation bookkeeping, not DD work: fold any run of
		// them into the live permutations instead of multiplying.
		left.ApplySwapOperations()
		right.ApplySwapOperations()
		if left.Finished() || right.Finished() {
			break
		}

		if skipEligible && pkg.IsIdentity(f) {
			lOp, lok := left.PeekMapped()
			rOp, rok := right.PeekMapped()
			if lok && rok && lOp.Equals(rOp) {
				left.Skip()
				right.Skip()
				ck.matchedPairsSkipped++
				ck.gatesApplied += 2
				continue
			}
		}

		if ck.isDone() {
			return result.NoInformation, nil
		}

		if isLookahead {
			next, err := lookahead.Advance(pkg, left, right, f)
			if err != nil {
				return result.NoInformation, err
			}
			f = next
			ck.gatesApplied++
			continue
		}

		l, r := ck.sch.Steps(left, right)
		if l == 0 && r == 0 {
			break
		}
		for i := 0; i < l && !left.Finished(); i++ {
			next, err := left.ApplyGateInto(f)
			if err != nil {
				return result.NoInformation, err
			}
			f = next
		}
		if ck.isDone() {
			return result.NoInformation, nil
		}
		for i := 0; i < r && !right.Finished(); i++ {
			next, err := right.ApplyGateInto(f)
			if err != nil {
				return result.NoInformation, err
			}
			f = next
		}
		ck.gatesApplied += l + r
	}

	if ck.isDone() {
		return result.NoInformation, nil
	}

	var err error
	if f, err = left.FinishInto(f); err != nil {
		return result.NoInformation, err
	}
	if ck.isDone() {
		return result.NoInformation, nil
	}
	if f, err = right.FinishInto(f); err != nil {
		return result.NoInformation, err
	}
	if ck.isDone() {
		return result.NoInformation, nil
	}

	f = left.ChangePermutationInto(f, ck.c1.OutputPermutation())
	f = right.ChangePermutationInto(f, ck.c2.OutputPermutation())
	f = left.NormalizeLayoutInto(f)
	f = right.NormalizeLayoutInto(f)
	f = left.ReduceGarbageInto(f)
	f = right.ReduceGarbageInto(f)
	f = left.ReduceAncillaeInto(f)
	f = right.ReduceAncillaeInto(f)

	// The comparison target is the identity reduced by both circuits'
	// garbage/ancillary masks, not the literal full identity: a garbage
	// qubit that differs between the two circuits still has to collapse
	// out of the goal the same way it collapsed out of F.
	goal := pkg.MakeIdent()
	pkg.IncRefM(goal)
	goal = left.ReduceGarbageInto(goal)
	goal = right.ReduceGarbageInto(goal)
	goal = left.ReduceAncillaeInto(goal)
	goal = right.ReduceAncillaeInto(goal)

	ck.nodeCount = pkg.NodeCount()

	tol := ck.TraceThreshold
	if tol <= 0 {
		tol = 1e-8
	}

	// Canonicity makes the happy path a pointer comparison: a product
	// that has collapsed back to the reduced identity shares its node.
	if f.Node == goal.Node {
		d := f.Weight - goal.Weight
		if math.Hypot(real(d), imag(d)) < ck.eps {
			return result.Equivalent, nil
		}
		return result.EquivalentUpToGlobalPhase, nil
	}

	product := pkg.Multiply(f, pkg.ConjugateTranspose(goal))
	if pkg.IsCloseToIdentity(product, tol) {
		return result.Equivalent, nil
	}

	trace := pkg.Trace(product)
	normalizedTrace := math.Hypot(real(trace), imag(trace)) / float64(uint(1)<<uint(ck.c1.Qubits()))
	if normalizedTrace > 1-tol {
		return result.EquivalentUpToGlobalPhase, nil
	}

	return result.NotEquivalent, nil
}

func (ck *Checker) JSON() map[string]any {
	return map[string]any{
		"scheme":                ck.sch.Name(),
		"gates_applied":         ck.gatesApplied,
		"matched_pairs_skipped": ck.matchedPairsSkipped,
		"node_count":            ck.nodeCount,
		"duration_ns":           ck.elapsed.Nanoseconds(),
	}
}
