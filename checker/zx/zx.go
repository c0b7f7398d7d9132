// Package zx implements the ZX-calculus equivalence checker: lower both
// circuits into a single miter diagram (c1 stacked on c2's inverse),
// drive it to a fixed point with zxdiagram's rewrite rules, and read the
// verdict off the diagram's final shape.
package zx

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/kegliz/qcec/circuit"
	"github.com/kegliz/qcec/gate"
	"github.com/kegliz/qcec/result"
	"github.com/kegliz/qcec/zxdiagram"
)

// Checker runs the ZX-calculus equivalence check between two circuits.
// It is sound for Equivalent/EquivalentUpToGlobalPhase but incomplete for
// NotEquivalent: a diagram that fails to reduce to the identity only
// yields ProbablyNotEquivalent, since the rewrite rule set implemented
// here (a practical subset of full ZX-calculus completeness) may simply
// not be strong enough to finish the job.
type Checker struct {
	c1, c2    *circuit.Circuit
	Tolerance float64

	done int32

	diagram *zxdiagram.Diagram
	elapsed time.Duration
	cause   string
}

// New returns a ZX Checker over c1 and c2. Tolerance is the slack, in
// units of pi, within which the scalar phase left after reduction counts
// as zero when Run chooses between Equivalent and
// EquivalentUpToGlobalPhase.
func New(c1, c2 *circuit.Circuit, tolerance float64) *Checker {
	if tolerance <= 0 {
		tolerance = 1e-13
	}
	return &Checker{c1: c1, c2: c2, Tolerance: tolerance}
}

func (ck *Checker) Name() string { return "zx" }

func (ck *Checker) SignalDone() { atomic.StoreInt32(&ck.done, 1) }

func (ck *Checker) isDone() bool { return atomic.LoadInt32(&ck.done) == 1 }

// Run builds the miter diagram c1 ; c2^-1 and simplifies it to a fixed
// point, returning Equivalent/EquivalentUpToGlobalPhase when every wire
// collapses to a direct boundary-to-boundary edge, ProbablyNotEquivalent
// when simplification stalls with structure still present, and
// ErrUnsupportedByChecker when either circuit contains a gate this
// checker cannot lower (Toffoli, Fredkin, measurements, gates without a
// known ZX generator).
func (ck *Checker) Run() (result.EquivalenceCriterion, error) {
	start := time.Now()
	defer func() { ck.elapsed = time.Since(start) }()

	if ck.c1.Qubits() != ck.c2.Qubits() {
		return result.NoInformation, result.ErrQubitCountMismatch
	}
	nq := ck.c1.Qubits()

	// The miter argument assumes every line is a data qubit; with ancilla
	// lines present the |0>-input/<0|-output assumption cannot be
	// validated by this rule set, so the checker abstains.
	for q := 0; q < nq; q++ {
		if ck.c1.IsAncillary(q) || ck.c2.IsAncillary(q) {
			ck.cause = "ancillary qubits present, miter assumptions not validated"
			return result.NoInformation, nil
		}
	}
	if !ck.c1.InitialLayout().IsIdentity() || !ck.c2.InitialLayout().IsIdentity() ||
		!ck.c1.OutputPermutation().IsIdentity() || !ck.c2.OutputPermutation().IsIdentity() {
		ck.cause = "non-identity qubit layouts, miter wiring not validated"
		return result.NoInformation, nil
	}

	d := zxdiagram.New(nq)
	if err := lower(d, ck.c1, false); err != nil {
		return result.NoInformation, err
	}
	if err := lower(d, ck.c2, true); err != nil {
		return result.NoInformation, err
	}
	ck.diagram = d

	d.FullReduce(ck.isDone)
	if ck.isDone() {
		return result.NoInformation, nil
	}

	reduced, globalPhase, ok := verdictShape(d)
	if !ok {
		ck.cause = "diagram did not reduce to the identity"
		return result.ProbablyNotEquivalent, nil
	}
	if !reduced {
		// Sound rewriting left a non-identity wire permutation; the
		// checker still reports only its own incomplete verdict and
		// leaves NotEquivalent to the complete checkers.
		ck.cause = "miter reduced to a non-identity wiring"
		return result.ProbablyNotEquivalent, nil
	}
	globalPhase = math.Mod(globalPhase, 2)
	if globalPhase < 0 {
		globalPhase += 2
	}
	if globalPhase > ck.Tolerance && 2-globalPhase > ck.Tolerance {
		return result.EquivalentUpToGlobalPhase, nil
	}
	return result.Equivalent, nil
}

// lower appends c's operations to d, wiring each qubit's gates in
// sequence onto the diagram's existing wires. When inverse is true, c's
// operations are applied in reverse order with each gate replaced by its
// adjoint, so that calling lower(d, c1, false) followed by
// lower(d, c2, true) builds the standard miter c1 * c2^-1 whose identity
// collapse is exactly the equivalence condition.
func lower(d *zxdiagram.Diagram, c *circuit.Circuit, inverse bool) error {
	ops := c.Ops()
	order := make([]gate.Operation, len(ops))
	copy(order, ops)
	if inverse {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
		for i := range order {
			order[i] = order[i].Invert()
		}
	}
	for i, op := range order {
		if err := lowerOp(d, op); err != nil {
			return fmt.Errorf("zx: operation %d (%s): %v: %w", i, op.Type(), err, result.ErrUnsupportedByChecker)
		}
	}
	return nil
}

func lowerOp(d *zxdiagram.Diagram, op gate.Operation) error {
	if op.Kind() == gate.KindMeasure {
		return fmt.Errorf("measurements are not representable in ZX-calculus")
	}
	if op.Kind() == gate.KindSwap {
		return lowerSwap(d, op)
	}
	ctrls := op.Controls()
	switch len(ctrls) {
	case 0:
		return lowerUnitary1(d, op.Targets()[0], op)
	case 1:
		if !ctrls[0].Positive {
			return fmt.Errorf("negative-polarity controls are not supported by this checker")
		}
		return lowerControlled1(d, ctrls[0].Qubit, op.Targets()[0], op)
	default:
		return fmt.Errorf("%d-control gates are not supported by this checker", len(ctrls))
	}
}

// lowerSwap expands SWAP(a,b) into its three-CNOT decomposition; each
// CNOT has a native ZX generator, so no dedicated crossing vertex is
// needed.
func lowerSwap(d *zxdiagram.Diagram, op gate.Operation) error {
	if len(op.Controls()) > 0 {
		return fmt.Errorf("controlled SWAP is not supported by this checker")
	}
	a, b := op.Targets()[0], op.Targets()[1]
	if err := lowerCNOT(d, a, b); err != nil {
		return err
	}
	if err := lowerCNOT(d, b, a); err != nil {
		return err
	}
	return lowerCNOT(d, a, b)
}

func lowerCNOT(d *zxdiagram.Diagram, ctrl, target int) error {
	cv, err := d.InsertOnWire(ctrl, zxdiagram.ZSpider, 0, zxdiagram.Plain)
	if err != nil {
		return err
	}
	tv, err := d.InsertOnWire(target, zxdiagram.XSpider, 0, zxdiagram.Plain)
	if err != nil {
		return err
	}
	return d.Connect(cv, tv, zxdiagram.Plain)
}

// lowerUnitary1 handles uncontrolled single-qubit gates by inserting the
// matching phase spider (or, for H, toggling the wire's edge type)
// directly inline on q's wire.
func lowerUnitary1(d *zxdiagram.Diagram, q int, op gate.Operation) error {
	switch op.Type() {
	case "H":
		return toggleWireEdge(d, q)
	case "X":
		_, err := d.InsertOnWire(q, zxdiagram.XSpider, 1, zxdiagram.Plain)
		return err
	case "Z":
		_, err := d.InsertOnWire(q, zxdiagram.ZSpider, 1, zxdiagram.Plain)
		return err
	case "Y":
		if _, err := d.InsertOnWire(q, zxdiagram.ZSpider, 1, zxdiagram.Plain); err != nil {
			return err
		}
		if _, err := d.InsertOnWire(q, zxdiagram.XSpider, 1, zxdiagram.Plain); err != nil {
			return err
		}
		d.ScalarPhase += 0.5
		return nil
	case "S":
		_, err := d.InsertOnWire(q, zxdiagram.ZSpider, 0.5, zxdiagram.Plain)
		return err
	case "Sdg":
		_, err := d.InsertOnWire(q, zxdiagram.ZSpider, 1.5, zxdiagram.Plain)
		return err
	case "T":
		_, err := d.InsertOnWire(q, zxdiagram.ZSpider, 0.25, zxdiagram.Plain)
		return err
	case "Tdg":
		_, err := d.InsertOnWire(q, zxdiagram.ZSpider, 1.75, zxdiagram.Plain)
		return err
	case "RZ":
		_, err := d.InsertOnWire(q, zxdiagram.ZSpider, op.Parameters()[0]/math.Pi, zxdiagram.Plain)
		return err
	case "RX":
		_, err := d.InsertOnWire(q, zxdiagram.XSpider, op.Parameters()[0]/math.Pi, zxdiagram.Plain)
		return err
	default:
		return fmt.Errorf("gate %s has no known ZX generator", op.Type())
	}
}

// toggleWireEdge flips the plain/Hadamard type of the edge currently
// running into qubit q's output boundary — the ZX representation of a
// bare Hadamard gate is nothing but an edge decoration, not a vertex.
func toggleWireEdge(d *zxdiagram.Diagram, q int) error {
	tail, err := d.WireTail(q)
	if err != nil {
		return err
	}
	outputs := d.Outputs()
	out := outputs[q]
	et, err := d.EdgeType(tail, out)
	if err != nil {
		return err
	}
	flipped := zxdiagram.Hadamard
	if et == zxdiagram.Hadamard {
		flipped = zxdiagram.Plain
	}
	if err := d.ToggleEdge(tail, out, et); err != nil { // drops the existing edge
		return err
	}
	return d.Connect(tail, out, flipped)
}

// lowerControlled1 handles single-control two-qubit gates: CNOT becomes
// a Z-spider on the control wire plain-connected to an X-spider on the
// target wire; CZ becomes Z-spiders on both wires joined by a Hadamard
// edge — the textbook ZX generators for both.
func lowerControlled1(d *zxdiagram.Diagram, ctrl, target int, op gate.Operation) error {
	switch op.Type() {
	case "CNOT":
		return lowerCNOT(d, ctrl, target)
	case "CZ":
		cv, err := d.InsertOnWire(ctrl, zxdiagram.ZSpider, 0, zxdiagram.Plain)
		if err != nil {
			return err
		}
		tv, err := d.InsertOnWire(target, zxdiagram.ZSpider, 0, zxdiagram.Plain)
		if err != nil {
			return err
		}
		return d.Connect(cv, tv, zxdiagram.Hadamard)
	default:
		return fmt.Errorf("controlled gate %s has no known ZX generator", op.Type())
	}
}

// verdictShape inspects a fully reduced diagram. ok is false if any
// internal spider survives (the rule set couldn't finish the job); when
// ok is true, reduced reports whether every input boundary connects
// straight through to its corresponding output (a wire permutation would
// also be a bug were the manager not expected to have already aligned
// qubit lines before invoking this checker), and phase carries the
// accumulated ScalarPhase (in units of pi) for the global-phase check.
func verdictShape(d *zxdiagram.Diagram) (reduced bool, phase float64, ok bool) {
	for _, v := range d.Vertices() {
		if !d.IsBoundary(v) {
			return false, 0, false
		}
	}
	inputs, outputs := d.Inputs(), d.Outputs()
	for q := range inputs {
		if !d.HasEdge(inputs[q], outputs[q]) {
			return false, 0, true
		}
		et, err := d.EdgeType(inputs[q], outputs[q])
		if err != nil || et != zxdiagram.Plain {
			return false, 0, true
		}
	}
	return true, d.ScalarPhase, true
}

// JSON reports diagnostic fields for the HTTP response's
// performed_checks entries.
func (ck *Checker) JSON() map[string]any {
	j := map[string]any{
		"duration_ns": ck.elapsed.Nanoseconds(),
	}
	if ck.diagram != nil {
		j["final_vertex_count"] = len(ck.diagram.Vertices())
	}
	if ck.cause != "" {
		j["inconclusive_reason"] = ck.cause
	}
	return j
}
