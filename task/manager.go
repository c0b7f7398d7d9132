// Package task implements the per-circuit decision-diagram cursor that
// every checker drives independently: one task.Manager walks circuit 1
// forward while a second walks circuit 2 (construction checker), or one
// walks forward and the other backward into the same accumulating DD
// (alternating checker).
package task

import (
	"github.com/kegliz/qcec/circuit"
	"github.com/kegliz/qcec/dd"
	"github.com/kegliz/qcec/gate"
)

// Direction states which end of the circuit a Manager consumes operations
// from. Alternating checkers advance one Manager Forward and the other
// Backward so their shared DD converges toward the identity from both
// sides at once.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Manager owns a cursor into one circuit's operation list, a running DD
// that accumulates every operation applied so far, and the permutation
// bookkeeping the manager (package manager) needs to fold SWAPs and
// output relabeling into the final comparison.
type Manager struct {
	pkg      *dd.Package
	c        *circuit.Circuit
	dir      Direction
	pos      int // next index to consume (applied inverted when Backward)
	perm     circuit.Permutation
	dd       dd.MEdge
	isVector bool
	vec      dd.VEdge

	applied int // gates folded so far, drives periodic garbage collection
}

// gcInterval is how many gate applications pass between opportunistic
// garbage collections. Collecting clears the package's compute caches,
// so doing it per gate would defeat memoization entirely; doing it never
// would let dead intermediate products accumulate for the whole run.
const gcInterval = 64

// NewManager returns a Manager over c using pkg for DD construction,
// seeded with the identity matrix (construction/alternating checkers) and
// c's initial layout.
func NewManager(pkg *dd.Package, c *circuit.Circuit, dir Direction) *Manager {
	m := &Manager{
		pkg:  pkg,
		c:    c,
		dir:  dir,
		perm: c.InitialLayout(),
		dd:   pkg.MakeIdent(),
	}
	pkg.IncRefM(m.dd)
	return m
}

// NewVectorManager is the simulation checker's variant: the running value
// is a state vector seeded from initial rather than a matrix seeded from
// identity.
func NewVectorManager(pkg *dd.Package, c *circuit.Circuit, dir Direction, initial dd.VEdge) *Manager {
	m := &Manager{
		pkg:      pkg,
		c:        c,
		dir:      dir,
		perm:     c.InitialLayout(),
		isVector: true,
		vec:      initial,
	}
	pkg.IncRefV(m.vec)
	return m
}

// Finished reports whether every operation in the circuit (honoring
// Direction) has been folded into the running DD.
func (m *Manager) Finished() bool { return m.pos >= len(m.c.Ops()) }

// Remaining reports how many operations are left to apply, satisfying
// scheme.Advancer.
func (m *Manager) Remaining() int { return len(m.c.Ops()) - m.pos }

// PeekNext returns the next operation (as Direction would consume it)
// without advancing the cursor, satisfying scheme.Advancer.
func (m *Manager) PeekNext() (gate.Operation, bool) {
	ops := m.c.Ops()
	if m.pos >= len(ops) {
		return nil, false
	}
	if m.dir == Forward {
		return ops[m.pos], true
	}
	return ops[m.pos].Invert(), true
}

// PeekMapped returns the next operation as written in the circuit (never
// inverted, even for a Backward manager) with its controls/targets
// already run through the live permutation, without advancing the
// cursor. The alternating checker's matched-pair shortcut uses this to
// compare both sides' head operations for a cancelling pair "after
// permutation mapping": a gate and its right-applied inverse cancel
// exactly when the written operations match.
func (m *Manager) PeekMapped() (gate.Operation, bool) {
	ops := m.c.Ops()
	if m.pos >= len(ops) {
		return nil, false
	}
	return remapOperation(ops[m.pos], m.perm), true
}

// Skip advances past the next operation without folding it into any DD,
// for callers that have already established the gate's effect doesn't
// need representing: the alternating checker's matched-pair shortcut, and
// scheme.Lookahead once it has committed the other side instead.
func (m *Manager) Skip() bool {
	_, ok := m.nextOp()
	return ok
}

// PeekGateDD returns the DD for the next operation exactly as
// ApplyGateInto would build it (mapped through the permutation, inverted
// if Backward), without advancing the cursor or touching any
// accumulator. scheme.Lookahead uses this to provisionally multiply both
// candidates before committing to whichever shrinks the shared state
// more.
func (m *Manager) PeekGateDD() (dd.MEdge, bool) {
	op, ok := m.PeekNext()
	if !ok {
		return dd.MEdge{}, false
	}
	return m.pkg.MakeGateDD(remapOperation(op, m.perm)), true
}

// nextOp consumes the cursor's operation in program order for both
// directions: a Backward manager inverts each operation and its caller
// multiplies from the right, so F accumulates C1 * C2^-1 with the
// inverse's factors appended left to right (G_1^-1, then G_2^-1, ...).
func (m *Manager) nextOp() (gate.Operation, bool) {
	ops := m.c.Ops()
	if m.pos >= len(ops) {
		return nil, false
	}
	op := ops[m.pos]
	if m.dir == Backward {
		op = op.Invert()
	}
	m.pos++
	return op, true
}

// ApplySwapOperations fast-forwards over any run of uncontrolled SWAP
// gates at the cursor by folding each into the live permutation instead
// of multiplying a permutation matrix into the DD. The deferred
// relabeling is settled later by ChangePermutation against the circuit's
// output permutation.
func (m *Manager) ApplySwapOperations() {
	for {
		ops := m.c.Ops()
		if m.pos >= len(ops) {
			return
		}
		op := ops[m.pos]
		if op.Kind() != gate.KindSwap || len(op.Controls()) > 0 {
			return
		}
		t := op.Targets()
		m.perm.Swap(t[0], t[1])
		m.pos++
	}
}

// ApplyGate folds the next single operation into the running DD (or
// vector), applying the operation's controls/targets through the current
// permutation so logical qubit indices map onto physical DD lines. It is
// a no-op returning false once Finished().
func (m *Manager) ApplyGate() (bool, error) {
	op, ok := m.nextOp()
	if !ok {
		return false, nil
	}
	if op.Kind() == gate.KindMeasure {
		// Measurement has no DD action in a unitary equivalence check; the
		// manager's preprocessing pipeline is expected to have stripped
		// trailing measurements already. Mid-circuit
		// measurement on a dynamic circuit is rejected earlier by the
		// manager before a task.Manager is ever constructed.
		return true, nil
	}
	if !m.isVector && op.Kind() == gate.KindSwap && len(op.Controls()) == 0 {
		// On matrix accumulators an uncontrolled SWAP is a permutation
		// update, not a multiplication; ChangePermutation settles the
		// deferred relabeling at the end.
		t := op.Targets()
		m.perm.Swap(t[0], t[1])
		return true, nil
	}
	mapped := remapOperation(op, m.perm)
	gateDD := m.pkg.MakeGateDD(mapped)
	if m.isVector {
		old := m.vec
		m.vec = m.pkg.MultiplyVec(gateDD, m.vec)
		m.pkg.IncRefV(m.vec)
		m.pkg.DecRefV(old)
		m.maybeCollect()
		return true, nil
	}
	old := m.dd
	if m.dir == Forward {
		m.dd = m.pkg.Multiply(gateDD, m.dd)
	} else {
		m.dd = m.pkg.Multiply(m.dd, gateDD)
	}
	m.pkg.IncRefM(m.dd)
	m.pkg.DecRefM(old)
	m.maybeCollect()
	return true, nil
}

func (m *Manager) maybeCollect() {
	m.applied++
	if m.applied%gcInterval == 0 {
		m.pkg.GarbageCollect()
	}
}

// ApplyGateInto folds the next operation into an externally-owned matrix
// DD state instead of the manager's own internal accumulator, returning
// the updated state. The alternating checker shares one running product
// F between both its task managers rather than letting each accumulate
// independently, so it drives both managers through this
// method instead of ApplyGate/GetDD. It is a no-op returning state
// unchanged once Finished().
func (m *Manager) ApplyGateInto(state dd.MEdge) (dd.MEdge, error) {
	op, ok := m.nextOp()
	if !ok {
		return state, nil
	}
	if op.Kind() == gate.KindMeasure {
		return state, nil
	}
	if op.Kind() == gate.KindSwap && len(op.Controls()) == 0 {
		t := op.Targets()
		m.perm.Swap(t[0], t[1])
		return state, nil
	}
	mapped := remapOperation(op, m.perm)
	gateDD := m.pkg.MakeGateDD(mapped)
	var next dd.MEdge
	if m.dir == Forward {
		next = m.pkg.Multiply(gateDD, state)
	} else {
		next = m.pkg.Multiply(state, gateDD)
	}
	m.pkg.IncRefM(next)
	m.pkg.DecRefM(state)
	m.maybeCollect()
	return next, nil
}

// FinishInto drives the manager to completion against an externally-owned
// state, folding every remaining operation into it one at a time exactly
// as ApplyGateInto does. It is a no-op returning state unchanged if the
// manager is already Finished().
func (m *Manager) FinishInto(state dd.MEdge) (dd.MEdge, error) {
	for !m.Finished() {
		next, err := m.ApplyGateInto(state)
		if err != nil {
			return state, err
		}
		state = next
	}
	return state, nil
}

// ChangePermutationInto relabels an externally-owned matrix state from
// the manager's current layout to target, returning the relabeled state
// and updating the manager's tracked permutation to match.
func (m *Manager) ChangePermutationInto(state dd.MEdge, target circuit.Permutation) dd.MEdge {
	next := m.pkg.ChangePermutation(state, m.perm, target)
	m.pkg.IncRefM(next)
	m.pkg.DecRefM(state)
	m.perm = target.Clone()
	return next
}

// NormalizeLayoutInto conjugates an externally-owned matrix state by the
// network undoing the circuit's initial layout, so the final state is
// expressed over logical lines regardless of where the layout placed
// them. Two circuits sharing a layout normalize identically; circuits
// with different layouts become directly comparable.
func (m *Manager) NormalizeLayoutInto(state dd.MEdge) dd.MEdge {
	next := m.pkg.ChangePermutation(state, m.c.InitialLayout(), circuit.Identity(m.c.Qubits()))
	m.pkg.IncRefM(next)
	m.pkg.DecRefM(state)
	return next
}

// reduceSide maps the manager's direction onto the matrix side its
// reductions apply to: a Forward manager's gates accumulate on the rows,
// a Backward manager's inverted gates on the columns.
func (m *Manager) reduceSide() dd.Side {
	if m.dir == Backward {
		return dd.Right
	}
	return dd.Left
}

// ReduceAncillaeInto projects every ancillary line of c onto its assumed
// |0> on the manager's side of an externally-owned matrix state,
// returning the narrowed state.
func (m *Manager) ReduceAncillaeInto(state dd.MEdge) dd.MEdge {
	next := m.pkg.ReduceAncillae(state, m.ancillaryMask(), m.reduceSide())
	m.pkg.IncRefM(next)
	m.pkg.DecRefM(state)
	return next
}

// ReduceGarbageInto collapses every garbage line of c on the manager's
// side of an externally-owned matrix state so its value there no longer
// distinguishes the state, returning the reduced state.
func (m *Manager) ReduceGarbageInto(state dd.MEdge) dd.MEdge {
	next := m.pkg.ReduceGarbage(state, m.garbageMask(), m.reduceSide())
	m.pkg.IncRefM(next)
	m.pkg.DecRefM(state)
	return next
}

func (m *Manager) ancillaryMask() []bool {
	mask := make([]bool, m.c.Qubits())
	for q := 0; q < m.c.Qubits(); q++ {
		mask[q] = m.c.IsAncillary(q)
	}
	return mask
}

func (m *Manager) garbageMask() []bool {
	mask := make([]bool, m.c.Qubits())
	for q := 0; q < m.c.Qubits(); q++ {
		mask[q] = m.c.IsGarbage(q)
	}
	return mask
}

// Advance applies up to steps operations (fewer if the circuit finishes
// first), for application schemes that interleave two managers in bursts
// rather than one gate at a time.
func (m *Manager) Advance(steps int) error {
	for i := 0; i < steps && !m.Finished(); i++ {
		if _, err := m.ApplyGate(); err != nil {
			return err
		}
	}
	return nil
}

// Finish drives the manager to completion in one call.
func (m *Manager) Finish() error {
	for !m.Finished() {
		if _, err := m.ApplyGate(); err != nil {
			return err
		}
	}
	return nil
}

// GetDD returns the current accumulated matrix DD.
func (m *Manager) GetDD() dd.MEdge { return m.dd }

// GetVector returns the current accumulated state vector DD.
func (m *Manager) GetVector() dd.VEdge { return m.vec }

// Permutation returns the manager's current logical-to-physical layout.
func (m *Manager) Permutation() circuit.Permutation { return m.perm.Clone() }

// ChangePermutation relabels the running DD from the manager's current
// layout to target, updating the manager's tracked permutation to match.
func (m *Manager) ChangePermutation(target circuit.Permutation) {
	if m.isVector {
		old := m.vec
		m.vec = m.pkg.ChangePermutationVec(m.vec, m.perm, target)
		m.pkg.IncRefV(m.vec)
		m.pkg.DecRefV(old)
		m.perm = target.Clone()
		return
	}
	old := m.dd
	m.dd = m.pkg.ChangePermutation(m.dd, m.perm, target)
	m.pkg.IncRefM(m.dd)
	m.pkg.DecRefM(old)
	m.perm = target.Clone()
}

// NormalizeLayout is NormalizeLayoutInto against the manager's own
// internal accumulator.
func (m *Manager) NormalizeLayout() {
	if m.isVector {
		old := m.vec
		m.vec = m.pkg.ChangePermutationVec(m.vec, m.c.InitialLayout(), circuit.Identity(m.c.Qubits()))
		m.pkg.IncRefV(m.vec)
		m.pkg.DecRefV(old)
		return
	}
	old := m.dd
	m.dd = m.pkg.ChangePermutation(m.dd, m.c.InitialLayout(), circuit.Identity(m.c.Qubits()))
	m.pkg.IncRefM(m.dd)
	m.pkg.DecRefM(old)
}

// ReduceAncillae projects every ancillary line of c onto its assumed |0>
// on the manager's side, narrowing the running DD accordingly.
func (m *Manager) ReduceAncillae() {
	old := m.dd
	m.dd = m.pkg.ReduceAncillae(m.dd, m.ancillaryMask(), m.reduceSide())
	m.pkg.IncRefM(m.dd)
	m.pkg.DecRefM(old)
}

// ReduceGarbage collapses every garbage line of c on the manager's side
// so its value there no longer distinguishes the running DD.
func (m *Manager) ReduceGarbage() {
	old := m.dd
	m.dd = m.pkg.ReduceGarbage(m.dd, m.garbageMask(), m.reduceSide())
	m.pkg.IncRefM(m.dd)
	m.pkg.DecRefM(old)
}

// ReduceGarbageBothSides applies the garbage reduction to both the row
// and the column side of the running DD, the matrix treatment a
// partial-equivalence comparison asks for.
func (m *Manager) ReduceGarbageBothSides() {
	garbage := m.garbageMask()
	old := m.dd
	m.dd = m.pkg.ReduceGarbage(m.pkg.ReduceGarbage(m.dd, garbage, dd.Left), garbage, dd.Right)
	m.pkg.IncRefM(m.dd)
	m.pkg.DecRefM(old)
}

func remapOperation(op gate.Operation, perm circuit.Permutation) gate.Operation {
	return gate.Remap(op, perm.Apply)
}
