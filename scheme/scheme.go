// Package scheme decides, for a given pair of task.Managers walking two
// circuits, how many operations to advance on each side before the next
// DD multiplication — the application scheme. Apart from Lookahead, whose
// Advance multiplies into the alternating checker's shared DD itself,
// schemes never touch the DD; they only read gate counts/costs and report
// how far to advance.
package scheme

import (
	"github.com/kegliz/qcec/dd"
	"github.com/kegliz/qcec/gate"
	"github.com/kegliz/qcec/task"
)

// Advancer is the minimal view of a task.Manager a Scheme needs: how many
// operations remain, and (for cost-aware schemes) what the next operation
// actually is.
type Advancer interface {
	Remaining() int
	PeekNext() (gate.Operation, bool)
}

// Scheme picks how many steps to advance the left and right managers
// before the checker next multiplies their DDs together.
type Scheme interface {
	Name() string
	Steps(left, right Advancer) (leftSteps, rightSteps int)
}

// Sequential finishes the left circuit entirely before touching the
// right one: the simplest, lowest-memory scheme, and the construction
// checker's default.
type Sequential struct{}

func (Sequential) Name() string { return "sequential" }
func (Sequential) Steps(left, right Advancer) (int, int) {
	if left.Remaining() > 0 {
		return left.Remaining(), 0
	}
	return 0, right.Remaining()
}

// OneToOne alternates a single gate from each side, keeping both DDs
// growing in lock-step — the alternating checker's default, since it
// needs both managers to make forward progress for the DD to collapse
// toward the identity evenly from both directions.
type OneToOne struct{}

func (OneToOne) Name() string { return "one_to_one" }
func (OneToOne) Steps(left, right Advancer) (int, int) {
	l, r := 0, 0
	if left.Remaining() > 0 {
		l = 1
	}
	if right.Remaining() > 0 {
		r = 1
	}
	return l, r
}

// Proportional advances one gate on the smaller side and r gates on the
// larger, where r is the larger-to-smaller gate-count ratio rounded to
// the nearest integer, so a circuit with many more gates than its
// counterpart doesn't leave the smaller side finished (and idle) for
// most of the run.
type Proportional struct{}

func (p Proportional) Name() string { return "proportional" }
func (p Proportional) Steps(left, right Advancer) (int, int) {
	lr, rr := left.Remaining(), right.Remaining()
	switch {
	case lr == 0 && rr == 0:
		return 0, 0
	case lr == 0:
		return 0, rr
	case rr == 0:
		return lr, 0
	case lr >= rr:
		return roundedRatio(lr, rr), 1
	default:
		return 1, roundedRatio(rr, lr)
	}
}

func roundedRatio(larger, smaller int) int {
	r := (2*larger + smaller) / (2 * smaller)
	if r < 1 {
		r = 1
	}
	return r
}

// CostFunction assigns a relative weight to an operation, used by
// GateCost to decide which side is "cheaper" to advance next (e.g. a
// two-qubit gate costs more DD work than a single-qubit one).
type CostFunction func(op gate.Operation) int

// DefaultCostFunction weights purely by qubit span: single-qubit gates
// cost 1, and each control or extra target doubles the cost, matching
// the intuition that DD node-count growth is roughly exponential in the
// number of lines a gate touches.
func DefaultCostFunction(op gate.Operation) int {
	span := len(op.Targets()) + len(op.Controls())
	cost := 1
	for i := 1; i < span; i++ {
		cost *= 2
	}
	return cost
}

// GateCost pairs each head operation from the left (source) circuit with
// however many right-side (compiled) operations its cost says the
// compiler expanded it into: every call advances (1, Cost(op1)).
type GateCost struct {
	Cost CostFunction
}

func NewGateCost(cost CostFunction) GateCost {
	if cost == nil {
		cost = DefaultCostFunction
	}
	return GateCost{Cost: cost}
}

func (g GateCost) Name() string { return "gate_cost" }
func (g GateCost) Steps(left, right Advancer) (int, int) {
	lOp, lOK := left.PeekNext()
	if !lOK {
		return 0, right.Remaining()
	}
	cost := g.Cost
	if cost == nil {
		cost = DefaultCostFunction
	}
	c := cost(lOp)
	if c < 1 {
		c = 1
	}
	return 1, c
}

// Lookahead is the matrix-only scheme that peeks at head(op1) and
// head(op2⁻¹), provisionally multiplies each into the alternating
// checker's shared running product, and commits whichever produces the
// smaller resulting DD. Unlike every other Scheme it mutates that
// shared state itself, so Steps always reports (0, 0); the
// alternating checker drives it through Advance instead, which is the
// only place a *dd.Package and the live DD state are both available.
type Lookahead struct{}

func NewLookahead() Lookahead { return Lookahead{} }

func (l Lookahead) Name() string { return "lookahead" }

// Steps never decides anything on its own: a caller that only has
// Advancer views (gate counts, no DD access) cannot run the lookahead
// heuristic, so it always reports (0, 0) and leaves advancing to Advance.
func (l Lookahead) Steps(left, right Advancer) (int, int) { return 0, 0 }

// Advance builds the gate DD for the next forward operation on left and
// the next (already-inverted) operation on right, provisionally
// multiplies each into f, and commits whichever yields the smaller
// resulting diagram by node count, advancing only that side's cursor.
// If only one side has work left, that side is applied unconditionally.
func (l Lookahead) Advance(pkg *dd.Package, left, right *task.Manager, f dd.MEdge) (dd.MEdge, error) {
	leftDD, lok := left.PeekGateDD()
	rightDD, rok := right.PeekGateDD()

	switch {
	case !lok && !rok:
		return f, nil
	case !lok:
		right.Skip()
		return commit(pkg, f, pkg.Multiply(f, rightDD)), nil
	case !rok:
		left.Skip()
		return commit(pkg, f, pkg.Multiply(leftDD, f)), nil
	}

	cand1 := pkg.Multiply(leftDD, f)
	cand2 := pkg.Multiply(f, rightDD)

	var next dd.MEdge
	if pkg.Size(cand1) <= pkg.Size(cand2) {
		left.Skip()
		next = cand1
	} else {
		right.Skip()
		next = cand2
	}
	result := commit(pkg, f, next)
	pkg.GarbageCollect()
	return result, nil
}

func commit(pkg *dd.Package, old, next dd.MEdge) dd.MEdge {
	pkg.IncRefM(next)
	pkg.DecRefM(old)
	return next
}
