package circuit

import (
	"fmt"

	"github.com/kegliz/qcec/gate"
)

// Builder is a fluent declarative DSL for assembling a Circuit. It
// records the first error it hits and keeps accepting calls, so call
// sites chain gates freely and check Build's error once at the end.
type Builder interface {
	H(q int) Builder
	X(q int) Builder
	Y(q int) Builder
	Z(q int) Builder
	S(q int) Builder
	Sdg(q int) Builder
	T(q int) Builder
	Tdg(q int) Builder
	RX(q int, theta float64) Builder
	RY(q int, theta float64) Builder
	RZ(q int, theta float64) Builder

	CNOT(ctrl, tgt int) Builder
	CZ(ctrl, tgt int) Builder
	SWAP(q1, q2 int) Builder
	Toffoli(c1, c2, tgt int) Builder
	Fredkin(ctrl, t1, t2 int) Builder

	Apply(op gate.Operation) Builder
	Measure(q, cbit int) Builder

	MarkAncillary(q int) Builder
	MarkGarbage(q int) Builder

	Build() (*Circuit, error)
}

// Option configures a Builder at construction time.
type Option func(*config)

type config struct {
	qubits int
	clbits int
	name   string
}

func Q(n int) Option       { return func(c *config) { c.qubits = n } }
func C(n int) Option       { return func(c *config) { c.clbits = n } }
func Name(s string) Option { return func(c *config) { c.name = s } }

// New returns a fresh Builder over the requested qubits/classical bits.
func New(opts ...Option) Builder {
	cfg := config{qubits: 1}
	for _, o := range opts {
		o(&cfg)
	}
	return &b{
		qubits:    cfg.qubits,
		clbits:    cfg.clbits,
		name:      cfg.name,
		last:      make([]int, cfg.qubits),
		ancillary: make([]bool, cfg.qubits),
		garbage:   make([]bool, cfg.qubits),
	}
}

type b struct {
	qubits int
	clbits int
	name   string

	ops []gate.Operation
	err error
	out bool

	last      []int // index+1 of last op touching qubit, 0 = none (for hazard bookkeeping/no-op validation)
	ancillary []bool
	garbage   []bool
}

func (bld *b) fail() bool { return bld.out || bld.err != nil }

func (bld *b) bail(err error) Builder {
	if bld.err == nil {
		bld.err = err
	}
	return bld
}

func (bld *b) checkQubits(qs ...int) error {
	seen := make(map[int]bool, len(qs))
	for _, q := range qs {
		if q < 0 || q >= bld.qubits {
			return fmt.Errorf("circuit: qubit %d out of range [0,%d)", q, bld.qubits)
		}
		if seen[q] {
			return fmt.Errorf("circuit: qubit %d referenced twice in the same operation", q)
		}
		seen[q] = true
	}
	return nil
}

func (bld *b) Apply(op gate.Operation) Builder {
	if bld.fail() {
		return bld
	}
	qs := append([]int(nil), op.Targets()...)
	for _, ctl := range op.Controls() {
		qs = append(qs, ctl.Qubit)
	}
	if err := bld.checkQubits(qs...); err != nil {
		return bld.bail(err)
	}
	bld.ops = append(bld.ops, op)
	for _, q := range qs {
		bld.last[q] = len(bld.ops)
	}
	return bld
}

func (bld *b) H(q int) Builder             { return bld.Apply(gate.H(q)) }
func (bld *b) X(q int) Builder             { return bld.Apply(gate.X(q)) }
func (bld *b) Y(q int) Builder             { return bld.Apply(gate.Y(q)) }
func (bld *b) Z(q int) Builder             { return bld.Apply(gate.Z(q)) }
func (bld *b) S(q int) Builder             { return bld.Apply(gate.S(q)) }
func (bld *b) Sdg(q int) Builder           { return bld.Apply(gate.Sdg(q)) }
func (bld *b) T(q int) Builder             { return bld.Apply(gate.T(q)) }
func (bld *b) Tdg(q int) Builder           { return bld.Apply(gate.Tdg(q)) }
func (bld *b) RX(q int, t float64) Builder { return bld.Apply(gate.RX(q, t)) }
func (bld *b) RY(q int, t float64) Builder { return bld.Apply(gate.RY(q, t)) }
func (bld *b) RZ(q int, t float64) Builder { return bld.Apply(gate.RZ(q, t)) }

func (bld *b) CNOT(c, t int) Builder         { return bld.Apply(gate.CNOT(c, t)) }
func (bld *b) CZ(c, t int) Builder           { return bld.Apply(gate.CZ(c, t)) }
func (bld *b) SWAP(q1, q2 int) Builder       { return bld.Apply(gate.Swap(q1, q2)) }
func (bld *b) Toffoli(a, b2, t int) Builder  { return bld.Apply(gate.Toffoli(a, b2, t)) }
func (bld *b) Fredkin(c, t1, t2 int) Builder { return bld.Apply(gate.Fredkin(c, t1, t2)) }

func (bld *b) Measure(q, cbit int) Builder {
	if bld.fail() {
		return bld
	}
	if cbit < 0 || cbit >= bld.clbits {
		return bld.bail(fmt.Errorf("circuit: classical bit %d out of range [0,%d)", cbit, bld.clbits))
	}
	return bld.Apply(gate.Measure(q, cbit))
}

func (bld *b) MarkAncillary(q int) Builder {
	if bld.fail() {
		return bld
	}
	if q < 0 || q >= bld.qubits {
		return bld.bail(fmt.Errorf("circuit: qubit %d out of range [0,%d)", q, bld.qubits))
	}
	bld.ancillary[q] = true
	return bld
}

func (bld *b) MarkGarbage(q int) Builder {
	if bld.fail() {
		return bld
	}
	if q < 0 || q >= bld.qubits {
		return bld.bail(fmt.Errorf("circuit: qubit %d out of range [0,%d)", q, bld.qubits))
	}
	bld.garbage[q] = true
	return bld
}

func (bld *b) Build() (*Circuit, error) {
	if bld.out {
		return nil, fmt.Errorf("circuit: Build already called")
	}
	if bld.err != nil {
		return nil, bld.err
	}
	bld.out = true
	return &Circuit{
		nqubits:       bld.qubits,
		nclbits:       bld.clbits,
		ops:           append([]gate.Operation(nil), bld.ops...),
		ancillary:     append([]bool(nil), bld.ancillary...),
		garbage:       append([]bool(nil), bld.garbage...),
		initialLayout: Identity(bld.qubits),
		outputPerm:    Identity(bld.qubits),
		name:          bld.name,
	}, nil
}
