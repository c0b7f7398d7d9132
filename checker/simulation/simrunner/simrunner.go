// Package simrunner wraps github.com/itsubaki/q as an independent
// simulator the simulation checker's tests cross-check against: two
// implementations of "apply this circuit to this state" agreeing is much
// stronger evidence than either one self-consistently agreeing with
// itself.
package simrunner

import (
	"fmt"

	"github.com/itsubaki/q"
	"github.com/kegliz/qcec/circuit"
	"github.com/kegliz/qcec/gate"
)

// Bitstring runs c against the all-zero initial state on the independent
// simulator, measures every qubit, and returns the outcome as a string
// with qubit 0 first. It is only a meaningful cross-check for circuits
// whose computational-basis output is deterministic (X/CNOT/Toffoli/SWAP
// chains); a superposed output would make the measured string random.
func Bitstring(c *circuit.Circuit) (string, error) {
	sim := q.New()
	qs := sim.ZeroWith(c.Qubits())

	for i, op := range c.Ops() {
		if err := applyOp(sim, qs, op); err != nil {
			return "", fmt.Errorf("simrunner: operation %d: %w", i, err)
		}
	}

	bits := make([]byte, c.Qubits())
	for i := range qs {
		if sim.Measure(qs[i]).IsOne() {
			bits[i] = '1'
		} else {
			bits[i] = '0'
		}
	}
	return string(bits), nil
}

func applyOp(sim *q.Q, qs []*q.Qubit, op gate.Operation) error {
	for _, t := range op.Targets() {
		if t < 0 || t >= len(qs) {
			return fmt.Errorf("qubit %d out of range", t)
		}
	}
	for _, c := range op.Controls() {
		if c.Qubit < 0 || c.Qubit >= len(qs) {
			return fmt.Errorf("control qubit %d out of range", c.Qubit)
		}
	}

	if op.Kind() == gate.KindMeasure {
		sim.Measure(qs[op.Targets()[0]])
		return nil
	}

	if op.Kind() == gate.KindSwap {
		return applySwap(sim, qs, op)
	}

	return applyControlledUnitary1(sim, qs, op)
}

func applySwap(sim *q.Q, qs []*q.Qubit, op gate.Operation) error {
	t := op.Targets()
	a, b := qs[t[0]], qs[t[1]]
	ctrls := op.Controls()
	if len(ctrls) == 0 {
		sim.Swap(a, b)
		return nil
	}
	if len(ctrls) != 1 || !ctrls[0].Positive {
		return fmt.Errorf("simrunner: only a single positive-polarity controlled SWAP is supported")
	}
	ctrl := qs[ctrls[0].Qubit]
	// Fredkin via the standard CNOT-Toffoli-CNOT decomposition.
	sim.CNOT(b, a)
	sim.Toffoli(ctrl, a, b)
	sim.CNOT(b, a)
	return nil
}

func applyControlledUnitary1(sim *q.Q, qs []*q.Qubit, op gate.Operation) error {
	target := qs[op.Targets()[0]]
	ctrls := op.Controls()
	switch len(ctrls) {
	case 0:
		return applyBase(sim, target, op.Type())
	case 1:
		if !ctrls[0].Positive {
			return fmt.Errorf("simrunner: negative-polarity controls are not supported by this cross-check runner")
		}
		return applyControlled1(sim, qs[ctrls[0].Qubit], target, op.Type())
	case 2:
		if !ctrls[0].Positive || !ctrls[1].Positive {
			return fmt.Errorf("simrunner: negative-polarity controls are not supported by this cross-check runner")
		}
		if op.Type() != "TOFFOLI" {
			return fmt.Errorf("simrunner: two-control gate %s not supported", op.Type())
		}
		sim.Toffoli(qs[ctrls[0].Qubit], qs[ctrls[1].Qubit], target)
		return nil
	default:
		return fmt.Errorf("simrunner: %d controls not supported", len(ctrls))
	}
}

func applyBase(sim *q.Q, target *q.Qubit, name string) error {
	switch name {
	case "H":
		sim.H(target)
	case "X":
		sim.X(target)
	case "Y":
		sim.Y(target)
	case "Z":
		sim.Z(target)
	case "S":
		sim.S(target)
	default:
		return fmt.Errorf("gate %s not supported by this cross-check runner", name)
	}
	return nil
}

func applyControlled1(sim *q.Q, ctrl, target *q.Qubit, name string) error {
	switch name {
	case "CNOT":
		sim.CNOT(ctrl, target)
	case "CZ":
		sim.CZ(ctrl, target)
	default:
		return fmt.Errorf("controlled gate %s not supported by this cross-check runner", name)
	}
	return nil
}
