package circuit

import (
	"fmt"

	"github.com/kegliz/qcec/gate"
)

// Circuit is an immutable, validated sequence of gate.Operation values over
// a fixed number of qubits and classical bits, together with the layout
// metadata a compiler front-end attaches: which logical qubits are
// ancillary (initialised to |0>, free to be assumed unentangled on input),
// which are garbage (their final state is irrelevant to the functionality
// under test), and the initial/output permutations mapping circuit qubits
// to physical DD line indices.
type Circuit struct {
	nqubits int
	nclbits int

	ops []gate.Operation

	ancillary []bool // per circuit-qubit index
	garbage   []bool

	initialLayout Permutation
	outputPerm    Permutation

	name string
}

// Qubits reports the number of qubits.
func (c *Circuit) Qubits() int { return c.nqubits }

// Clbits reports the number of classical bits.
func (c *Circuit) Clbits() int { return c.nclbits }

// Ops returns the gate sequence in program order. The returned slice must
// not be mutated by callers.
func (c *Circuit) Ops() []gate.Operation { return c.ops }

// Name is a human-readable label, carried through into result.Results.
func (c *Circuit) Name() string { return c.name }

// IsAncillary reports whether circuit-qubit q is an ancilla.
func (c *Circuit) IsAncillary(q int) bool { return q < len(c.ancillary) && c.ancillary[q] }

// IsGarbage reports whether circuit-qubit q's final value is don't-care.
func (c *Circuit) IsGarbage(q int) bool { return q < len(c.garbage) && c.garbage[q] }

// IsIdle reports whether no operation in the circuit ever targets or
// controls on q, computed rather than stored: idle
// qubits are the ones step 9 of the manager's preprocessing pipeline
// strips before qubit-count alignment runs.
func (c *Circuit) IsIdle(q int) bool {
	for _, op := range c.ops {
		for _, t := range op.Targets() {
			if t == q {
				return false
			}
		}
		for _, ctl := range op.Controls() {
			if ctl.Qubit == q {
				return false
			}
		}
	}
	return true
}

// SetAncillary marks (or unmarks) circuit-qubit q as ancillary, used by
// the manager's qubit-count alignment pass (I4) to annotate the extra
// qubits padded onto the smaller circuit and the pre-existing extra
// qubits of the larger one.
func (c *Circuit) SetAncillary(q int, v bool) {
	if q >= 0 && q < len(c.ancillary) {
		c.ancillary[q] = v
	}
}

// SetGarbage marks (or unmarks) circuit-qubit q as garbage.
func (c *Circuit) SetGarbage(q int, v bool) {
	if q >= 0 && q < len(c.garbage) {
		c.garbage[q] = v
	}
}

// NumAncillary counts ancillary qubits.
func (c *Circuit) NumAncillary() int {
	n := 0
	for _, a := range c.ancillary {
		if a {
			n++
		}
	}
	return n
}

// NumGarbage counts garbage qubits.
func (c *Circuit) NumGarbage() int {
	n := 0
	for _, g := range c.garbage {
		if g {
			n++
		}
	}
	return n
}

// InitialLayout returns the permutation mapping circuit qubits to DD lines
// at the start of the circuit.
func (c *Circuit) InitialLayout() Permutation { return c.initialLayout.Clone() }

// OutputPermutation returns the permutation mapping circuit qubits to DD
// lines at the end of the circuit (after any SWAP reconstruction has been
// folded into the layout by the manager's preprocessing pipeline).
func (c *Circuit) OutputPermutation() Permutation { return c.outputPerm.Clone() }

// SetOutputPermutation replaces the output permutation; used by the
// manager's elide_permutations / backpropagate_output_permutation passes.
func (c *Circuit) SetOutputPermutation(p Permutation) { c.outputPerm = p.Clone() }

// Depth returns the number of layers in the circuit: the longest chain of
// operations that share a qubit, counted the way a scheduler would draw it.
func (c *Circuit) Depth() int {
	lastLayer := make([]int, c.nqubits)
	maxLayer := 0
	for _, op := range c.ops {
		lines := op.Targets()
		for _, ctl := range op.Controls() {
			lines = append(lines, ctl.Qubit)
		}
		layer := 0
		for _, q := range lines {
			if q >= 0 && q < len(lastLayer) && lastLayer[q] > layer {
				layer = lastLayer[q]
			}
		}
		layer++
		for _, q := range lines {
			if q >= 0 && q < len(lastLayer) {
				lastLayer[q] = layer
			}
		}
		if layer > maxLayer {
			maxLayer = layer
		}
	}
	return maxLayer
}

// NumGates counts operations, excluding measurements.
func (c *Circuit) NumGates() int {
	n := 0
	for _, op := range c.ops {
		if op.Kind() != gate.KindMeasure {
			n++
		}
	}
	return n
}

// FromOps returns a clone of base with its operation list replaced by
// ops, keeping every other field (qubit/clbit counts, ancillary/garbage
// marks, layout permutations, name) unchanged. The manager's
// preprocessing pipeline uses this to rewrite a circuit's gate stream
// (fusing, reordering, eliding SWAPs into the output permutation)
// without hand-rolling Circuit's private fields from another package.
func FromOps(base *Circuit, ops []gate.Operation) *Circuit {
	out := base.Clone()
	out.ops = append([]gate.Operation(nil), ops...)
	return out
}

// Invert returns a new Circuit representing the adjoint: operations
// reversed in program order, each individually inverted. Invert on a
// circuit containing a measurement is an error — measurement is not
// unitary and the caller (the alternating/construction checkers) must
// strip measurements before this point, per the manager's preprocessing
// pipeline.
func (c *Circuit) Invert() (*Circuit, error) {
	inverted := make([]gate.Operation, len(c.ops))
	for i, op := range c.ops {
		if op.Kind() == gate.KindMeasure {
			return nil, fmt.Errorf("circuit: cannot invert circuit containing measurement on qubit %d", op.Targets()[0])
		}
		inverted[len(c.ops)-1-i] = op.Invert()
	}
	clone := c.Clone()
	clone.ops = inverted
	clone.initialLayout, clone.outputPerm = clone.outputPerm, clone.initialLayout
	return clone, nil
}

// Clone returns a deep-enough copy: slices are independent, Operation
// values are immutable and safe to share.
func (c *Circuit) Clone() *Circuit {
	out := &Circuit{
		nqubits:       c.nqubits,
		nclbits:       c.nclbits,
		ops:           append([]gate.Operation(nil), c.ops...),
		ancillary:     append([]bool(nil), c.ancillary...),
		garbage:       append([]bool(nil), c.garbage...),
		initialLayout: c.initialLayout.Clone(),
		outputPerm:    c.outputPerm.Clone(),
		name:          c.name,
	}
	return out
}

// StripFinalMeasurements returns a copy with any measurement that is not
// followed by a further operation on the same qubit removed, and marks
// those qubits as garbage.
func (c *Circuit) StripFinalMeasurements() *Circuit {
	lastMeasure := make(map[int]int) // qubit -> op index of its trailing measurement
	for i, op := range c.ops {
		if op.Kind() == gate.KindMeasure {
			lastMeasure[op.Targets()[0]] = i
		} else {
			for _, q := range op.Targets() {
				delete(lastMeasure, q)
			}
			for _, ctl := range op.Controls() {
				delete(lastMeasure, ctl.Qubit)
			}
		}
	}
	drop := make(map[int]bool, len(lastMeasure))
	for _, idx := range lastMeasure {
		drop[idx] = true
	}
	out := c.Clone()
	kept := out.ops[:0]
	for i, op := range c.ops {
		if drop[i] {
			q := op.Targets()[0]
			if q < len(out.garbage) {
				out.garbage[q] = true
			}
			continue
		}
		kept = append(kept, op)
	}
	out.ops = kept
	return out
}

// WithQubits returns a copy widened to n qubits (n must be >= Qubits()).
// Every new index is marked ancillary and garbage, the shape the
// manager's qubit-count alignment pass (I4) needs when padding the
// smaller of two circuits up to the larger's width: a padded qubit
// carries no operations, so it is trivially |0>-initialised and its
// (nonexistent) output is don't-care.
func (c *Circuit) WithQubits(n int) *Circuit {
	if n <= c.nqubits {
		return c.Clone()
	}
	out := c.Clone()
	for q := out.nqubits; q < n; q++ {
		out.ancillary = append(out.ancillary, true)
		out.garbage = append(out.garbage, true)
		out.initialLayout[q] = q
		out.outputPerm[q] = q
	}
	out.nqubits = n
	return out
}

// StripIdleQubits returns a copy with every idle logical qubit removed
// and the remaining ones compacted into [0, k), remapping operations
// and both layout permutations accordingly. A circuit with no idle
// qubits is returned unchanged (not cloned).
func (c *Circuit) StripIdleQubits() *Circuit {
	keep := make([]int, 0, c.nqubits)
	for q := 0; q < c.nqubits; q++ {
		if !c.IsIdle(q) {
			keep = append(keep, q)
		}
	}
	if len(keep) == c.nqubits {
		return c
	}
	remap := make(map[int]int, len(keep))
	for newIdx, oldIdx := range keep {
		remap[oldIdx] = newIdx
	}
	mapQubit := func(q int) int {
		if nq, ok := remap[q]; ok {
			return nq
		}
		return q
	}

	newOps := make([]gate.Operation, len(c.ops))
	for i, op := range c.ops {
		newOps[i] = gate.Remap(op, mapQubit)
	}

	newAnc := make([]bool, len(keep))
	newGar := make([]bool, len(keep))
	for newIdx, oldIdx := range keep {
		newAnc[newIdx] = c.ancillary[oldIdx]
		newGar[newIdx] = c.garbage[oldIdx]
	}

	return &Circuit{
		nqubits:       len(keep),
		nclbits:       c.nclbits,
		ops:           newOps,
		ancillary:     newAnc,
		garbage:       newGar,
		initialLayout: remapPermutation(c.initialLayout, remap),
		outputPerm:    remapPermutation(c.outputPerm, remap),
		name:          c.name,
	}
}

// remapPermutation drops entries for qubits that idle-stripping removed
// and renumbers the survivors' keys and values through remap, assuming
// (as idle qubits do) that an unmapped physical line was idle too.
func remapPermutation(p Permutation, remap map[int]int) Permutation {
	out := make(Permutation, len(remap))
	for k, v := range p {
		nk, kok := remap[k]
		if !kok {
			continue
		}
		nv, vok := remap[v]
		if !vok {
			nv = nk
		}
		out[nk] = nv
	}
	for _, nk := range remap {
		if _, ok := out[nk]; !ok {
			out[nk] = nk
		}
	}
	return out
}
