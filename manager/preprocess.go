package manager

import (
	"fmt"
	"sort"

	"github.com/kegliz/qcec/circuit"
	"github.com/kegliz/qcec/gate"
	"github.com/kegliz/qcec/internal/config"
	"github.com/kegliz/qcec/result"
)

// preprocess runs the manager's optimization pipeline over c:
// detect unsupported dynamic circuits first (so
// every later pass can assume a static program), simplify the gate
// stream (diagonal-before-measure removal, SWAP reconstruction, single-
// qubit fusion), reorder for a canonical layering, then fold any
// trailing permutation into the circuit's bookkeeping instead of leaving
// it as literal SWAP gates.
func preprocess(c *circuit.Circuit, opt config.Optimizations) (*circuit.Circuit, error) {
	if err := detectDynamicCircuit(c); err != nil {
		return nil, err
	}

	out := c
	if opt.RemoveDiagonalGatesBeforeMeasure {
		out = removeDiagonalGatesBeforeMeasure(out)
	}
	if opt.ReconstructSWAPs {
		out = reconstructSWAPs(out)
	}
	if opt.FuseSingleQubitGates {
		out = fuseSingleQubitGates(out)
	}
	if opt.ReorderOperations {
		out = reorderOperations(out)
	}
	if opt.BackpropagateOutputPermutation || opt.ElidePermutations {
		out = elideTrailingSwaps(out)
	}
	return out, nil
}

// detectDynamicCircuit reports ErrUnsupportedDynamicCircuit if c uses a
// qubit (as target or control) after measuring it. Such a mid-circuit
// measurement has no unitary meaning, and this module does not transform
// dynamic circuits, so the manager rejects them before any checker runs.
func detectDynamicCircuit(c *circuit.Circuit) error {
	measured := make(map[int]bool)
	for _, op := range c.Ops() {
		if op.Kind() == gate.KindMeasure {
			measured[op.Targets()[0]] = true
			continue
		}
		for _, q := range opLines(op) {
			if measured[q] {
				return fmt.Errorf("manager: qubit %d is used after a mid-circuit measurement: %w", q, result.ErrUnsupportedDynamicCircuit)
			}
		}
	}
	return nil
}

// removeDiagonalGatesBeforeMeasure drops a diagonal single-qubit gate
// (Z/S/Sdg/T/Tdg/RZ) that sits directly on the wire entering a
// measurement of the same qubit, with no other operation reading that
// qubit in between: a diagonal gate only rotates phase, which
// computational-basis measurement cannot observe, so the gate is
// removable exactly where reconstructSWAPs and fuseSingleQubitGates also
// leave redundant structure behind.
func removeDiagonalGatesBeforeMeasure(c *circuit.Circuit) *circuit.Circuit {
	ops := c.Ops()
	lastOpOnQubit := make(map[int]int)
	drop := make(map[int]bool)
	for i, op := range ops {
		if op.Kind() == gate.KindMeasure {
			q := op.Targets()[0]
			if idx, ok := lastOpOnQubit[q]; ok && isDiagonalSingleQubit(ops[idx]) {
				drop[idx] = true
			}
		}
		for _, q := range op.Targets() {
			lastOpOnQubit[q] = i
		}
		for _, ctl := range op.Controls() {
			lastOpOnQubit[ctl.Qubit] = i
		}
	}
	if len(drop) == 0 {
		return c
	}
	return rebuild(c, func(i int, op gate.Operation) bool { return !drop[i] })
}

func isDiagonalSingleQubit(op gate.Operation) bool {
	if op.Kind() != gate.KindUnitary1 || len(op.Controls()) != 0 {
		return false
	}
	switch op.Type() {
	case "Z", "S", "Sdg", "T", "Tdg", "RZ":
		return true
	default:
		return false
	}
}

// reconstructSWAPs replaces the textbook three-CNOT decomposition of a
// SWAP (CNOT(a,b), CNOT(b,a), CNOT(a,b)) with a single Swap gate:
// a literal Swap carries
// its intent directly into scheme/task bookkeeping instead of forcing
// every consumer to pattern-match three CNOTs to notice a permutation.
func reconstructSWAPs(c *circuit.Circuit) *circuit.Circuit {
	ops := c.Ops()
	out := make([]gate.Operation, 0, len(ops))
	i := 0
	changed := false
	for i < len(ops) {
		if i+2 < len(ops) && isSwapTriple(ops[i], ops[i+1], ops[i+2]) {
			a, b := ops[i].Targets()[0], ops[i].Controls()[0].Qubit
			out = append(out, gate.Swap(a, b))
			i += 3
			changed = true
			continue
		}
		out = append(out, ops[i])
		i++
	}
	if !changed {
		return c
	}
	return replaceOps(c, out)
}

func isSwapTriple(a, b, c gate.Operation) bool {
	cnot := func(op gate.Operation) (ctrl, tgt int, ok bool) {
		if op.Type() != "CNOT" || len(op.Controls()) != 1 || !op.Controls()[0].Positive {
			return 0, 0, false
		}
		return op.Controls()[0].Qubit, op.Targets()[0], true
	}
	c1ctrl, c1tgt, ok1 := cnot(a)
	c2ctrl, c2tgt, ok2 := cnot(b)
	c3ctrl, c3tgt, ok3 := cnot(c)
	if !ok1 || !ok2 || !ok3 {
		return false
	}
	return c1ctrl == c2tgt && c1tgt == c2ctrl && c1ctrl == c3ctrl && c1tgt == c3tgt
}

// fuseSingleQubitGates merges consecutive uncontrolled single-qubit
// gates on the same qubit into one matrix, shrinking the DD work the
// checker has to do per line without changing the circuit's
// functionality.
func fuseSingleQubitGates(c *circuit.Circuit) *circuit.Circuit {
	ops := c.Ops()
	out := make([]gate.Operation, 0, len(ops))
	changed := false
	i := 0
	for i < len(ops) {
		op := ops[i]
		if !isFusableUnitary1(op) {
			out = append(out, op)
			i++
			continue
		}
		q := op.Targets()[0]
		mat := op.Matrix()
		j := i + 1
		for j < len(ops) && isFusableUnitary1(ops[j]) && ops[j].Targets()[0] == q {
			mat = mul2(ops[j].Matrix(), mat)
			j++
		}
		if j == i+1 {
			out = append(out, op)
			i++
			continue
		}
		out = append(out, gate.Fused("FUSED", q, mat))
		i = j
		changed = true
	}
	if !changed {
		return c
	}
	return replaceOps(c, out)
}

func isFusableUnitary1(op gate.Operation) bool {
	return op.Kind() == gate.KindUnitary1 && len(op.Controls()) == 0
}

func mul2(a, b [2][2]complex128) [2][2]complex128 {
	var out [2][2]complex128
	for r := 0; r < 2; r++ {
		for col := 0; col < 2; col++ {
			out[r][col] = a[r][0]*b[0][col] + a[r][1]*b[1][col]
		}
	}
	return out
}

// reorderOperations applies an as-soon-as-possible list scheduling pass:
// each operation moves as early in program order as its qubit
// dependencies allow, grouped into layers the same way Circuit.Depth
// computes them. This gives two functionally-identical circuits written
// with different (but equally valid) gate interleavings a better chance
// of producing structurally similar DD/ZX intermediate state.
func reorderOperations(c *circuit.Circuit) *circuit.Circuit {
	ops := c.Ops()
	n := len(ops)
	if n == 0 {
		return c
	}
	lastLayer := make(map[int]int)
	layerOf := make([]int, n)
	for i, op := range ops {
		layer := 0
		for _, q := range opLines(op) {
			if l, ok := lastLayer[q]; ok && l+1 > layer {
				layer = l + 1
			}
		}
		layerOf[i] = layer
		for _, q := range opLines(op) {
			lastLayer[q] = layer
		}
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return layerOf[order[a]] < layerOf[order[b]] })
	out := make([]gate.Operation, n)
	for i, idx := range order {
		out[i] = ops[idx]
	}
	return replaceOps(c, out)
}

func opLines(op gate.Operation) []int {
	lines := append([]int(nil), op.Targets()...)
	for _, ctl := range op.Controls() {
		lines = append(lines, ctl.Qubit)
	}
	return lines
}

// elideTrailingSwaps pops SWAP gates off the end of the circuit and
// folds them into the output permutation instead, the Go counterpart of
// backpropagateOutputPermutation/elidePermutations: a trailing
// permutation costs a checker nothing once it is bookkeeping rather than
// literal gates occupying the DD.
func elideTrailingSwaps(c *circuit.Circuit) *circuit.Circuit {
	ops := c.Ops()
	perm := c.OutputPermutation()
	i := len(ops)
	for i > 0 {
		op := ops[i-1]
		if op.Kind() != gate.KindSwap || len(op.Controls()) != 0 {
			break
		}
		t := op.Targets()
		perm.Swap(t[0], t[1])
		i--
	}
	if i == len(ops) {
		return c
	}
	out := replaceOps(c, append([]gate.Operation(nil), ops[:i]...))
	out.SetOutputPermutation(perm)
	return out
}

// rebuild returns a clone of c keeping only the operations keep reports
// true for, called with their original index.
func rebuild(c *circuit.Circuit, keep func(i int, op gate.Operation) bool) *circuit.Circuit {
	ops := c.Ops()
	kept := make([]gate.Operation, 0, len(ops))
	for i, op := range ops {
		if keep(i, op) {
			kept = append(kept, op)
		}
	}
	return replaceOps(c, kept)
}

func replaceOps(c *circuit.Circuit, ops []gate.Operation) *circuit.Circuit {
	return circuit.FromOps(c, ops)
}
