// Package stategen generates the initial state vectors the simulation
// checker feeds through both circuits. Different
// generators trade off how adversarial the chosen states are: a
// computational basis state can miss phase-only bugs a Stabilizer or
// Random1QBasis state would catch.
package stategen

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/kegliz/qcec/dd"
	"github.com/kegliz/qcec/gate"
)

// StateType selects which family of initial states Generate draws from;
// Configuration.Simulation.StateType names the same set.
type StateType int

const (
	ComputationalBasis StateType = iota
	Random1QBasis
	Stabilizer
)

// oneQubitBasisStates holds the six named single-qubit basis states
// {|0>,|1>,|+>,|->,|R>,|L>} a Random1QBasis draw chooses uniformly from per
// qubit, each as an [amp0, amp1] pair.
var oneQubitBasisStates = [6][2]complex128{
	{1, 0},
	{0, 1},
	{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)},
	{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)},
	{complex(1/math.Sqrt2, 0), complex(0, 1/math.Sqrt2)},
	{complex(1/math.Sqrt2, 0), complex(0, -1/math.Sqrt2)},
}

// ErrBasisStatesExhausted is returned once every computational basis state
// over the requested qubit count has already been handed out by this
// Generator.
var ErrBasisStatesExhausted = errors.New("stategen: every computational basis state has already been sampled")

// Generator draws the simulation checker's initial state vectors. A single
// Generator must be reused across every round of one equivalence check:
// ComputationalBasis tracks which states it has already handed out so the
// same state is never sampled twice in a single run, which
// only holds if the Generator — and the RNG driving it — survives the
// whole run instead of being rebuilt every round.
type Generator struct {
	rng  *rand.Rand
	seen map[uint64]struct{}
}

// New returns a Generator seeded from seed; seed 0 asks for a
// nondeterministic run and draws the actual seed from the wall clock.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng:  rand.New(rand.NewSource(seed)),
		seen: make(map[uint64]struct{}),
	}
}

// Generate returns one initial state vector DD of the requested type.
// Only the listed data qubits are randomized; every other line of the
// package (ancillary qubits included) stays |0>.
func (g *Generator) Generate(pkg *dd.Package, stype StateType, data []int) (dd.VEdge, error) {
	switch stype {
	case Random1QBasis:
		return g.random1QBasisState(pkg, data), nil
	case Stabilizer:
		return g.stabilizerState(pkg, data), nil
	default:
		return g.computationalBasisState(pkg, data)
	}
}

// computationalBasisState draws a computational basis state over the data
// qubits this Generator has never returned before, erroring once all
// 2^len(data) states have been exhausted.
func (g *Generator) computationalBasisState(pkg *dd.Package, data []int) (dd.VEdge, error) {
	if len(data) > 63 {
		return dd.VEdge{}, errors.New("stategen: computational basis generation supports at most 63 data qubits")
	}
	maxStates := uint64(1) << uint(len(data))
	if uint64(len(g.seen)) >= maxStates {
		return dd.VEdge{}, ErrBasisStatesExhausted
	}
	var candidate uint64
	for {
		candidate = uint64(g.rng.Int63n(int64(maxStates)))
		if _, dup := g.seen[candidate]; !dup {
			break
		}
	}
	g.seen[candidate] = struct{}{}
	bits := make([]bool, pkg.NQubits)
	for i, q := range data {
		bits[q] = candidate&(uint64(1)<<uint(i)) != 0
	}
	return pkg.MakeBasisState(bits), nil
}

// random1QBasisState draws, independently per data qubit, a uniform choice
// over the six named single-qubit basis states {|0>,|1>,|+>,|->,|R>,|L>},
// tensored together via MakeProductState.
func (g *Generator) random1QBasisState(pkg *dd.Package, data []int) dd.VEdge {
	bases := make([][2]complex128, pkg.NQubits)
	for q := range bases {
		bases[q] = [2]complex128{1, 0}
	}
	for _, q := range data {
		bases[q] = oneQubitBasisStates[g.rng.Intn(len(oneQubitBasisStates))]
	}
	return pkg.MakeProductState(bases)
}

// stabilizerState simulates a random Clifford circuit of depth
// round(log2(n_data)) (at least 1) against |0...0>, touching only the
// data qubits. Each layer applies an independently random single-qubit
// Clifford gate (chosen from {I, H, S, HS}) to every data qubit, then a
// brickwork pattern of CNOTs alternating between even- and odd-indexed
// data pairs, so multi-qubit runs genuinely entangle instead of staying a
// product state.
func (g *Generator) stabilizerState(pkg *dd.Package, data []int) dd.VEdge {
	state := pkg.MakeZeroState()
	if len(data) < 1 {
		return state
	}
	depth := int(math.Round(math.Log2(float64(len(data)))))
	if depth < 1 {
		depth = 1
	}
	for layer := 0; layer < depth; layer++ {
		for _, q := range data {
			state = g.applyRandomClifford1Q(pkg, state, q)
		}
		offset := layer % 2
		for i := offset; i+1 < len(data); i += 2 {
			state = pkg.MultiplyVec(pkg.MakeGateDD(gate.CNOT(data[i], data[i+1])), state)
		}
	}
	return state
}

func (g *Generator) applyRandomClifford1Q(pkg *dd.Package, state dd.VEdge, q int) dd.VEdge {
	switch g.rng.Intn(4) {
	case 1:
		state = pkg.MultiplyVec(pkg.MakeGateDD(gate.H(q)), state)
	case 2:
		state = pkg.MultiplyVec(pkg.MakeGateDD(gate.S(q)), state)
	case 3:
		state = pkg.MultiplyVec(pkg.MakeGateDD(gate.H(q)), state)
		state = pkg.MultiplyVec(pkg.MakeGateDD(gate.S(q)), state)
	}
	return state
}
