package manager

import (
	"context"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/kegliz/qcec/circuit"
)

// randomCircuit deterministically builds a circuit.Circuit from seed: a
// depth-gate sequence over nq qubits drawn from a small single- and
// two-qubit gate set, the way a fuzzer would generate an arbitrary
// program rather than hand-picking one.
func randomCircuit(seed int64, nq, depth int) *circuit.Circuit {
	rng := rand.New(rand.NewSource(seed))
	b := circuit.New(circuit.Q(nq))
	for i := 0; i < depth; i++ {
		q := rng.Intn(nq)
		switch rng.Intn(6) {
		case 0:
			b.H(q)
		case 1:
			b.X(q)
		case 2:
			b.Y(q)
		case 3:
			b.Z(q)
		case 4:
			b.S(q)
		default:
			if nq > 1 {
				t := (q + 1 + rng.Intn(nq-1)) % nq
				b.CNOT(q, t)
			} else {
				b.H(q)
			}
		}
	}
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}

// TestVerifyCircuitAgainstItselfIsAlwaysEquivalent checks that
// verify(C, C) == Equivalent for randomly generated programs C, using
// the construction checker (deterministic, no sampling) so the property
// can't pass by the
// simulation checker's probabilistic luck.
func TestVerifyCircuitAgainstItselfIsAlwaysEquivalent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("verify(C, C) == Equivalent", prop.ForAll(
		func(seed int64, nq, depth int) bool {
			c1 := randomCircuit(seed, nq, depth)
			c2 := randomCircuit(seed, nq, depth)

			cfg := quickConfig()
			cfg.Execution.RunSimulationChecker = false
			cfg.Execution.RunAlternatingChecker = false
			m, err := New(c1, c2, cfg, nil)
			if err != nil {
				return false
			}
			res, err := m.Run(context.Background())
			if err != nil {
				return false
			}
			return res.Criterion.IsEquivalent()
		},
		gen.Int64Range(0, 1<<30),
		gen.IntRange(1, 3),
		gen.IntRange(0, 12),
	))

	properties.TestingRun(t)
}
