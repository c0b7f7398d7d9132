package simulation

import (
	"testing"

	"github.com/kegliz/qcec/checker/simulation/simrunner"
	"github.com/kegliz/qcec/circuit"
	"github.com/kegliz/qcec/dd"
	"github.com/kegliz/qcec/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ddBitstring forward-simulates c from |0...0> on the decision-diagram
// engine and reads the (deterministic) resulting basis state back as a
// qubit-0-first bit string.
func ddBitstring(t *testing.T, c *circuit.Circuit) string {
	t.Helper()
	pkg := dd.NewPackage(c.Qubits(), dd.DefaultEps)
	m := task.NewVectorManager(pkg, c, task.Forward, pkg.MakeZeroState())
	require.NoError(t, m.Finish())
	vec := pkg.GetVector(m.GetVector())

	idx := -1
	for i, amp := range vec {
		if real(amp)*real(amp)+imag(amp)*imag(amp) > 0.5 {
			require.Equal(t, -1, idx, "output state is not a single basis state")
			idx = i
		}
	}
	require.NotEqual(t, -1, idx, "output state has no dominant amplitude")

	bits := make([]byte, c.Qubits())
	for q := 0; q < c.Qubits(); q++ {
		if idx&(1<<uint(q)) != 0 {
			bits[q] = '1'
		} else {
			bits[q] = '0'
		}
	}
	return string(bits)
}

// TestDDSimulationMatchesIndependentSimulator runs classical-reversible
// circuits through both the DD vector engine and the itsubaki/q
// cross-check runner and requires identical basis-state outcomes.
func TestDDSimulationMatchesIndependentSimulator(t *testing.T) {
	cases := []struct {
		name  string
		build func() (*circuit.Circuit, error)
	}{
		{"x chain", func() (*circuit.Circuit, error) {
			return circuit.New(circuit.Q(3)).X(0).X(2).Build()
		}},
		{"cnot ripple", func() (*circuit.Circuit, error) {
			return circuit.New(circuit.Q(3)).X(0).CNOT(0, 1).CNOT(1, 2).Build()
		}},
		{"toffoli fires", func() (*circuit.Circuit, error) {
			return circuit.New(circuit.Q(3)).X(0).X(1).Toffoli(0, 1, 2).Build()
		}},
		{"toffoli held", func() (*circuit.Circuit, error) {
			return circuit.New(circuit.Q(3)).X(0).Toffoli(0, 1, 2).Build()
		}},
		{"swap moves excitation", func() (*circuit.Circuit, error) {
			return circuit.New(circuit.Q(3)).X(0).SWAP(0, 2).Build()
		}},
		{"fredkin routed", func() (*circuit.Circuit, error) {
			return circuit.New(circuit.Q(3)).X(0).X(1).Fredkin(0, 1, 2).Build()
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := tc.build()
			require.NoError(t, err)
			want, err := simrunner.Bitstring(c)
			require.NoError(t, err)
			assert.Equal(t, want, ddBitstring(t, c))
		})
	}
}
