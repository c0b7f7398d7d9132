package construction

import (
	"testing"

	"github.com/kegliz/qcec/circuit"
	"github.com/kegliz/qcec/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdenticalCircuitsAreEquivalent(t *testing.T) {
	c1, err := circuit.New(circuit.Q(2)).H(0).CNOT(0, 1).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(2)).H(0).CNOT(0, 1).Build()
	require.NoError(t, err)
	ck := New(c1, c2, nil, 0)
	verdict, err := ck.Run()
	require.NoError(t, err)
	assert.Equal(t, result.Equivalent, verdict)
}

func TestDifferentCircuitsAreNotEquivalent(t *testing.T) {
	c1, err := circuit.New(circuit.Q(1)).H(0).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(1)).X(0).Build()
	require.NoError(t, err)
	ck := New(c1, c2, nil, 0)
	verdict, err := ck.Run()
	require.NoError(t, err)
	assert.Equal(t, result.NotEquivalent, verdict)
}

func TestQubitCountMismatchReported(t *testing.T) {
	c1, err := circuit.New(circuit.Q(1)).H(0).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(2)).H(0).Build()
	require.NoError(t, err)
	ck := New(c1, c2, nil, 0)
	_, err = ck.Run()
	assert.ErrorIs(t, err, result.ErrQubitCountMismatch)
}

func TestPartialEquivalenceSumsOutGarbageLines(t *testing.T) {
	// The circuits agree on qubit 0 and differ only by an X on qubit 1,
	// which both declare garbage: inequivalent as full unitaries,
	// equivalent once the garbage line's contributions are summed out on
	// both sides.
	c1, err := circuit.New(circuit.Q(2)).X(0).MarkGarbage(1).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(2)).X(0).X(1).MarkGarbage(1).Build()
	require.NoError(t, err)

	strict := New(c1, c2, nil, 0)
	verdict, err := strict.Run()
	require.NoError(t, err)
	assert.Equal(t, result.NotEquivalent, verdict)

	partial := New(c1, c2, nil, 0)
	partial.PartialEquivalence = true
	verdict, err = partial.Run()
	require.NoError(t, err)
	assert.Equal(t, result.Equivalent, verdict)
}

func TestEquivalentUpToGlobalPhase(t *testing.T) {
	// Z then X then Z is X up to a global phase of -1 (ZXZ = -X).
	c1, err := circuit.New(circuit.Q(1)).Z(0).X(0).Z(0).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(1)).X(0).Build()
	require.NoError(t, err)
	ck := New(c1, c2, nil, 0)
	verdict, err := ck.Run()
	require.NoError(t, err)
	assert.Equal(t, result.EquivalentUpToGlobalPhase, verdict)
}
