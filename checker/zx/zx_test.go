package zx

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

	ck := New(c1, c2, 0)
	verdict, err := ck.Run()
	require.NoError(t, err)
	assert.Equal(t, result.Equivalent, verdict)
}

func TestHHCancelsToIdentity(t *testing.T) {
	c1, err := circuit.New(circuit.Q(1)).H(0).H(0).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(1)).Build()
	require.NoError(t, err)

	ck := New(c1, c2, 0)
	verdict, err := ck.Run()
	require.NoError(t, err)
	assert.Equal(t, result.Equivalent, verdict)
}

func TestSSDoublesToZ(t *testing.T) {
	c1, err := circuit.New(circuit.Q(1)).S(0).S(0).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(1)).Z(0).Build()
	require.NoError(t, err)

	ck := New(c1, c2, 0)
	verdict, err := ck.Run()
	require.NoError(t, err)
	assert.Equal(t, result.Equivalent, verdict)
}

func TestXZCancelsUpToGlobalPhase(t *testing.T) {
	// ZXZ = -X: Z(0).X(0).Z(0) vs X(0) differ by a global phase of -1.
	c1, err := circuit.New(circuit.Q(1)).Z(0).X(0).Z(0).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(1)).X(0).Build()
	require.NoError(t, err)

	ck := New(c1, c2, 0)
	verdict, err := ck.Run()
	require.NoError(t, err)
	assert.Equal(t, result.EquivalentUpToGlobalPhase, verdict)
}

func TestDifferentSinglePauliGatesAreNotEquivalent(t *testing.T) {
	c1, err := circuit.New(circuit.Q(1)).X(0).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(1)).Z(0).Build()
	require.NoError(t, err)

	ck := New(c1, c2, 0)
	verdict, err := ck.Run()
	require.NoError(t, err)
	assert.NotEqual(t, result.Equivalent, verdict)
}

func TestToffoliIsUnsupported(t *testing.T) {
	c1, err := circuit.New(circuit.Q(3)).Toffoli(0, 1, 2).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(3)).Toffoli(0, 1, 2).Build()
	require.NoError(t, err)

	ck := New(c1, c2, 0)
	_, err = ck.Run()
	assert.ErrorIs(t, err, result.ErrUnsupportedByChecker)
}

func TestQubitCountMismatchReported(t *testing.T) {
	c1, err := circuit.New(circuit.Q(1)).H(0).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(2)).H(0).Build()
	require.NoError(t, err)

	ck := New(c1, c2, 0)
	_, err = ck.Run()
	assert.ErrorIs(t, err, result.ErrQubitCountMismatch)
}

func TestSignalDoneStopsEarly(t *testing.T) {
	c1, err := circuit.New(circuit.Q(1)).H(0).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(1)).H(0).Build()
	require.NoError(t, err)

	ck := New(c1, c2, 0)
	ck.SignalDone()
	verdict, err := ck.Run()
	require.NoError(t, err)
	assert.Equal(t, result.NoInformation, verdict)
}
