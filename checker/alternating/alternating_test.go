package alternating

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
	assert.True(t, verdict.IsEquivalent(), "got %s", verdict)
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

func TestReversedControlCNOTIsEquivalent(t *testing.T) {
	c1, err := circuit.New(circuit.Q(2)).CNOT(0, 1).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(2)).H(0).H(1).CNOT(1, 0).H(0).H(1).Build()
	require.NoError(t, err)
	ck := New(c1, c2, nil, 0)
	verdict, err := ck.Run()
	require.NoError(t, err)
	assert.True(t, verdict.IsEquivalent(), "got %s", verdict)
}
