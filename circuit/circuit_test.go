package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderBuildsBellPair(t *testing.T) {
	c, err := New(Q(2), C(2), Name("bell")).H(0).CNOT(0, 1).Measure(0, 0).Measure(1, 1).Build()
	require.NoError(t, err)
	assert.Equal(t, 2, c.Qubits())
	assert.Equal(t, 2, c.Clbits())
	assert.Equal(t, 4, len(c.Ops()))
	assert.Equal(t, "bell", c.Name())
}

func TestBuilderRejectsOutOfRangeQubit(t *testing.T) {
	_, err := New(Q(2)).H(5).Build()
	require.Error(t, err)
}

func TestBuilderRejectsDuplicateQubitInGate(t *testing.T) {
	_, err := New(Q(2)).CNOT(0, 0).Build()
	require.Error(t, err)
}

func TestBuilderRejectsBadClbit(t *testing.T) {
	_, err := New(Q(1), C(1)).Measure(0, 5).Build()
	require.Error(t, err)
}

func TestInvertReversesAndNegates(t *testing.T) {
	c, err := New(Q(1)).H(0).S(0).Build()
	require.NoError(t, err)
	inv, err := c.Invert()
	require.NoError(t, err)
	require.Len(t, inv.Ops(), 2)
	assert.Equal(t, "Sdg", inv.Ops()[0].Type())
	assert.Equal(t, "H", inv.Ops()[1].Type())
}

func TestInvertRejectsMeasurement(t *testing.T) {
	c, err := New(Q(1), C(1)).H(0).Measure(0, 0).Build()
	require.NoError(t, err)
	_, err = c.Invert()
	assert.Error(t, err)
}

func TestDepthCountsSharedQubitChains(t *testing.T) {
	c, err := New(Q(2)).H(0).H(1).CNOT(0, 1).Build()
	require.NoError(t, err)
	assert.Equal(t, 2, c.Depth())
}

func TestStripFinalMeasurementsMarksGarbage(t *testing.T) {
	c, err := New(Q(1), C(1)).H(0).Measure(0, 0).Build()
	require.NoError(t, err)
	stripped := c.StripFinalMeasurements()
	assert.Len(t, stripped.Ops(), 1)
	assert.True(t, stripped.IsGarbage(0))
}

func TestMarkAncillaryAndGarbage(t *testing.T) {
	c, err := New(Q(2)).MarkAncillary(1).MarkGarbage(1).H(0).Build()
	require.NoError(t, err)
	assert.True(t, c.IsAncillary(1))
	assert.True(t, c.IsGarbage(1))
	assert.False(t, c.IsAncillary(0))
}

func TestPermutationComposeAndInverse(t *testing.T) {
	p := Permutation{0: 1, 1: 0}
	q := Permutation{0: 1, 1: 0}
	composed := p.Compose(q)
	assert.True(t, composed.IsIdentity())
	inv := p.Inverse()
	assert.Equal(t, 1, inv.Apply(0))
}
