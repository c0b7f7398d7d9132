package task

import (
	"testing"

	"github.com/kegliz/qcec/circuit"
	"github.com/kegliz/qcec/dd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerFinishAccumulatesIdentityForSelfInverseCircuit(t *testing.T) {
	c, err := circuit.New(circuit.Q(1)).H(0).H(0).Build()
	require.NoError(t, err)
	pkg := dd.NewPackage(1, dd.DefaultEps)
	m := NewManager(pkg, c, Forward)
	require.NoError(t, m.Finish())
	assert.True(t, pkg.IsCloseToIdentity(m.GetDD(), 1e-6))
}

func TestManagerBackwardDirectionInvertsEachGate(t *testing.T) {
	c, err := circuit.New(circuit.Q(1)).S(0).Build()
	require.NoError(t, err)
	pkg := dd.NewPackage(1, dd.DefaultEps)
	fwd := NewManager(pkg, c, Forward)
	require.NoError(t, fwd.Finish())
	bwd := NewManager(pkg, c, Backward)
	require.NoError(t, bwd.Finish())
	combined := pkg.Multiply(bwd.GetDD(), fwd.GetDD())
	assert.True(t, pkg.IsCloseToIdentity(combined, 1e-6))
}

func TestManagerAdvanceStopsAtCircuitEnd(t *testing.T) {
	c, err := circuit.New(circuit.Q(1)).H(0).Build()
	require.NoError(t, err)
	pkg := dd.NewPackage(1, dd.DefaultEps)
	m := NewManager(pkg, c, Forward)
	require.NoError(t, m.Advance(10))
	assert.True(t, m.Finished())
}

func TestSwapsFoldIntoLivePermutation(t *testing.T) {
	c, err := circuit.New(circuit.Q(2)).SWAP(0, 1).Build()
	require.NoError(t, err)
	pkg := dd.NewPackage(2, dd.DefaultEps)
	m := NewManager(pkg, c, Forward)
	require.NoError(t, m.Finish())
	// The SWAP never touches the DD; it only relabels the live permutation.
	assert.True(t, pkg.IsCloseToIdentity(m.GetDD(), 1e-6))
	assert.Equal(t, 1, m.Permutation().Apply(0))
	assert.Equal(t, 0, m.Permutation().Apply(1))
}

func TestVectorManagerAppliesSwapLiterally(t *testing.T) {
	c, err := circuit.New(circuit.Q(2)).X(0).SWAP(0, 1).Build()
	require.NoError(t, err)
	pkg := dd.NewPackage(2, dd.DefaultEps)
	m := NewVectorManager(pkg, c, Forward, pkg.MakeZeroState())
	require.NoError(t, m.Finish())
	vec := pkg.GetVector(m.GetVector())
	// |10> after the excitation moves from qubit 0 to qubit 1.
	assert.InDelta(t, 1, real(vec[2]), 1e-9)
}

func TestVectorManagerAppliesGatesToState(t *testing.T) {
	c, err := circuit.New(circuit.Q(1)).X(0).Build()
	require.NoError(t, err)
	pkg := dd.NewPackage(1, dd.DefaultEps)
	zero := pkg.MakeZeroState()
	m := NewVectorManager(pkg, c, Forward, zero)
	require.NoError(t, m.Finish())
	vec := pkg.GetVector(m.GetVector())
	assert.InDelta(t, 0, real(vec[0]), 1e-9)
	assert.InDelta(t, 1, real(vec[1]), 1e-9)
}
