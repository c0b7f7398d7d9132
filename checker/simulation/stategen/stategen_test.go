package stategen

import (
	"errors"
	"testing"

	"github.com/kegliz/qcec/dd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vectorNorm(vec []complex128) float64 {
	var sum float64
	for _, c := range vec {
		sum += real(c)*real(c) + imag(c)*imag(c)
	}
	return sum
}

func TestComputationalBasisNeverRepeatsAndExhausts(t *testing.T) {
	pkg := dd.NewPackage(1, dd.DefaultEps)
	g := New(1)

	seen := make(map[[2]complex128]bool)
	for i := 0; i < 2; i++ {
		state, err := g.Generate(pkg, ComputationalBasis, []int{0})
		require.NoError(t, err)
		vec := pkg.GetVector(state)
		var key [2]complex128
		copy(key[:], vec)
		assert.False(t, seen[key], "basis state repeated across rounds")
		seen[key] = true
	}

	_, err := g.Generate(pkg, ComputationalBasis, []int{0})
	assert.True(t, errors.Is(err, ErrBasisStatesExhausted))
}

func TestRandom1QBasisStateIsNormalized(t *testing.T) {
	pkg := dd.NewPackage(2, dd.DefaultEps)
	g := New(7)
	for i := 0; i < 5; i++ {
		state, err := g.Generate(pkg, Random1QBasis, []int{0, 1})
		require.NoError(t, err)
		assert.InDelta(t, 1, vectorNorm(pkg.GetVector(state)), 1e-9)
	}
}

func TestStabilizerStateIsNormalized(t *testing.T) {
	pkg := dd.NewPackage(3, dd.DefaultEps)
	g := New(42)
	for i := 0; i < 5; i++ {
		state, err := g.Generate(pkg, Stabilizer, []int{0, 1, 2})
		require.NoError(t, err)
		assert.InDelta(t, 1, vectorNorm(pkg.GetVector(state)), 1e-9)
	}
}

func TestAncillaLinesStayZero(t *testing.T) {
	pkg := dd.NewPackage(2, dd.DefaultEps)
	g := New(11)
	// qubit 1 is ancillary: every amplitude with that bit set must be 0.
	state, err := g.Generate(pkg, Random1QBasis, []int{0})
	require.NoError(t, err)
	vec := pkg.GetVector(state)
	assert.Equal(t, complex128(0), vec[2])
	assert.Equal(t, complex128(0), vec[3])
}

func TestStabilizerSingleQubitHasNoCNOT(t *testing.T) {
	pkg := dd.NewPackage(1, dd.DefaultEps)
	g := New(3)
	state, err := g.Generate(pkg, Stabilizer, []int{0})
	require.NoError(t, err)
	assert.InDelta(t, 1, vectorNorm(pkg.GetVector(state)), 1e-9)
}
