package gate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseGatesReportIdentity(t *testing.T) {
	cases := []struct {
		name string
		op   Operation
	}{
		{"H", H(0)},
		{"X", X(1)},
		{"Y", Y(2)},
		{"Z", Z(0)},
		{"S", S(0)},
		{"T", T(0)},
	}
	for _, c := range cases {
		assert.Equal(t, c.name, c.op.Type())
		assert.True(t, c.op.IsUnitary())
		assert.Equal(t, -1, c.op.Cbit())
	}
}

func TestCNOTHasOneControl(t *testing.T) {
	op := CNOT(0, 1)
	require.Len(t, op.Controls(), 1)
	assert.Equal(t, Control{Qubit: 0, Positive: true}, op.Controls()[0])
	assert.Equal(t, []int{1}, op.Targets())
	assert.Equal(t, KindUnitary1, op.Kind())
}

func TestToffoliHasTwoControls(t *testing.T) {
	op := Toffoli(0, 1, 2)
	require.Len(t, op.Controls(), 2)
	assert.Equal(t, []int{2}, op.Targets())
}

func TestSwapIsSelfInverse(t *testing.T) {
	op := Swap(0, 1)
	inv := op.Invert()
	assert.True(t, op.Equals(inv))
}

func TestFredkinHasOneControlTwoTargets(t *testing.T) {
	op := Fredkin(0, 1, 2)
	require.Len(t, op.Controls(), 1)
	assert.Equal(t, []int{1, 2}, op.Targets())
	assert.Equal(t, KindSwap, op.Kind())
}

func TestSAndSdgAreMutualInverses(t *testing.T) {
	s := S(0)
	sdg := s.Invert()
	assert.Equal(t, "Sdg", sdg.Type())
	back := sdg.Invert()
	assert.True(t, s.Equals(back))
}

func TestTAndTdgAreMutualInverses(t *testing.T) {
	op := T(3)
	inv := op.Invert()
	assert.Equal(t, "Tdg", inv.Type())
	assert.True(t, op.Equals(inv.Invert()))
}

func TestRXInvertNegatesAngle(t *testing.T) {
	op := RX(0, math.Pi/4)
	inv := op.Invert()
	require.Len(t, inv.Parameters(), 1)
	assert.InDelta(t, -math.Pi/4, inv.Parameters()[0], 1e-12)
	assert.Equal(t, "RX", inv.Type())
}

func TestRZMatrixIsDiagonal(t *testing.T) {
	m := RZ(0, math.Pi/2).Matrix()
	assert.Equal(t, complex128(0), m[0][1])
	assert.Equal(t, complex128(0), m[1][0])
}

func TestHMatrixIsSelfAdjoint(t *testing.T) {
	h := H(0).Matrix()
	adj := conjTranspose2(h)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, real(h[i][j]), real(adj[i][j]), 1e-12)
			assert.InDelta(t, imag(h[i][j]), imag(adj[i][j]), 1e-12)
		}
	}
}

func TestMeasureCarriesCbit(t *testing.T) {
	op := Measure(2, 5)
	assert.Equal(t, KindMeasure, op.Kind())
	assert.Equal(t, 5, op.Cbit())
	assert.False(t, op.IsUnitary())
}

func TestControlledAppendsToExistingControls(t *testing.T) {
	base := CNOT(0, 2)
	lifted := Controlled(base, Control{Qubit: 1, Positive: false})
	require.Len(t, lifted.Controls(), 2)
	assert.Equal(t, Control{Qubit: 1, Positive: false}, lifted.Controls()[1])
}

func TestFactoryKnownAliases(t *testing.T) {
	aliases := map[string]string{
		"h":       "H",
		"cx":      "CNOT",
		"cnot":    "CNOT",
		"ccx":     "TOFFOLI",
		"toffoli": "TOFFOLI",
		"cswap":   "FREDKIN",
		"fredkin": "FREDKIN",
		"meas":    "MEASURE",
	}
	for alias, want := range aliases {
		op, err := Factory(alias, []int{0, 1, 2}, nil, nil)
		require.NoError(t, err, alias)
		assert.Equal(t, want, op.Type(), alias)
	}
}

func TestFactoryUnknownGate(t *testing.T) {
	_, err := Factory("bogus", []int{0}, nil, nil)
	require.Error(t, err)
	var want ErrUnknownGate
	assert.ErrorAs(t, err, &want)
}

func TestFactoryRXUsesParams(t *testing.T) {
	op, err := Factory("rx", []int{0}, nil, []float64{math.Pi})
	require.NoError(t, err)
	require.Len(t, op.Parameters(), 1)
	assert.InDelta(t, math.Pi, op.Parameters()[0], 1e-12)
}
