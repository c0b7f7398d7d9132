package zxdiagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsAStraightWire(t *testing.T) {
	d := New(2)
	assert.Len(t, d.Vertices(), 4)
	for q := 0; q < 2; q++ {
		assert.True(t, d.HasEdge(d.Inputs()[q], d.Outputs()[q]))
		et, err := d.EdgeType(d.Inputs()[q], d.Outputs()[q])
		require.NoError(t, err)
		assert.Equal(t, Plain, et)
	}
}

func TestInsertOnWireChainsSpiders(t *testing.T) {
	d := New(1)
	v1, err := d.InsertOnWire(0, ZSpider, 1, Plain)
	require.NoError(t, err)
	v2, err := d.InsertOnWire(0, XSpider, 0.5, Plain)
	require.NoError(t, err)

	tail, err := d.WireTail(0)
	require.NoError(t, err)
	assert.Equal(t, v2, tail)
	assert.True(t, d.HasEdge(d.Inputs()[0], v1))
	assert.True(t, d.HasEdge(v1, v2))
	assert.True(t, d.HasEdge(v2, d.Outputs()[0]))
}

func TestIDSimpRemovesPhaseZeroDegreeTwoSpider(t *testing.T) {
	d := New(1)
	_, err := d.InsertOnWire(0, ZSpider, 0, Plain)
	require.NoError(t, err)

	simplified := d.IDSimp(nil)
	assert.True(t, simplified)
	assert.Len(t, d.Vertices(), 2)
	assert.True(t, d.HasEdge(d.Inputs()[0], d.Outputs()[0]))
}

func TestSpiderFusionMergesPhases(t *testing.T) {
	d := New(1)
	a := d.AddSpider(ZSpider, 0, 0.25)
	b := d.AddSpider(ZSpider, 0, 0.75)
	require.NoError(t, d.Connect(a, b, Plain))

	d.fuseSpiders(a, b)
	assert.InDelta(t, 1.0, d.Phase(a), 1e-9)
	assert.False(t, d.g.HasVertex(b))
}

func TestToGraphLikeRecolorsXSpiders(t *testing.T) {
	d := New(1)
	v, err := d.InsertOnWire(0, XSpider, 1, Plain)
	require.NoError(t, err)

	d.ToGraphLike()
	assert.Equal(t, ZSpider, d.Kind(v))
}

func TestHadamardOnIdentityDoesNotReduceToWire(t *testing.T) {
	// A lone Hadamard edge between the two boundaries is not the identity
	// (H != I), so FullReduce must not collapse it to a plain wire.
	d := New(1)
	require.NoError(t, toggleEdgeHelper(d, 0))

	d.FullReduce(nil)
	in, out := d.Inputs()[0], d.Outputs()[0]
	require.True(t, d.HasEdge(in, out))
	et, err := d.EdgeType(in, out)
	require.NoError(t, err)
	assert.Equal(t, Hadamard, et)
}

func toggleEdgeHelper(d *Diagram, q int) error {
	in, out := d.Inputs()[q], d.Outputs()[q]
	if err := d.removeEdgeBetween(in, out); err != nil {
		return err
	}
	return d.Connect(in, out, Hadamard)
}
