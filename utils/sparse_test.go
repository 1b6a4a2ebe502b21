package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowSparseAccumulate(t *testing.T) {
	src, err := NewCSRFromRows(2, 4,
		[][]int{{0, 2}, {1, 3}},
		[][]float64{{1, 2}, {3, 4}},
	)
	require.NoError(t, err)

	R := NewRowSparse(5, 4)
	require.NoError(t, R.AccumulateRows(Index{4, 1}, src, nil))
	assert.Equal(t, 1.0, R.At(4, 0))
	assert.Equal(t, 2.0, R.At(4, 2))
	assert.Equal(t, 3.0, R.At(1, 1))
	assert.Equal(t, 4.0, R.At(1, 3))

	// Accumulation with a per-row scale adds on top.
	require.NoError(t, R.AccumulateRows(Index{4, 1}, src, []float64{10, -1}))
	assert.Equal(t, 11.0, R.At(4, 0))
	assert.Equal(t, 0.0, R.At(1, 1))
	assert.Equal(t, 4, R.NNZ())

	R.ZeroRows(Index{4})
	assert.Equal(t, 0.0, R.At(4, 0))
	assert.Equal(t, 2, R.NNZ())

	// Shape violations are rejected before any write.
	assert.Error(t, R.AccumulateRows(Index{0}, src, nil))
	assert.Error(t, R.AccumulateRows(Index{0, 5}, src, nil))
	assert.Error(t, R.AccumulateRows(Index{0, 1}, src, []float64{1}))
}

func TestComposeCSC(t *testing.T) {
	var (
		xx = NewRowSparse(2, 2)
		xy = NewRowSparse(2, 2)
		yx = NewRowSparse(2, 2)
		yy = NewRowSparse(2, 2)
	)
	xx.Add(0, 0, 1)
	xy.Add(0, 1, 2)
	yx.Add(1, 0, 3)
	yy.Add(1, 1, 4)
	G, err := ComposeCSC(xx, xy, yx, yy)
	require.NoError(t, err)
	nr, nc := G.Dims()
	assert.Equal(t, 4, nr)
	assert.Equal(t, 4, nc)
	assert.Equal(t, 1.0, G.At(0, 0))
	assert.Equal(t, 2.0, G.At(0, 3)) // xy lands in the right band
	assert.Equal(t, 3.0, G.At(3, 0)) // yx lands in the lower band
	assert.Equal(t, 4.0, G.At(3, 3))
	assert.Equal(t, 0.0, G.At(1, 1))

	bad := NewRowSparse(3, 2)
	_, err = ComposeCSC(xx, xy, yx, bad)
	assert.Error(t, err)
}

func TestCSRMulVec(t *testing.T) {
	m, err := NewCSRFromRows(2, 3,
		[][]int{{0, 1}, {2}},
		[][]float64{{1, 2}, {3}},
	)
	require.NoError(t, err)
	got, err := CSRMulVec(m, []float64{1, 10, 100})
	require.NoError(t, err)
	assert.Equal(t, []float64{21, 300}, got)
	_, err = CSRMulVec(m, []float64{1, 2})
	assert.Error(t, err)
}

func TestIndexOps(t *testing.T) {
	assert.Equal(t, Index{3, 4, 5}, NewRange(3, 5))
	assert.Equal(t, Index{13, 14, 15}, NewRange(3, 5).Offset(10))
	assert.Equal(t, Index{1, 2, 3, 4}, Concat(Index{1, 2}, Index{3, 4}))
	assert.True(t, Index{1, 2}.Contains(2))
	assert.False(t, Index{1, 2}.Contains(3))

	_, dup := Duplicates(Index{1, 2}, Index{3, 4})
	assert.False(t, dup)
	v, dup := Duplicates(Index{1, 2}, Index{4, 2})
	assert.True(t, dup)
	assert.Equal(t, 2, v)

	assert.NoError(t, Index{0, 4}.CheckBounds(5))
	assert.Error(t, Index{0, 5}.CheckBounds(5))
	assert.Error(t, Index{-1}.CheckBounds(5))
}

func TestVectorOps(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, Linspace(0, 1, 3))
	assert.Equal(t, []float64{2, 1, 0}, Linspace(2, 0, 3))
	assert.Equal(t, []float64{7}, Linspace(7, 9, 1))
	assert.Equal(t, 3.0, VecMaxAbs([]float64{1, -3, 2}))
	assert.Equal(t, 0.0, VecMaxAbs(nil))
}
