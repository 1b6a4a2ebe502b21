package fd

import (
	"math"
	"testing"

	"github.com/notargets/mfree/memo"
	"github.com/notargets/mfree/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scatteredNodes is an 11x11 grid with deterministic jitter, so stencils
// are irregular but the layout is reproducible.
func scatteredNodes() (pts [][2]float64) {
	const m = 11
	h := 1.0 / float64(m-1)
	for j := 0; j < m; j++ {
		for i := 0; i < m; i++ {
			x := float64(i) * h
			y := float64(j) * h
			if i > 0 && i < m-1 && j > 0 && j < m-1 {
				k := float64(j*m + i)
				x += 0.25 * h * math.Sin(12.9898*k)
				y += 0.25 * h * math.Sin(78.233*k)
			}
			pts = append(pts, [2]float64{x, y})
		}
	}
	return
}

// Degree-2 polynomial reproduction is enforced by the augmentation
// constraints, so every supported operator is exact on quadratics.
func TestWeightMatrixQuadraticExact(t *testing.T) {
	var (
		pts = scatteredNodes()
		f   = make([]float64, len(pts))
	)
	poly := func(x, y float64) float64 { return 1 + 2*x - y + 0.5*x*x + x*y - 0.25*y*y }
	for i, p := range pts {
		f[i] = poly(p[0], p[1])
	}
	cases := []struct {
		terms []Term
		want  func(x, y float64) float64
	}{
		{D(0, 0), poly},
		{D(1, 0), func(x, y float64) float64 { return 2 + x + y }},
		{D(0, 1), func(x, y float64) float64 { return -1 + x - 0.5*y }},
		{D(2, 0), func(x, y float64) float64 { return 1 }},
		{D(1, 1), func(x, y float64) float64 { return 1 }},
		{D(0, 2), func(x, y float64) float64 { return -0.5 }},
		{Join(Scale(3, D(2, 0)), Scale(2, D(0, 2))), func(x, y float64) float64 { return 2 }},
	}
	for ci, c := range cases {
		W, err := WeightMatrix(pts, pts, c.terms, 18)
		require.NoError(t, err)
		got, err := utils.CSRMulVec(W, f)
		require.NoError(t, err)
		for i, p := range pts {
			if want := c.want(p[0], p[1]); math.Abs(got[i]-want) > 1.e-6 {
				t.Fatalf("case %d: node %d at %v: got %v, want %v", ci, i, p, got[i], want)
			}
		}
	}
}

// n == 1 interpolation produces selection rows when the targets are drawn
// from the node set.
func TestWeightMatrixSelectionRows(t *testing.T) {
	var (
		pts    = scatteredNodes()
		target = pts[5:15]
		f      = make([]float64, len(pts))
	)
	for i, p := range pts {
		f[i] = 3*p[0] - 7*p[1]
	}
	W, err := WeightMatrix(target, pts, D(0, 0), 1)
	require.NoError(t, err)
	got, err := utils.CSRMulVec(W, f)
	require.NoError(t, err)
	for i := range target {
		assert.InDelta(t, f[5+i], got[i], 1.e-14)
	}
}

func TestWeightMatrixErrors(t *testing.T) {
	pts := scatteredNodes()
	_, err := WeightMatrix(pts, pts, D(3, 0), 18)
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
	_, err = WeightMatrix(pts, pts, nil, 18)
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
	_, err = WeightMatrix(pts, pts, D(1, 0), 3) // below the basis size
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = WeightMatrix(pts, pts, D(1, 0), len(pts)+1)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = WeightMatrix(nil, pts, D(1, 0), 18)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestWeightMatrixMemoized(t *testing.T) {
	defer ClearWeightCache()
	ClearWeightCache()
	pts := scatteredNodes()
	W1, err := WeightMatrix(pts, pts, D(1, 0), 18)
	require.NoError(t, err)
	W2, err := WeightMatrix(pts, pts, D(1, 0), 18)
	require.NoError(t, err)
	if W1 != W2 {
		t.Error("bit-identical inputs should resolve from the cache")
	}
	W3, err := WeightMatrix(pts, pts, D(1, 0), 19)
	require.NoError(t, err)
	if W1 == W3 {
		t.Error("different stencil size must not share a cache entry")
	}
	// The package cache registers with the default registry.
	memo.ClearCaches()
	W4, err := WeightMatrix(pts, pts, D(1, 0), 18)
	require.NoError(t, err)
	if W1 == W4 {
		t.Error("ClearCaches should have dropped the memoized matrix")
	}
}
