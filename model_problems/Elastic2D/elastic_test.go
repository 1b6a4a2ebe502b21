package Elastic2D

import (
	"errors"
	"math"
	"testing"

	"github.com/notargets/mfree/geometry2D"
	"github.com/notargets/mfree/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBCFlags(t *testing.T) {
	for name, want := range BCNameMap {
		flag, err := NewBCFlag(name)
		require.NoError(t, err)
		assert.Equal(t, want, flag)
	}
	_, err := NewBCFlag("clamped")
	assert.Error(t, err)
}

func TestSolverType(t *testing.T) {
	st, err := NewSolverType(" Direct ")
	require.NoError(t, err)
	assert.Equal(t, Direct, st)
	st, err = NewSolverType("cg")
	require.NoError(t, err)
	assert.Equal(t, CG, st)
	assert.Equal(t, "cg", st.String())
	_, err = NewSolverType("gmres")
	assert.Error(t, err)
}

func TestFindOrthogonals(t *testing.T) {
	var (
		s       = math.Sqrt2 / 2
		normals = [][2]float64{{1, 0}, {0, 1}, {-1, 0}, {0, -1}, {s, s}, {-s, s}}
	)
	tangents, err := FindOrthogonals(normals)
	require.NoError(t, err)
	for i, n := range normals {
		tt := tangents[i]
		if d := n[0]*tt[0] + n[1]*tt[1]; math.Abs(d) > 1.e-12 {
			t.Errorf("tangent %d not orthogonal to its normal, dot = %v", i, d)
		}
		if L := math.Hypot(tt[0], tt[1]); math.Abs(L-1) > 1.e-12 {
			t.Errorf("tangent %d not unit length, |t| = %v", i, L)
		}
	}
	_, err = FindOrthogonals([][2]float64{{0.5, 0}})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestBodyForceTerms(t *testing.T) {
	var (
		mt             = Material{Lambda: 2, Mu: 3}
		xx, xy, yx, yy = mt.BodyForceTerms()
	)
	// xx: (l+2m) u,xx + m u,yy
	require.Len(t, xx, 2)
	assert.Equal(t, 8.0, xx[0].Coeff)
	assert.Equal(t, [2]int{2, 0}, [2]int{xx[0].Dx, xx[0].Dy})
	assert.Equal(t, 3.0, xx[1].Coeff)
	assert.Equal(t, [2]int{0, 2}, [2]int{xx[1].Dx, xx[1].Dy})
	// coupling blocks: (l+m) u,xy
	require.Len(t, xy, 1)
	assert.Equal(t, 5.0, xy[0].Coeff)
	require.Len(t, yx, 1)
	assert.Equal(t, 5.0, yx[0].Coeff)
	// yy: m u,xx + (l+2m) u,yy
	require.Len(t, yy, 2)
	assert.Equal(t, 3.0, yy[0].Coeff)
	assert.Equal(t, 8.0, yy[1].Coeff)
}

// conflictLayout passes Layout.Validate but aims a ghost group at interior
// node indices, so two assembly passes claim the same rows.
func conflictLayout() *geometry2D.Layout {
	var (
		nodes   [][2]float64
		normals = make([][2]float64, 10)
	)
	for i := 0; i < 10; i++ {
		nodes = append(nodes, [2]float64{float64(i), float64(i % 3)})
	}
	normals[6] = [2]float64{0, 1}
	normals[7] = [2]float64{0, 1}
	return &geometry2D.Layout{
		Nodes: nodes,
		Groups: map[string]utils.Index{
			geometry2D.GroupInterior:         utils.NewRange(0, 5),
			geometry2D.BoundaryGroup("free"): {6, 7},
			geometry2D.GhostGroup("free"):    {4, 5},
		},
		Normals: normals,
	}
}

func TestAssembleKeyConflict(t *testing.T) {
	l := conflictLayout()
	el, err := NewElastostatic(l, Material{Lambda: 1, Mu: 1}, 4, 1)
	require.NoError(t, err)
	_, err = el.Assemble()
	if !errors.Is(err, ErrKeyConflict) {
		t.Fatalf("overlapping pass targets: got %v, want ErrKeyConflict", err)
	}
}

// gridLayout builds a uniform nx x ny grid on the unit square with the
// perimeter in one free boundary group. No ghosts.
func gridLayout(nx, ny int) *geometry2D.Layout {
	var (
		nodes    [][2]float64
		normals  [][2]float64
		interior utils.Index
		bnd      utils.Index
		s        = math.Sqrt2 / 2
	)
	id := 0
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			x := float64(i) / float64(nx-1)
			y := float64(j) / float64(ny-1)
			nodes = append(nodes, [2]float64{x, y})
			var n [2]float64
			onL, onR := i == 0, i == nx-1
			onB, onT := j == 0, j == ny-1
			switch {
			case onL && onB:
				n = [2]float64{-s, -s}
			case onR && onB:
				n = [2]float64{s, -s}
			case onL && onT:
				n = [2]float64{-s, s}
			case onR && onT:
				n = [2]float64{s, s}
			case onL:
				n = [2]float64{-1, 0}
			case onR:
				n = [2]float64{1, 0}
			case onB:
				n = [2]float64{0, -1}
			case onT:
				n = [2]float64{0, 1}
			}
			if onL || onR || onB || onT {
				bnd = append(bnd, id)
			} else {
				interior = append(interior, id)
			}
			normals = append(normals, n)
			id++
		}
	}
	return &geometry2D.Layout{
		Nodes: nodes,
		Groups: map[string]utils.Index{
			geometry2D.GroupInterior:         interior,
			geometry2D.BoundaryGroup("free"): bnd,
		},
		Normals: normals,
	}
}

// Degree-2 polynomial augmentation reproduces linear displacement fields
// exactly, so recovered strains and stresses must match the closed form.
func TestRecoverLinearField(t *testing.T) {
	var (
		l       = gridLayout(7, 7)
		mt      = Material{Lambda: 1.5, Mu: 0.8}
		a, b, c = 0.3, 1.2, -0.7
		d, e, f = -0.1, 0.4, 0.9
	)
	el, err := NewElastostatic(l, mt, 12, 0)
	require.NoError(t, err)
	N := l.NumNodes()
	u := make([]float64, 2*N)
	for i, p := range l.Nodes {
		u[i] = a + b*p[0] + c*p[1]
		u[N+i] = d + e*p[0] + f*p[1]
	}
	sol, err := el.Recover(u)
	require.NoError(t, err)
	require.Len(t, sol.Ux, N) // no ghosts to drop
	var (
		wantExy = 0.5 * (c + e)
		wantSxx = (2*mt.Mu+mt.Lambda)*b + mt.Lambda*f
		wantSyy = mt.Lambda*b + (2*mt.Mu+mt.Lambda)*f
		wantSxy = 2 * mt.Mu * wantExy
	)
	for i := range sol.Exx {
		assert.InDelta(t, b, sol.Exx[i], 1.e-8)
		assert.InDelta(t, f, sol.Eyy[i], 1.e-8)
		assert.InDelta(t, wantExy, sol.Exy[i], 1.e-8)
		assert.InDelta(t, wantSxx, sol.Sxx[i], 1.e-7)
		assert.InDelta(t, wantSyy, sol.Syy[i], 1.e-7)
		assert.InDelta(t, wantSxy, sol.Sxy[i], 1.e-7)
	}
}

// With no load anywhere the assembled system must return to the trivial
// equilibrium u = 0.
func TestZeroLoadAllFree(t *testing.T) {
	b := geometry2D.Boundary{
		Vertices: [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Segments: [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
		Groups:   map[string][]int{"free": {0, 1, 2, 3}},
	}
	l, err := geometry2D.Generate(150, b, []string{"free"}, nil)
	require.NoError(t, err)
	el, err := NewElastostatic(l, Material{Lambda: 1, Mu: 1}, 20, 0)
	require.NoError(t, err)
	sys, err := el.Assemble()
	require.NoError(t, err)
	u, err := sys.Solve(Direct)
	require.NoError(t, err)
	assert.LessOrEqual(t, utils.VecMaxAbs(u), 1.e-8)
}

func columnLayout(t *testing.T, count int) *geometry2D.Layout {
	t.Helper()
	b := geometry2D.Boundary{
		Vertices: [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Segments: [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
		Groups: map[string][]int{
			"roller": {0, 1, 3}, // bottom, right, left
			"free":   {2},       // top
		},
	}
	l, err := geometry2D.Generate(count, b, []string{"free", "roller"}, nil)
	require.NoError(t, err)
	return l
}

// A unit-square column under uniform body load, rollers on the sides and
// bottom, traction-free top, deforms in uniaxial strain:
// u_y(y) = g (y^2/2 - h y)/(lambda + 2 mu).
func TestGravityColumn(t *testing.T) {
	var (
		l  = columnLayout(t, 300)
		mt = Material{Lambda: 1, Mu: 1}
		g  = 1.0
	)
	el, err := NewElastostatic(l, mt, 20, g)
	require.NoError(t, err)
	sys, err := el.Assemble()
	require.NoError(t, err)

	N := l.NumNodes()
	nr, nc := sys.G.Dims()
	assert.Equal(t, 2*N, nr)
	assert.Equal(t, 2*N, nc)

	// Roller x-band rows are scaled identity rows: n_x at column i, n_y at
	// column N+i, nothing else contributing off the node itself.
	roller := l.Groups[geometry2D.BoundaryGroup("roller")]
	for _, i := range roller[:3] {
		assert.InDelta(t, l.Normals[i][0], sys.G.At(i, i), 1.e-12)
		assert.InDelta(t, l.Normals[i][1], sys.G.At(i, N+i), 1.e-12)
	}

	u, err := sys.Solve(Direct)
	require.NoError(t, err)
	sol, err := el.Recover(u)
	require.NoError(t, err)

	// Deepest sag is at the top surface.
	var (
		topIdx = 0
		topY   = -1.0
	)
	for i, p := range sol.Nodes {
		if p[1] > topY {
			topY, topIdx = p[1], i
		}
	}
	want := g * (topY*topY/2 - topY) / (mt.Lambda + 2*mt.Mu)
	got := sol.Uy[topIdx]
	if got >= 0 {
		t.Fatalf("top surface moved up: u_y = %v", got)
	}
	if math.Abs(got-want)/math.Abs(want) > 0.25 {
		t.Errorf("top-surface u_y = %v, analytic %v", got, want)
	}
}
