package Elastic2D

import (
	"fmt"
	"sort"

	"github.com/notargets/mfree/fd"
	"github.com/notargets/mfree/geometry2D"
	"github.com/notargets/mfree/utils"
)

// Solution holds the recovered fields at the physical (non-ghost) nodes,
// in ascending node index order.
type Solution struct {
	Nodes         [][2]float64
	Ux, Uy        []float64
	Exx, Eyy, Exy []float64
	Sxx, Syy, Sxy []float64
}

// Recover differentiates the stacked displacement vector [u_x; u_y] to
// produce strains, applies the constitutive law for stresses, and drops
// the ghost rows from every field.
func (el *Elastostatic) Recover(u []float64) (sol *Solution, err error) {
	var (
		N = el.L.NumNodes()
	)
	if len(u) != 2*N {
		err = fmt.Errorf("%w: displacement length %d, want %d", ErrShapeMismatch, len(u), 2*N)
		return
	}
	ux, uy := u[:N], u[N:]
	Dx, err := fd.WeightMatrix(el.L.Nodes, el.L.Nodes, fd.D(1, 0), el.StencilSize)
	if err != nil {
		return
	}
	Dy, err := fd.WeightMatrix(el.L.Nodes, el.L.Nodes, fd.D(0, 1), el.StencilSize)
	if err != nil {
		return
	}
	dxUx, err := utils.CSRMulVec(Dx, ux)
	if err != nil {
		return
	}
	dyUx, err := utils.CSRMulVec(Dy, ux)
	if err != nil {
		return
	}
	dxUy, err := utils.CSRMulVec(Dx, uy)
	if err != nil {
		return
	}
	dyUy, err := utils.CSRMulVec(Dy, uy)
	if err != nil {
		return
	}
	var (
		exx = dxUx
		eyy = dyUy
		exy = make([]float64, N)
	)
	for i := range exy {
		exy[i] = 0.5 * (dyUx[i] + dxUy[i])
	}
	var (
		lm  = el.Mat.Lambda
		mu  = el.Mat.Mu
		sxx = make([]float64, N)
		syy = make([]float64, N)
		sxy = make([]float64, N)
	)
	for i := 0; i < N; i++ {
		sxx[i] = (2*mu+lm)*exx[i] + lm*eyy[i]
		syy[i] = lm*exx[i] + (2*mu+lm)*eyy[i]
		sxy[i] = 2 * mu * exy[i]
	}
	keep := el.L.NoGhosts()
	sort.Ints(keep)
	sol = &Solution{
		Nodes: geometry2D.Subset(el.L.Nodes, keep),
		Ux:    pick(ux, keep),
		Uy:    pick(uy, keep),
		Exx:   pick(exx, keep),
		Eyy:   pick(eyy, keep),
		Exy:   pick(exy, keep),
		Sxx:   pick(sxx, keep),
		Syy:   pick(syy, keep),
		Sxy:   pick(sxy, keep),
	}
	return
}

func pick(v []float64, I utils.Index) (out []float64) {
	out = make([]float64, len(I))
	for i, idx := range I {
		out[i] = v[idx]
	}
	return
}

// Run assembles, solves, and recovers in one step.
func (el *Elastostatic) Run(st SolverType) (sol *Solution, err error) {
	sys, err := el.Assemble()
	if err != nil {
		return
	}
	u, err := sys.Solve(st)
	if err != nil {
		return
	}
	sol, err = el.Recover(u)
	return
}
