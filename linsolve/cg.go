package linsolve

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/vladimir-ch/iterative"
)

// SolveCG solves G*x = b by conjugate gradients on the normal equations
// (G'G x = G'b), which keeps CG applicable to the nonsymmetric assembled
// operator. A caller-selected strategy, never an automatic fallback for a
// failed direct solve.
func SolveCG(G *sparse.CSC, b []float64) (x []float64, err error) {
	A, err := fromCSC(G)
	if err != nil {
		return
	}
	if len(b) != A.n {
		err = fmt.Errorf("rhs length %d does not match system size %d", len(b), A.n)
		return
	}
	var (
		n    = A.n
		work = make([]float64, n)
	)
	mulA := func(dst, src []float64) {
		for i := range dst {
			dst[i] = 0
		}
		for c := 0; c < n; c++ {
			s := src[c]
			if s == 0 {
				continue
			}
			for p := A.colptr[c]; p < A.colptr[c+1]; p++ {
				dst[A.rowind[p]] += A.data[p] * s
			}
		}
	}
	mulAT := func(dst, src []float64) {
		for c := 0; c < n; c++ {
			var sum float64
			for p := A.colptr[c]; p < A.colptr[c+1]; p++ {
				sum += A.data[p] * src[A.rowind[p]]
			}
			dst[c] = sum
		}
	}
	ops := iterative.MatrixOps{
		MatVec: func(dst, src []float64) {
			mulA(work, src)
			mulAT(dst, work)
		},
	}
	bn := make([]float64, n)
	mulAT(bn, b)
	res, err := iterative.LinearSolve(ops, bn, &iterative.CG{}, iterative.Settings{})
	if err != nil {
		err = fmt.Errorf("cg on normal equations failed: %w", err)
		return
	}
	x = res.X
	return
}
