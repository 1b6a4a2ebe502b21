// Package fd computes generalized finite-difference (RBF-FD) weight
// matrices on scattered 2D nodes: sparse linear maps from nodal values to
// approximated derivative values at a set of target points.
package fd

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/notargets/mfree/geometry2D"
	"github.com/notargets/mfree/memo"
	"github.com/notargets/mfree/utils"
	"gonum.org/v1/gonum/mat"
)

// weightCache memoizes stencil computation process-wide. Assembly evaluates
// several operators over the same node arrays; bit-identical inputs resolve
// from the cache. Reachable from memo.ClearCaches.
var weightCache = memo.New(nil, computeWeights)

// WeightMatrix returns the len(target) x len(all) sparse matrix whose rows
// hold RBF-FD weights approximating the operator given by terms at each
// target point, using the n nearest nodes of all per stencil.
//
// Deterministic: bit-identical inputs return the identical cached matrix.
// Callers must treat the result as read-only.
//
// n must satisfy len(polyExps) <= n <= len(all) for derivative operators;
// pure interpolation (all terms of order zero) additionally admits
// 1 <= n < len(polyExps).
func WeightMatrix(target, all [][2]float64, terms []Term, n int) (W *sparse.CSR, err error) {
	if err = checkTerms(terms); err != nil {
		return
	}
	if len(all) == 0 || len(target) == 0 {
		err = fmt.Errorf("%w: empty node set", ErrShapeMismatch)
		return
	}
	if n < 1 || n > len(all) {
		err = fmt.Errorf("%w: stencil size %d with %d nodes", ErrShapeMismatch, n, len(all))
		return
	}
	if n < len(polyExps) && !interpolationOnly(terms) {
		err = fmt.Errorf("%w: stencil size %d below polynomial basis size %d", ErrShapeMismatch, n, len(polyExps))
		return
	}
	return weightCache.Call(
		geometry2D.FlatCoords(target),
		geometry2D.FlatCoords(all),
		encodeTerms(terms),
		[]float64{float64(n)},
	)
}

// ClearWeightCache drops all memoized weight matrices.
func ClearWeightCache() { weightCache.Clear() }

func computeWeights(args ...[]float64) (W *sparse.CSR, err error) {
	var (
		target = unflatten(args[0])
		all    = unflatten(args[1])
		terms  = decodeTerms(args[2])
		n      = int(args[3][0])
	)
	tree := geometry2D.NewKDTree(all)
	var (
		nt   = len(target)
		cols = make([][]int, nt)
		vals = make([][]float64, nt)
	)
	if n < len(polyExps) {
		// Pure interpolation with a degenerate stencil: the nearest node
		// carries the full coefficient sum. With target points drawn from
		// the node set this yields exact selection rows.
		var sum float64
		for _, t := range terms {
			sum += t.Coeff
		}
		for i, p := range target {
			nearest := tree.Nearest(p, 1)
			cols[i] = []int{nearest[0]}
			vals[i] = []float64{sum}
		}
		return utils.NewCSRFromRows(nt, len(all), cols, vals)
	}

	var (
		np   = len(polyExps)
		size = n + np
		M    = mat.NewDense(size, size, nil)
		rhs  = mat.NewVecDense(size, nil)
		w    = mat.NewVecDense(size, nil)
	)
	for i, c := range target {
		I := tree.Nearest(c, n)
		pts := geometry2D.Subset(all, I)

		M.Zero()
		for k := 0; k < n; k++ {
			for l := 0; l < n; l++ {
				d := [2]float64{pts[k][0] - pts[l][0], pts[k][1] - pts[l][1]}
				M.Set(k, l, phsDeriv(0, 0, d))
			}
			// Monomials are centered on the stencil point for conditioning.
			dc := [2]float64{pts[k][0] - c[0], pts[k][1] - c[1]}
			for m, exp := range polyExps {
				v := monoDeriv(exp, 0, 0, dc)
				M.Set(k, n+m, v)
				M.Set(n+m, k, v)
			}
		}

		rhs.Zero()
		for k := 0; k < n; k++ {
			d := [2]float64{c[0] - pts[k][0], c[1] - pts[k][1]}
			var sum float64
			for _, t := range terms {
				sum += t.Coeff * phsDeriv(t.Dx, t.Dy, d)
			}
			rhs.SetVec(k, sum)
		}
		for m, exp := range polyExps {
			var sum float64
			for _, t := range terms {
				// Derivative of the centered monomial at the center itself.
				sum += t.Coeff * monoDeriv(exp, t.Dx, t.Dy, [2]float64{})
			}
			rhs.SetVec(n+m, sum)
		}

		if err = w.SolveVec(M, rhs); err != nil {
			err = fmt.Errorf("stencil system singular at target %d: %w", i, err)
			return
		}
		cols[i] = make([]int, n)
		vals[i] = make([]float64, n)
		copy(cols[i], I)
		for k := 0; k < n; k++ {
			vals[i][k] = w.AtVec(k)
		}
	}
	return utils.NewCSRFromRows(nt, len(all), cols, vals)
}

func unflatten(flat []float64) (pts [][2]float64) {
	pts = make([][2]float64, len(flat)/2)
	for i := range pts {
		pts[i] = [2]float64{flat[2*i], flat[2*i+1]}
	}
	return
}

func decodeTerms(flat []float64) (terms []Term) {
	terms = make([]Term, len(flat)/3)
	for i := range terms {
		terms[i] = Term{
			Dx:    int(flat[3*i]),
			Dy:    int(flat[3*i+1]),
			Coeff: flat[3*i+2],
		}
	}
	return
}
