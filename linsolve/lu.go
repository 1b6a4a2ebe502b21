// Package linsolve solves square sparse linear systems in column-compressed
// form: a direct LU factorization with partial pivoting behind a
// minimum-degree fill-reducing column preordering, and a conjugate-gradient
// strategy over the normal equations for callers preferring an iterative
// method.
package linsolve

import (
	"fmt"
	"math"
	"sort"

	"github.com/james-bowman/sparse"
)

// csc is the internal column-compressed form.
type csc struct {
	n      int
	colptr []int
	rowind []int
	data   []float64
}

func fromCSC(G *sparse.CSC) (A *csc, err error) {
	nr, nc := G.Dims()
	if nr != nc {
		err = fmt.Errorf("matrix must be square, got %dx%d", nr, nc)
		return
	}
	type entry struct {
		r, c int
		v    float64
	}
	var entries []entry
	G.DoNonZero(func(i, j int, v float64) {
		entries = append(entries, entry{r: i, c: j, v: v})
	})
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].c != entries[b].c {
			return entries[a].c < entries[b].c
		}
		return entries[a].r < entries[b].r
	})
	A = &csc{
		n:      nr,
		colptr: make([]int, nc+1),
		rowind: make([]int, len(entries)),
		data:   make([]float64, len(entries)),
	}
	for i, e := range entries {
		A.rowind[i] = e.r
		A.data[i] = e.v
		A.colptr[e.c+1] = i + 1
	}
	for c := 1; c <= nc; c++ {
		if A.colptr[c] == 0 {
			A.colptr[c] = A.colptr[c-1]
		}
	}
	return
}

// minDegreeOrder computes a fill-reducing column permutation by greedy
// minimum-degree elimination on the column intersection graph of A (the
// nonzero pattern of A'A), the analog of a minimum-degree ordering on the
// normal equations.
func minDegreeOrder(A *csc) (q []int) {
	var (
		n   = A.n
		adj = make([]map[int]struct{}, n)
	)
	for c := 0; c < n; c++ {
		adj[c] = make(map[int]struct{})
	}
	// Columns sharing a row are adjacent.
	rowCols := make([][]int, n)
	for c := 0; c < n; c++ {
		for p := A.colptr[c]; p < A.colptr[c+1]; p++ {
			r := A.rowind[p]
			rowCols[r] = append(rowCols[r], c)
		}
	}
	for _, cols := range rowCols {
		for _, u := range cols {
			for _, w := range cols {
				if u != w {
					adj[u][w] = struct{}{}
				}
			}
		}
	}
	var (
		eliminated = make([]bool, n)
	)
	q = make([]int, 0, n)
	for len(q) < n {
		best, bestDeg := -1, n+1
		for c := 0; c < n; c++ {
			if eliminated[c] {
				continue
			}
			if d := len(adj[c]); d < bestDeg {
				best, bestDeg = c, d
			}
		}
		eliminated[best] = true
		q = append(q, best)
		// Eliminating a column joins its remaining neighbors into a clique.
		nbrs := make([]int, 0, len(adj[best]))
		for u := range adj[best] {
			if !eliminated[u] {
				nbrs = append(nbrs, u)
				delete(adj[u], best)
			}
		}
		for _, u := range nbrs {
			for _, w := range nbrs {
				if u != w {
					adj[u][w] = struct{}{}
				}
			}
		}
		adj[best] = nil
	}
	return
}

// LU holds a sparse P*A*Q = L*U factorization produced by Factor.
type LU struct {
	n     int
	q     []int // column order
	pinv  []int // row -> pivot position
	prow  []int // pivot position -> row
	lIdx  [][]int
	lVal  [][]float64 // unit diagonal implicit; entries indexed by raw row
	uIdx  [][]int     // entries indexed by pivot position, diagonal excluded
	uVal  [][]float64
	uDiag []float64
}

// Factor computes the LU factorization of G with a minimum-degree column
// preorder and partial row pivoting (Gilbert-Peierls left-looking
// elimination). A column with no nonzero pivot candidate fails with
// ErrSingular; tiny pivots are accepted so that near-singular systems
// (e.g. pure-Neumann operators with rigid-body modes) still factor.
func Factor(G *sparse.CSC) (lu *LU, err error) {
	A, err := fromCSC(G)
	if err != nil {
		return
	}
	var (
		n = A.n
		q = minDegreeOrder(A)
	)
	lu = &LU{
		n:     n,
		q:     q,
		pinv:  make([]int, n),
		prow:  make([]int, n),
		lIdx:  make([][]int, n),
		lVal:  make([][]float64, n),
		uIdx:  make([][]int, n),
		uVal:  make([][]float64, n),
		uDiag: make([]float64, n),
	}
	for i := range lu.pinv {
		lu.pinv[i] = -1
		lu.prow[i] = -1
	}
	var (
		x       = make([]float64, n)
		visited = make([]bool, n)
		pattern = make([]int, 0, n)
		stack   = make([]int, 0, n)
		child   = make([]int, n) // per-row child cursor during DFS
	)
	for jj := 0; jj < n; jj++ {
		j := q[jj]

		// Symbolic step: topological pattern of L \ A(:,j) by DFS over the
		// rows of already computed L columns.
		pattern = pattern[:0]
		for p := A.colptr[j]; p < A.colptr[j+1]; p++ {
			r := A.rowind[p]
			if visited[r] {
				continue
			}
			stack = append(stack[:0], r)
			visited[r] = true
			child[r] = 0
			for len(stack) > 0 {
				r = stack[len(stack)-1]
				k := lu.pinv[r]
				descended := false
				if k >= 0 {
					for child[r] < len(lu.lIdx[k]) {
						r2 := lu.lIdx[k][child[r]]
						child[r]++
						if !visited[r2] {
							visited[r2] = true
							child[r2] = 0
							stack = append(stack, r2)
							descended = true
							break
						}
					}
				}
				if !descended {
					stack = stack[:len(stack)-1]
					pattern = append(pattern, r) // postorder
				}
			}
		}
		// Reverse postorder = topological order.
		for lo, hi := 0, len(pattern)-1; lo < hi; lo, hi = lo+1, hi-1 {
			pattern[lo], pattern[hi] = pattern[hi], pattern[lo]
		}

		// Numeric step: scatter A(:,j), then eliminate in topological order.
		for _, r := range pattern {
			x[r] = 0
		}
		for p := A.colptr[j]; p < A.colptr[j+1]; p++ {
			x[A.rowind[p]] = A.data[p]
		}
		for _, r := range pattern {
			k := lu.pinv[r]
			if k < 0 {
				continue
			}
			xr := x[r]
			if xr == 0 {
				continue
			}
			for p, r2 := range lu.lIdx[k] {
				x[r2] -= lu.lVal[k][p] * xr
			}
		}

		// Partial pivoting over the rows not yet pivotal.
		var (
			pivRow = -1
			pivAbs float64
		)
		for _, r := range pattern {
			if a := math.Abs(x[r]); lu.pinv[r] < 0 && a > pivAbs {
				pivRow, pivAbs = r, a
			}
		}
		if pivRow < 0 || pivAbs == 0 {
			err = fmt.Errorf("%w: no acceptable pivot in column %d", ErrSingular, j)
			return nil, err
		}
		piv := x[pivRow]
		lu.pinv[pivRow] = jj
		lu.prow[jj] = pivRow
		lu.uDiag[jj] = piv

		for _, r := range pattern {
			visited[r] = false
			v := x[r]
			if v == 0 || r == pivRow {
				continue
			}
			if k := lu.pinv[r]; k >= 0 && k < jj {
				lu.uIdx[jj] = append(lu.uIdx[jj], k)
				lu.uVal[jj] = append(lu.uVal[jj], v)
			} else {
				lu.lIdx[jj] = append(lu.lIdx[jj], r)
				lu.lVal[jj] = append(lu.lVal[jj], v/piv)
			}
		}
	}
	return
}

// Solve computes x with G*x = b for the factored system.
func (lu *LU) Solve(b []float64) (x []float64, err error) {
	if len(b) != lu.n {
		err = fmt.Errorf("rhs length %d does not match system size %d", len(b), lu.n)
		return
	}
	var (
		n = lu.n
		z = make([]float64, n)
	)
	// Forward: L z = P b, unit diagonal.
	for k := 0; k < n; k++ {
		z[k] = b[lu.prow[k]]
	}
	for jj := 0; jj < n; jj++ {
		zj := z[jj]
		if zj == 0 {
			continue
		}
		for p, r := range lu.lIdx[jj] {
			z[lu.pinv[r]] -= lu.lVal[jj][p] * zj
		}
	}
	// Backward: U y = z.
	for jj := n - 1; jj >= 0; jj-- {
		yj := z[jj] / lu.uDiag[jj]
		z[jj] = yj
		for p, k := range lu.uIdx[jj] {
			z[k] -= lu.uVal[jj][p] * yj
		}
	}
	// Undo the column permutation.
	x = make([]float64, n)
	for jj := 0; jj < n; jj++ {
		x[lu.q[jj]] = z[jj]
	}
	return
}

// SolveDirect factors G and solves in one call.
func SolveDirect(G *sparse.CSC, b []float64) (x []float64, err error) {
	lu, err := Factor(G)
	if err != nil {
		return
	}
	return lu.Solve(b)
}
