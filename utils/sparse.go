package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

// RowSparse accumulates sparse matrix rows under explicit row-index control.
// It is the assembly-side companion to the CSR/CSC types from
// github.com/james-bowman/sparse: stencil blocks arrive as CSR, get scattered
// into RowSparse rows (overwriting or accumulating), and the finished blocks
// are composed into a CSC for the solver.
type RowSparse struct {
	Nr, Nc int
	rows   []map[int]float64
}

func NewRowSparse(nr, nc int) (R *RowSparse) {
	R = &RowSparse{
		Nr:   nr,
		Nc:   nc,
		rows: make([]map[int]float64, nr),
	}
	return
}

func (m *RowSparse) Dims() (r, c int) { return m.Nr, m.Nc }

func (m *RowSparse) At(i, j int) float64 {
	if m.rows[i] == nil {
		return 0
	}
	return m.rows[i][j]
}

func (m *RowSparse) Add(i, j int, val float64) {
	if m.rows[i] == nil {
		m.rows[i] = make(map[int]float64)
	}
	m.rows[i][j] += val
}

// ZeroRows discards all entries currently held in the given rows.
func (m *RowSparse) ZeroRows(I Index) {
	for _, i := range I {
		m.rows[i] = nil
	}
}

// AccumulateRows adds row r of src, scaled by scale[r] (scale nil means 1),
// into row targets[r] of the receiver. Row counts must agree.
func (m *RowSparse) AccumulateRows(targets Index, src *sparse.CSR, scale []float64) (err error) {
	var (
		nr, nc = src.Dims()
		raw    = src.RawMatrix()
	)
	if nr != len(targets) {
		err = fmt.Errorf("row count of source and target index are not equal: src = %v, len(targets) = %v", nr, len(targets))
		return
	}
	if nc != m.Nc {
		err = fmt.Errorf("column mismatch: src = %v, dst = %v", nc, m.Nc)
		return
	}
	if scale != nil && len(scale) != nr {
		err = fmt.Errorf("row scale length %v does not match row count %v", len(scale), nr)
		return
	}
	if err = targets.CheckBounds(m.Nr); err != nil {
		return
	}
	for r := 0; r < nr; r++ {
		s := 1.0
		if scale != nil {
			s = scale[r]
		}
		for p := raw.Indptr[r]; p < raw.Indptr[r+1]; p++ {
			m.Add(targets[r], raw.Ind[p], s*raw.Data[p])
		}
	}
	return
}

func (m *RowSparse) NNZ() (nnz int) {
	for _, row := range m.rows {
		nnz += len(row)
	}
	return
}

// ComposeCSC lays out four equally sized blocks as [[xx,xy],[yx,yy]] and
// returns the 2Nr x 2Nc result in column-compressed form.
func ComposeCSC(xx, xy, yx, yy *RowSparse) (G *sparse.CSC, err error) {
	var (
		nr, nc = xx.Dims()
	)
	for _, b := range []*RowSparse{xy, yx, yy} {
		if b.Nr != nr || b.Nc != nc {
			err = fmt.Errorf("block dimension mismatch: expected %vx%v, got %vx%v", nr, nc, b.Nr, b.Nc)
			return
		}
	}
	var (
		nnz  = xx.NNZ() + xy.NNZ() + yx.NNZ() + yy.NNZ()
		rows = make([]int, 0, nnz)
		cols = make([]int, 0, nnz)
		data = make([]float64, 0, nnz)
	)
	put := func(b *RowSparse, rOfs, cOfs int) {
		for i, row := range b.rows {
			for j, val := range row {
				rows = append(rows, i+rOfs)
				cols = append(cols, j+cOfs)
				data = append(data, val)
			}
		}
	}
	put(xx, 0, 0)
	put(xy, 0, nc)
	put(yx, nr, 0)
	put(yy, nr, nc)
	G = sparse.NewCOO(2*nr, 2*nc, rows, cols, data).ToCSC()
	return
}

// CSRMulVec computes dst = m * v for a CSR matrix without densifying.
func CSRMulVec(m *sparse.CSR, v []float64) (dst []float64, err error) {
	var (
		nr, nc = m.Dims()
		raw    = m.RawMatrix()
	)
	if len(v) != nc {
		err = fmt.Errorf("length of vector and matrix columns are not equal: len(v) = %v, nc = %v", len(v), nc)
		return
	}
	dst = make([]float64, nr)
	for i := 0; i < nr; i++ {
		var sum float64
		for p := raw.Indptr[i]; p < raw.Indptr[i+1]; p++ {
			sum += raw.Data[p] * v[raw.Ind[p]]
		}
		dst[i] = sum
	}
	return
}

// NewCSRFromRows builds a CSR directly from per-row column/value pairs.
// Rows must be supplied in order; columns within a row need not be sorted.
func NewCSRFromRows(nr, nc int, cols [][]int, vals [][]float64) (m *sparse.CSR, err error) {
	if len(cols) != nr || len(vals) != nr {
		err = fmt.Errorf("row slices do not match row count %v", nr)
		return
	}
	var (
		ia   = make([]int, nr+1)
		ja   []int
		data []float64
	)
	for i := 0; i < nr; i++ {
		if len(cols[i]) != len(vals[i]) {
			err = fmt.Errorf("row %v: column and value counts differ", i)
			return
		}
		ja = append(ja, cols[i]...)
		data = append(data, vals[i]...)
		ia[i+1] = len(ja)
	}
	m = sparse.NewCSR(nr, nc, ia, ja, data)
	return
}
