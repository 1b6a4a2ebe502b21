// Package Elastic2D discretizes and solves plane linear elastostatics on an
// irregular node layout: equilibrium under a body load in the interior,
// traction-free surfaces, and roller (fixed normal displacement, free
// tangential traction) supports, assembled into one 2Nx2N sparse operator.
package Elastic2D

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/notargets/mfree/fd"
	"github.com/notargets/mfree/geometry2D"
	"github.com/notargets/mfree/utils"
)

type Elastostatic struct {
	L           *geometry2D.Layout
	Mat         Material
	StencilSize int
	Gravity     float64 // body load magnitude applied in +y on the RHS
}

func NewElastostatic(l *geometry2D.Layout, mat Material, stencilSize int, gravity float64) (el *Elastostatic, err error) {
	if err = l.Validate(); err != nil {
		return
	}
	for _, name := range l.BoundaryGroups() {
		if _, err = NewBCFlag(name); err != nil {
			return
		}
	}
	if stencilSize < 1 || stencilSize > l.NumNodes() {
		err = fmt.Errorf("%w: stencil size %d with %d nodes", ErrShapeMismatch, stencilSize, l.NumNodes())
		return
	}
	el = &Elastostatic{
		L:           l,
		Mat:         mat,
		StencilSize: stencilSize,
		Gravity:     gravity,
	}
	return
}

// System is one assembled problem instance: the global operator in
// column-compressed form and its right-hand side. Row i holds the
// x-equation of node i, row N+i the y-equation.
type System struct {
	G *sparse.CSC
	B []float64
	N int
}

type AssembleMode uint8

const (
	Overwrite AssembleMode = iota
	Accumulate
)

type band uint8

const (
	bandX band = 1 << iota
	bandY
	bandBoth band = bandX | bandY
)

// pass is one boundary-condition assembly step: it claims target rows in
// the declared bands and writes stencil blocks for its source node subset.
type pass struct {
	Name    string
	Mode    AssembleMode
	Bands   band
	Targets utils.Index
	apply   func(bl *blockSet) error
}

type blockSet struct {
	xx, xy, yx, yy *utils.RowSparse
}

// Assemble builds the global operator and right-hand side. Before any rows
// are written it asserts that no two Overwrite passes claim the same
// (band, row) pair, so the result never depends on pass order.
func (el *Elastostatic) Assemble() (sys *System, err error) {
	var (
		N  = el.L.NumNodes()
		bl = &blockSet{
			xx: utils.NewRowSparse(N, N),
			xy: utils.NewRowSparse(N, N),
			yx: utils.NewRowSparse(N, N),
			yy: utils.NewRowSparse(N, N),
		}
	)
	passes, err := el.passes()
	if err != nil {
		return
	}
	if err = checkDisjoint(passes, N); err != nil {
		return
	}
	for _, p := range passes {
		if p.Mode == Overwrite {
			if p.Bands&bandX != 0 {
				bl.xx.ZeroRows(p.Targets)
				bl.xy.ZeroRows(p.Targets)
			}
			if p.Bands&bandY != 0 {
				bl.yx.ZeroRows(p.Targets)
				bl.yy.ZeroRows(p.Targets)
			}
		}
		if err = p.apply(bl); err != nil {
			err = fmt.Errorf("pass %q: %w", p.Name, err)
			return
		}
	}
	G, err := utils.ComposeCSC(bl.xx, bl.xy, bl.yx, bl.yy)
	if err != nil {
		return
	}
	sys = &System{G: G, B: el.rhs(), N: N}
	return
}

// checkDisjoint flattens every Overwrite pass's claims to global row
// indices (x band at i, y band at N+i) and rejects duplicates.
func checkDisjoint(passes []pass, N int) error {
	var claims []utils.Index
	for _, p := range passes {
		if p.Mode != Overwrite {
			continue
		}
		if p.Bands&bandX != 0 {
			claims = append(claims, p.Targets)
		}
		if p.Bands&bandY != 0 {
			claims = append(claims, p.Targets.Offset(N))
		}
	}
	if row, dup := utils.Duplicates(claims...); dup {
		return fmt.Errorf("%w: global row %d claimed by more than one pass", ErrKeyConflict, row%N)
	}
	return nil
}

func (el *Elastostatic) passes() (out []pass, err error) {
	var (
		l        = el.L
		interior = l.Groups[geometry2D.GroupInterior]
	)
	out = append(out, pass{
		Name:    "interior body force",
		Mode:    Overwrite,
		Bands:   bandBoth,
		Targets: interior,
		apply:   el.bodyForce(interior, interior),
	})
	for _, name := range l.BoundaryGroups() {
		var (
			flag, _ = NewBCFlag(name)
			bnd     = l.Groups[geometry2D.BoundaryGroup(name)]
		)
		if len(bnd) == 0 {
			continue
		}
		if ghosts, ok := l.Groups[geometry2D.GhostGroup(name)]; ok {
			// The boundary PDE rows are enforced at the ghost row indices,
			// keeping the stencils one-sided across the surface.
			out = append(out, pass{
				Name:    name + " ghost body force",
				Mode:    Overwrite,
				Bands:   bandBoth,
				Targets: ghosts,
				apply:   el.bodyForce(bnd, ghosts),
			})
		}
		switch flag {
		case BC_Free:
			out = append(out, pass{
				Name:    name + " surface traction",
				Mode:    Overwrite,
				Bands:   bandBoth,
				Targets: bnd,
				apply:   el.freeTraction(bnd),
			})
		case BC_Roller:
			out = append(out, pass{
				Name:    name + " roller normal displacement",
				Mode:    Overwrite,
				Bands:   bandX,
				Targets: bnd,
				apply:   el.rollerDisplacement(bnd),
			})
			out = append(out, pass{
				Name:    name + " roller tangential traction",
				Mode:    Accumulate,
				Bands:   bandY,
				Targets: bnd,
				apply:   el.rollerTangential(bnd),
			})
		}
	}
	return
}

func (el *Elastostatic) bodyForce(src, tgt utils.Index) func(bl *blockSet) error {
	return func(bl *blockSet) (err error) {
		var (
			pts                = geometry2D.Subset(el.L.Nodes, src)
			xxT, xyT, yxT, yyT = el.Mat.BodyForceTerms()
		)
		for _, c := range []struct {
			terms []fd.Term
			dst   *utils.RowSparse
		}{
			{xxT, bl.xx}, {xyT, bl.xy}, {yxT, bl.yx}, {yyT, bl.yy},
		} {
			W, err := fd.WeightMatrix(pts, el.L.Nodes, c.terms, el.StencilSize)
			if err != nil {
				return err
			}
			if err = c.dst.AccumulateRows(tgt, W, nil); err != nil {
				return err
			}
		}
		return nil
	}
}

func (el *Elastostatic) freeTraction(bnd utils.Index) func(bl *blockSet) error {
	return func(bl *blockSet) error {
		nx, ny := el.normalComponents(bnd)
		return el.accumulateTraction(bl, bnd, nx, ny, nil, nil)
	}
}

// rollerDisplacement writes the fixed-normal-displacement equation into the
// x band: identity rows scaled per node by n_x into the xx block and by
// n_y into the xy block.
//
// Known approximation: the displacement components are constrained
// independently (one scaled row each) rather than as a single n.u
// dot-product row. Kept deliberately, pending a modeling review; tests
// assert this exact structure.
func (el *Elastostatic) rollerDisplacement(bnd utils.Index) func(bl *blockSet) error {
	return func(bl *blockSet) (err error) {
		var (
			pts    = geometry2D.Subset(el.L.Nodes, bnd)
			nx, ny = el.normalComponents(bnd)
		)
		W, err := fd.WeightMatrix(pts, el.L.Nodes, DisplacementTerms(), 1)
		if err != nil {
			return
		}
		if err = bl.xx.AccumulateRows(bnd, W, nx); err != nil {
			return
		}
		err = bl.xy.AccumulateRows(bnd, W, ny)
		return
	}
}

// rollerTangential writes the zero-tangential-traction equation into the y
// band: the traction operator projected onto the boundary-parallel
// direction, a sum of two scaled operator evaluations per block.
func (el *Elastostatic) rollerTangential(bnd utils.Index) func(bl *blockSet) error {
	return func(bl *blockSet) (err error) {
		nx, ny := el.normalComponents(bnd)
		tangents, err := FindOrthogonals(geometry2D.Subset(el.L.Normals, bnd))
		if err != nil {
			return
		}
		tx := make([]float64, len(bnd))
		ty := make([]float64, len(bnd))
		for i, t := range tangents {
			tx[i], ty[i] = t[0], t[1]
		}
		return el.accumulateTraction(bl, bnd, nx, ny, tx, ty)
	}
}

// accumulateTraction adds the surface traction blocks for the bnd subset.
// With tx == nil the blocks land in their own positions (free-surface
// rows). With a projection (tx, ty) the x-equation blocks are folded into
// the y band: yx += tx*Sxx + ty*Syx, yy += tx*Sxy + ty*Syy.
func (el *Elastostatic) accumulateTraction(bl *blockSet, bnd utils.Index, nx, ny, tx, ty []float64) (err error) {
	var (
		pts                = geometry2D.Subset(el.L.Nodes, bnd)
		cxx, cxy, cyx, cyy = el.Mat.SurfaceForceContribs()
	)
	add := func(dst *utils.RowSparse, contribs []tractionContrib, extra []float64) error {
		for _, c := range contribs {
			W, err := fd.WeightMatrix(pts, el.L.Nodes, c.terms, el.StencilSize)
			if err != nil {
				return err
			}
			scale := nx
			if c.useNy {
				scale = ny
			}
			if extra != nil {
				combined := make([]float64, len(scale))
				for i := range combined {
					combined[i] = scale[i] * extra[i]
				}
				scale = combined
			}
			if err = dst.AccumulateRows(bnd, W, scale); err != nil {
				return err
			}
		}
		return nil
	}
	if tx == nil {
		if err = add(bl.xx, cxx, nil); err != nil {
			return
		}
		if err = add(bl.xy, cxy, nil); err != nil {
			return
		}
		if err = add(bl.yx, cyx, nil); err != nil {
			return
		}
		return add(bl.yy, cyy, nil)
	}
	if err = add(bl.yx, cxx, tx); err != nil {
		return
	}
	if err = add(bl.yx, cyx, ty); err != nil {
		return
	}
	if err = add(bl.yy, cxy, tx); err != nil {
		return
	}
	return add(bl.yy, cyy, ty)
}

func (el *Elastostatic) normalComponents(bnd utils.Index) (nx, ny []float64) {
	nx = make([]float64, len(bnd))
	ny = make([]float64, len(bnd))
	for i, idx := range bnd {
		nx[i] = el.L.Normals[idx][0]
		ny[i] = el.L.Normals[idx][1]
	}
	return
}

// rhs builds the right-hand side: the prescribed body load on interior and
// ghost rows (zero in x, Gravity in y), zeros on boundary condition rows.
func (el *Elastostatic) rhs() (b []float64) {
	var (
		N = el.L.NumNodes()
	)
	b = make([]float64, 2*N)
	loaded := utils.Concat(el.L.Groups[geometry2D.GroupInterior])
	for _, name := range el.L.BoundaryGroups() {
		if ghosts, ok := el.L.Groups[geometry2D.GhostGroup(name)]; ok {
			loaded = utils.Concat(loaded, ghosts)
		}
	}
	for _, i := range loaded {
		b[N+i] = el.Gravity
	}
	return
}
