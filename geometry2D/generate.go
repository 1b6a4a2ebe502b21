package geometry2D

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/mfree/utils"
	"github.com/pradeep-pyro/triangle"
)

// Boundary describes a closed polygonal domain boundary. Vertices must wind
// counterclockwise; Segments index vertex pairs; Groups assigns every
// segment to exactly one boundary-condition group by name ("free",
// "roller", ...).
type Boundary struct {
	Vertices [][2]float64
	Segments [][2]int
	Groups   map[string][]int
}

// DensityFunc gives the relative target node density at a point. Spacing
// scales with 1/sqrt(density). nil means uniform.
type DensityFunc func(p [2]float64) float64

const (
	relaxSweeps       = 12
	relaxNeighbors    = 7
	boundaryClearance = 0.7
	sampleBudget      = 50 // candidate multiplier before giving up
)

// Generate produces a node layout for the domain: boundary nodes along the
// segments, interior nodes seeded from a Halton sequence over the Delaunay
// triangulation of the polygon and relaxed by repulsion sweeps, and one
// ghost node outside the boundary for every boundary node of the groups
// named in ghostGroups. count is a target for the non-ghost node total;
// ghosts are appended beyond it.
func Generate(count int, b Boundary, ghostGroups []string, density DensityFunc) (l *Layout, err error) {
	if err = b.validate(); err != nil {
		return
	}
	if density == nil {
		density = func([2]float64) float64 { return 1 }
	}
	area := b.area()
	if area <= 0 {
		err = fmt.Errorf("%w: boundary polygon must wind counterclockwise", ErrShapeMismatch)
		return
	}
	h := math.Sqrt(area / float64(count))

	bndNodes, bndNormals := b.sampleBoundary(h, density)
	nBnd := 0
	for _, pts := range bndNodes {
		nBnd += len(pts)
	}
	nInterior := count - nBnd
	if nInterior < 0 {
		err = fmt.Errorf("%w: boundary discretization needs %d nodes but the target count is %d", ErrShapeMismatch, nBnd, count)
		return
	}

	interior, err := b.sampleInterior(nInterior, h, density, flatten(bndNodes))
	if err != nil {
		return
	}

	// Layout order: interior first, then boundary groups in lexical order,
	// then ghosts per ghostGroups.
	var (
		nodes   [][2]float64
		groups  = make(map[string]utils.Index)
		normals [][2]float64
	)
	nodes = append(nodes, interior...)
	groups[GroupInterior] = utils.NewRange(0, len(interior)-1)
	normals = append(normals, make([][2]float64, len(interior))...)

	names := make([]string, 0, len(bndNodes))
	for name := range bndNodes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		start := len(nodes)
		nodes = append(nodes, bndNodes[name]...)
		normals = append(normals, bndNormals[name]...)
		groups[BoundaryGroup(name)] = utils.NewRange(start, len(nodes)-1)
	}

	relax(nodes, groups[GroupInterior], b, h, density)

	for _, name := range ghostGroups {
		src, ok := groups[BoundaryGroup(name)]
		if !ok {
			err = fmt.Errorf("%w: ghost group %q has no boundary group", ErrShapeMismatch, name)
			return
		}
		start := len(nodes)
		for _, i := range src {
			// Ghosts sit one local spacing outside the surface so the
			// boundary PDE rows can use centered stencils.
			hl := h / math.Sqrt(density(nodes[i]))
			n := normals[i]
			nodes = append(nodes, [2]float64{nodes[i][0] + hl*n[0], nodes[i][1] + hl*n[1]})
			normals = append(normals, [2]float64{})
		}
		groups[GhostGroup(name)] = utils.NewRange(start, len(nodes)-1)
	}

	l = &Layout{Nodes: nodes, Groups: groups, Normals: normals}
	err = l.Validate()
	return
}

func (b Boundary) validate() error {
	for _, p := range b.Vertices {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) {
			return fmt.Errorf("%w: NaN vertex coordinate", ErrShapeMismatch)
		}
	}
	owned := make(map[int]string)
	for name, segs := range b.Groups {
		for _, s := range segs {
			if s < 0 || s >= len(b.Segments) {
				return fmt.Errorf("%w: group %q references segment %d of %d", ErrShapeMismatch, name, s, len(b.Segments))
			}
			if prev, ok := owned[s]; ok {
				return fmt.Errorf("%w: segment %d in groups %q and %q", ErrShapeMismatch, s, prev, name)
			}
			owned[s] = name
		}
	}
	for i, seg := range b.Segments {
		if _, ok := owned[i]; !ok {
			return fmt.Errorf("%w: segment %d belongs to no group", ErrShapeMismatch, i)
		}
		for _, v := range seg {
			if v < 0 || v >= len(b.Vertices) {
				return fmt.Errorf("%w: segment %d references vertex %d of %d", ErrShapeMismatch, i, v, len(b.Vertices))
			}
		}
	}
	return nil
}

// area is the shoelace polygon area; positive for counterclockwise winding.
func (b Boundary) area() (A float64) {
	n := len(b.Vertices)
	for i := 0; i < n; i++ {
		p, q := b.Vertices[i], b.Vertices[(i+1)%n]
		A += p[0]*q[1] - q[0]*p[1]
	}
	return 0.5 * A
}

func (b Boundary) contains(p [2]float64) bool {
	// Ray cast in +x.
	n := len(b.Vertices)
	inside := false
	for i := 0; i < n; i++ {
		a, c := b.Vertices[i], b.Vertices[(i+1)%n]
		if (a[1] > p[1]) != (c[1] > p[1]) {
			xCross := a[0] + (p[1]-a[1])/(c[1]-a[1])*(c[0]-a[0])
			if p[0] < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// sampleBoundary places nodes along each group's segments at density-scaled
// spacing, at segment-interior fractions so shared vertices are not
// duplicated across groups. Normals point outward for counterclockwise
// winding.
func (b Boundary) sampleBoundary(h float64, density DensityFunc) (
	nodes map[string][][2]float64, normals map[string][][2]float64) {
	nodes = make(map[string][][2]float64)
	normals = make(map[string][][2]float64)
	for name, segs := range b.Groups {
		for _, s := range segs {
			p, q := b.Vertices[b.Segments[s][0]], b.Vertices[b.Segments[s][1]]
			dx, dy := q[0]-p[0], q[1]-p[1]
			L := math.Hypot(dx, dy)
			mid := [2]float64{0.5 * (p[0] + q[0]), 0.5 * (p[1] + q[1])}
			k := int(math.Round(L * math.Sqrt(density(mid)) / h))
			if k < 1 {
				k = 1
			}
			// Outward normal of a CCW-wound segment.
			nrm := [2]float64{dy / L, -dx / L}
			for i := 0; i < k; i++ {
				t := (float64(i) + 0.5) / float64(k)
				nodes[name] = append(nodes[name], [2]float64{p[0] + t*dx, p[1] + t*dy})
				normals[name] = append(normals[name], nrm)
			}
		}
	}
	return
}

// sampleInterior draws Halton points over the area-weighted Delaunay
// triangles of the polygon, rejecting candidates too close to the boundary
// or to already accepted nodes.
func (b Boundary) sampleInterior(want int, h float64, density DensityFunc, bnd [][2]float64) (pts [][2]float64, err error) {
	if want == 0 {
		return
	}
	faces := triangle.Delaunay(b.Vertices)
	type tri struct {
		a, b, c [2]float64
		cumArea float64
	}
	var (
		tris  []tri
		total float64
	)
	for _, f := range faces {
		a, bb, c := b.Vertices[int(f[0])], b.Vertices[int(f[1])], b.Vertices[int(f[2])]
		cen := [2]float64{(a[0] + bb[0] + c[0]) / 3, (a[1] + bb[1] + c[1]) / 3}
		if !b.contains(cen) {
			continue // hull triangle outside the polygon
		}
		A := 0.5 * math.Abs((bb[0]-a[0])*(c[1]-a[1])-(c[0]-a[0])*(bb[1]-a[1]))
		total += A
		tris = append(tris, tri{a: a, b: bb, c: c, cumArea: total})
	}
	if len(tris) == 0 {
		err = fmt.Errorf("%w: polygon triangulation produced no interior triangles", ErrShapeMismatch)
		return
	}

	bndTree := NewKDTree(bnd)
	grid := newCellGrid(h)
	hal := &halton{}
	for attempts := 0; len(pts) < want && attempts < sampleBudget*want; attempts++ {
		u, v, w := hal.next()
		// Area-weighted triangle pick, then uniform point via the sqrt map.
		target := w * total
		t := tris[len(tris)-1]
		for _, cand := range tris {
			if cand.cumArea >= target {
				t = cand
				break
			}
		}
		su := math.Sqrt(u)
		p := [2]float64{
			(1-su)*t.a[0] + su*(1-v)*t.b[0] + su*v*t.c[0],
			(1-su)*t.a[1] + su*(1-v)*t.b[1] + su*v*t.c[1],
		}
		if !b.contains(p) {
			continue // hull triangles can overhang concave corners
		}
		hl := h / math.Sqrt(density(p))
		if len(bnd) > 0 && bndTree.NearestDist(p, -1) < boundaryClearance*hl {
			continue
		}
		if grid.tooClose(p, boundaryClearance*hl) {
			continue
		}
		grid.insert(p)
		pts = append(pts, p)
	}
	if len(pts) < want {
		err = fmt.Errorf("%w: placed %d of %d interior nodes; domain too small for the target count", ErrShapeMismatch, len(pts), want)
	}
	return
}

// relax runs a few repulsion sweeps over the interior nodes with boundary
// positions held fixed. Moves that would leave the domain are skipped.
func relax(nodes [][2]float64, interior utils.Index, b Boundary, h float64, density DensityFunc) {
	for sweep := 0; sweep < relaxSweeps; sweep++ {
		tree := NewKDTree(nodes)
		step := 0.2 * h
		for _, i := range interior {
			p := nodes[i]
			hl := h / math.Sqrt(density(p))
			var fx, fy float64
			for _, j := range tree.Nearest(p, relaxNeighbors+1) {
				if j == i {
					continue
				}
				dx, dy := p[0]-nodes[j][0], p[1]-nodes[j][1]
				d := math.Hypot(dx, dy)
				if d < 1e-14 || d > 2*hl {
					continue
				}
				f := (2*hl - d) / (2 * hl)
				fx += f * dx / d
				fy += f * dy / d
			}
			moved := [2]float64{p[0] + step*fx, p[1] + step*fy}
			if b.contains(moved) {
				nodes[i] = moved
			}
		}
	}
}

// halton yields low-discrepancy triples from bases 2, 3 and 5.
type halton struct{ i int }

func (h *halton) next() (u, v, w float64) {
	h.i++
	return radicalInverse(h.i, 2), radicalInverse(h.i, 3), radicalInverse(h.i, 5)
}

func radicalInverse(i, base int) (r float64) {
	f := 1.0
	for i > 0 {
		f /= float64(base)
		r += f * float64(i%base)
		i /= base
	}
	return
}

// cellGrid hashes accepted points into h-sized cells for O(1) spacing
// rejection.
type cellGrid struct {
	h     float64
	cells map[[2]int][][2]float64
}

func newCellGrid(h float64) *cellGrid {
	return &cellGrid{h: h, cells: make(map[[2]int][][2]float64)}
}

func (g *cellGrid) key(p [2]float64) [2]int {
	return [2]int{int(math.Floor(p[0] / g.h)), int(math.Floor(p[1] / g.h))}
}

func (g *cellGrid) insert(p [2]float64) {
	k := g.key(p)
	g.cells[k] = append(g.cells[k], p)
}

func (g *cellGrid) tooClose(p [2]float64, minDist float64) bool {
	k := g.key(p)
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			for _, q := range g.cells[[2]int{k[0] + di, k[1] + dj}] {
				if math.Hypot(p[0]-q[0], p[1]-q[1]) < minDist {
					return true
				}
			}
		}
	}
	return false
}

func flatten(m map[string][][2]float64) (out [][2]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, m[name]...)
	}
	return
}
