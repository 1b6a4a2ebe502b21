package geometry2D

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/notargets/mfree/utils"
)

// Canonical node group names. Boundary and ghost groups are suffixed with
// the boundary-condition name they were generated for, e.g. "boundary:free".
const (
	GroupInterior  = "interior"
	GroupBoundary  = "boundary:"
	GroupGhosts    = "ghosts:"
	unitNormalsTol = 1.e-9
)

func BoundaryGroup(name string) string { return GroupBoundary + name }
func GhostGroup(name string) string    { return GroupGhosts + name }

// Layout is the read-only node layout consumed by the discretization:
// coordinates (ghosts included), the index groups partitioning them, and
// per-boundary-node unit outward normals (zero rows for non-boundary nodes).
type Layout struct {
	Nodes   [][2]float64
	Groups  map[string]utils.Index
	Normals [][2]float64
}

func (l *Layout) NumNodes() int { return len(l.Nodes) }

// BoundaryGroups returns the names (without prefix) of the boundary groups
// present, in lexical order for determinism.
func (l *Layout) BoundaryGroups() (names []string) {
	for g := range l.Groups {
		if strings.HasPrefix(g, GroupBoundary) {
			names = append(names, strings.TrimPrefix(g, GroupBoundary))
		}
	}
	sort.Strings(names)
	return
}

// Validate checks the invariants the assembly relies on:
//   - every non-ghost node index appears in exactly one of interior and the
//     boundary groups;
//   - each ghost group has the same length as its source boundary group;
//   - normals are aligned with Nodes and unit length on boundary nodes.
func (l *Layout) Validate() (err error) {
	var (
		N = len(l.Nodes)
	)
	if len(l.Normals) != N {
		return fmt.Errorf("%w: normals rows = %d, nodes = %d", ErrShapeMismatch, len(l.Normals), N)
	}
	var nonGhost []utils.Index
	ghostCount := 0
	for g, I := range l.Groups {
		if err = I.CheckBounds(N); err != nil {
			return fmt.Errorf("%w: group %q: %v", ErrShapeMismatch, g, err)
		}
		if strings.HasPrefix(g, GroupGhosts) {
			ghostCount += len(I)
			continue
		}
		nonGhost = append(nonGhost, I)
	}
	if v, dup := utils.Duplicates(nonGhost...); dup {
		return fmt.Errorf("%w: node %d belongs to more than one non-ghost group", ErrShapeMismatch, v)
	}
	var total int
	for _, I := range nonGhost {
		total += len(I)
	}
	if total+ghostCount != N {
		return fmt.Errorf("%w: groups cover %d of %d nodes", ErrShapeMismatch, total+ghostCount, N)
	}
	for _, name := range l.BoundaryGroups() {
		bnd := l.Groups[BoundaryGroup(name)]
		if gh, ok := l.Groups[GhostGroup(name)]; ok && len(gh) != len(bnd) {
			return fmt.Errorf("%w: ghost group %q has %d nodes, source boundary has %d",
				ErrShapeMismatch, name, len(gh), len(bnd))
		}
		for _, i := range bnd {
			n := l.Normals[i]
			if math.Abs(math.Hypot(n[0], n[1])-1) > unitNormalsTol {
				return fmt.Errorf("%w: normal at node %d is not unit length", ErrShapeMismatch, i)
			}
		}
	}
	return nil
}

// NoGhosts returns the node indices of all non-ghost nodes in the reporting
// order used for solution fields: interior, then boundary groups in the
// order given.
func (l *Layout) NoGhosts(boundaryOrder ...string) (I utils.Index) {
	I = append(I, l.Groups[GroupInterior]...)
	if len(boundaryOrder) == 0 {
		boundaryOrder = l.BoundaryGroups()
	}
	for _, name := range boundaryOrder {
		I = append(I, l.Groups[BoundaryGroup(name)]...)
	}
	return
}

// FlatCoords returns the coordinates flattened row-major, the form the
// memoizing cache keys on.
func FlatCoords(nodes [][2]float64) (flat []float64) {
	flat = make([]float64, 0, 2*len(nodes))
	for _, p := range nodes {
		flat = append(flat, p[0], p[1])
	}
	return
}

// Subset returns the coordinate rows selected by I.
func Subset(nodes [][2]float64, I utils.Index) (out [][2]float64) {
	out = make([][2]float64, len(I))
	for k, i := range I {
		out[k] = nodes[i]
	}
	return
}
