package geometry2D

import (
	"container/heap"
	"math"
	"sort"

	"github.com/notargets/mfree/utils"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// KDTree answers k-nearest-neighbor queries over a node set, reporting node
// indices. Thin wrapper over gonum's spatial/kdtree with index-carrying
// points.
type KDTree struct {
	tree *kdtree.Tree
	pts  [][2]float64
	n    int
}

type kdNode struct {
	x, y float64
	id   int
}

func (p kdNode) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(kdNode)
	switch d {
	case 0:
		return p.x - q.x
	default:
		return p.y - q.y
	}
}

func (p kdNode) Dims() int { return 2 }

func (p kdNode) Distance(c kdtree.Comparable) float64 {
	q := c.(kdNode)
	dx, dy := p.x-q.x, p.y-q.y
	return dx*dx + dy*dy
}

type kdNodes []kdNode

func (p kdNodes) Index(i int) kdtree.Comparable         { return p[i] }
func (p kdNodes) Len() int                              { return len(p) }
func (p kdNodes) Pivot(d kdtree.Dim) int                { return kdPlane{Dim: d, ns: p}.Pivot() }
func (p kdNodes) Slice(start, end int) kdtree.Interface { return p[start:end] }

type kdPlane struct {
	kdtree.Dim
	ns kdNodes
}

func (p kdPlane) Len() int { return len(p.ns) }
func (p kdPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.ns[i].x < p.ns[j].x
	default:
		return p.ns[i].y < p.ns[j].y
	}
}
func (p kdPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.ns = p.ns[start:end]
	return p
}
func (p kdPlane) Swap(i, j int) { p.ns[i], p.ns[j] = p.ns[j], p.ns[i] }

func NewKDTree(nodes [][2]float64) (t *KDTree) {
	ns := make(kdNodes, len(nodes))
	for i, p := range nodes {
		ns[i] = kdNode{x: p[0], y: p[1], id: i}
	}
	t = &KDTree{
		tree: kdtree.New(ns, false),
		pts:  nodes,
		n:    len(nodes),
	}
	return
}

// Nearest returns the indices of the k nodes nearest to p, ordered by
// increasing distance. k larger than the tree size returns all nodes.
func (t *KDTree) Nearest(p [2]float64, k int) (I utils.Index) {
	if k > t.n {
		k = t.n
	}
	keep := kdtree.NewNKeeper(k)
	t.tree.NearestSet(keep, kdNode{x: p[0], y: p[1], id: -1})
	type hit struct {
		id   int
		dist float64
	}
	hits := make([]hit, 0, k)
	for keep.Len() > 0 {
		v := heap.Pop(keep).(kdtree.ComparableDist)
		if v.Comparable == nil {
			continue
		}
		hits = append(hits, hit{id: v.Comparable.(kdNode).id, dist: v.Dist})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].id < hits[j].id // deterministic tie-break
	})
	I = make(utils.Index, len(hits))
	for i, h := range hits {
		I[i] = h.id
	}
	return
}

// NearestDist returns the Euclidean distance from p to its nearest node,
// excluding the node at index self (pass -1 to exclude nothing).
func (t *KDTree) NearestDist(p [2]float64, self int) float64 {
	for _, i := range t.Nearest(p, 2) {
		if i != self {
			d := t.pts[i]
			return math.Hypot(p[0]-d[0], p[1]-d[1])
		}
	}
	return math.Inf(1)
}
