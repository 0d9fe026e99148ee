package spatial

import (
	"sort"

	"github.com/hupe1980/kmeans/matrix"
)

// DefaultLeafSize is the kd-tree leaf capacity used when none is given.
const DefaultLeafSize = 20

// KDTree partitions points with axis-aligned splits on the widest dimension.
// Every node carries a tight bounding box recomputed from its own points, so
// bounds stay exact even for skewed splits.
type KDTree struct {
	points  *matrix.Dense
	indices []int
	root    *kdNode
}

type kdNode struct {
	begin, end int
	boxMin     []float64
	boxMax     []float64
	children   []Node
}

// NewKDTree builds a kd-tree over all rows of points. leafSize <= 0 selects
// DefaultLeafSize.
func NewKDTree(points *matrix.Dense, leafSize int) *KDTree {
	if leafSize <= 0 {
		leafSize = DefaultLeafSize
	}

	n := points.Rows()
	t := &KDTree{
		points:  points,
		indices: make([]int, n),
	}
	for i := range t.indices {
		t.indices[i] = i
	}

	t.root = t.build(0, n, leafSize)

	return t
}

// Root implements Tree.
func (t *KDTree) Root() Node { return t.root }

// Indices implements Tree.
func (t *KDTree) Indices() []int { return t.indices }

func (t *KDTree) build(begin, end, leafSize int) *kdNode {
	node := &kdNode{begin: begin, end: end}
	node.boxMin, node.boxMax = t.bounds(begin, end)

	if end-begin <= leafSize {
		return node
	}

	// Split on the dimension with the widest spread; the lowest dimension
	// wins ties so construction is reproducible.
	dim := 0
	spread := node.boxMax[0] - node.boxMin[0]
	for d := 1; d < t.points.Cols(); d++ {
		if s := node.boxMax[d] - node.boxMin[d]; s > spread {
			spread = s
			dim = d
		}
	}

	sub := t.indices[begin:end]
	sort.Slice(sub, func(a, b int) bool {
		va, vb := t.points.At(sub[a], dim), t.points.At(sub[b], dim)
		if va != vb {
			return va < vb
		}
		return sub[a] < sub[b]
	})

	mid := begin + (end-begin)/2
	left := t.build(begin, mid, leafSize)
	right := t.build(mid, end, leafSize)
	node.children = []Node{left, right}

	return node
}

func (t *KDTree) bounds(begin, end int) (boxMin, boxMax []float64) {
	cols := t.points.Cols()
	boxMin = make([]float64, cols)
	boxMax = make([]float64, cols)
	copy(boxMin, t.points.Row(t.indices[begin]))
	copy(boxMax, boxMin)

	for i := begin + 1; i < end; i++ {
		row := t.points.Row(t.indices[i])
		for d, v := range row {
			if v < boxMin[d] {
				boxMin[d] = v
			}
			if v > boxMax[d] {
				boxMax[d] = v
			}
		}
	}

	return boxMin, boxMax
}

// Children implements Node.
func (n *kdNode) Children() []Node { return n.children }

// Range implements Node.
func (n *kdNode) Range() (int, int) { return n.begin, n.end }

// MinSqDist implements Node. Distance from p to the nearest face of the
// bounding box, zero if p lies inside.
func (n *kdNode) MinSqDist(p []float64) float64 {
	var s float64
	for d, v := range p {
		if v < n.boxMin[d] {
			diff := n.boxMin[d] - v
			s += diff * diff
		} else if v > n.boxMax[d] {
			diff := v - n.boxMax[d]
			s += diff * diff
		}
	}
	return s
}

// MaxSqDist implements Node. Distance from p to the farthest box corner.
func (n *kdNode) MaxSqDist(p []float64) float64 {
	var s float64
	for d, v := range p {
		lo := v - n.boxMin[d]
		if lo < 0 {
			lo = -lo
		}
		hi := v - n.boxMax[d]
		if hi < 0 {
			hi = -hi
		}
		if hi > lo {
			lo = hi
		}
		s += lo * lo
	}
	return s
}
