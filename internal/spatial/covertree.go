package spatial

import (
	"math"

	"github.com/hupe1980/kmeans/distance"
	"github.com/hupe1980/kmeans/matrix"
)

// coverBase is the expansion constant between tree levels.
const coverBase = 2.0

// CoverTree partitions points with metric balls: every node owns one point
// and covers a ball around it. Construction is insertion-based; afterwards
// each node's radius is measured exactly as the distance to its furthest
// descendant, so the ball bounds do not depend on how well the insertion
// order preserved the cover invariants.
type CoverTree struct {
	points  *matrix.Dense
	indices []int
	root    *coverNode
}

type coverNode struct {
	point      int
	center     []float64
	level      int
	radius     float64
	begin, end int
	kids       []*coverNode
	children   []Node
}

// NewCoverTree builds a cover tree over all rows of points.
func NewCoverTree(points *matrix.Dense) *CoverTree {
	n := points.Rows()
	t := &CoverTree{
		points:  points,
		indices: make([]int, 0, n),
	}
	t.root = &coverNode{point: 0, center: points.Row(0), level: 0}

	for i := 1; i < n; i++ {
		t.insert(i)
	}

	t.assign(t.root)
	t.measure(t.root)

	return t
}

// Root implements Tree.
func (t *CoverTree) Root() Node { return t.root }

// Indices implements Tree.
func (t *CoverTree) Indices() []int { return t.indices }

func covdist(level int) float64 {
	return math.Pow(coverBase, float64(level))
}

func (t *CoverTree) insert(i int) {
	p := t.points.Row(i)

	// Raise the root level until its covering radius reaches the new point.
	d := distance.L2(p, t.root.center)
	for d > covdist(t.root.level) {
		t.root.level++
	}

	node := t.root
	for {
		// Descend into the nearest child whose covering radius reaches p;
		// the earliest child wins exact ties.
		var next *coverNode
		var nextDist float64
		for _, child := range node.kids {
			cd := distance.L2(p, child.center)
			if cd <= covdist(child.level) && (next == nil || cd < nextDist) {
				next = child
				nextDist = cd
			}
		}

		if next == nil {
			node.kids = append(node.kids, &coverNode{
				point:  i,
				center: p,
				level:  node.level - 1,
			})
			return
		}

		node = next
	}
}

// assign orders points depth-first so each subtree owns a contiguous range.
func (t *CoverTree) assign(node *coverNode) {
	node.begin = len(t.indices)
	t.indices = append(t.indices, node.point)

	if len(node.kids) > 0 {
		node.children = make([]Node, len(node.kids))
		for k, child := range node.kids {
			node.children[k] = child
			t.assign(child)
		}
	}

	node.end = len(t.indices)
}

// measure records each node's exact furthest-descendant distance.
func (t *CoverTree) measure(node *coverNode) {
	var r float64
	for _, idx := range t.indices[node.begin:node.end] {
		if d := distance.SquaredL2(node.center, t.points.Row(idx)); d > r {
			r = d
		}
	}
	node.radius = math.Sqrt(r)

	for _, child := range node.kids {
		t.measure(child)
	}
}

// Children implements Node.
func (n *coverNode) Children() []Node { return n.children }

// Range implements Node.
func (n *coverNode) Range() (int, int) { return n.begin, n.end }

// MinSqDist implements Node.
func (n *coverNode) MinSqDist(p []float64) float64 {
	d := distance.L2(p, n.center) - n.radius
	if d <= 0 {
		return 0
	}
	return d * d
}

// MaxSqDist implements Node.
func (n *coverNode) MaxSqDist(p []float64) float64 {
	d := distance.L2(p, n.center) + n.radius
	return d * d
}
