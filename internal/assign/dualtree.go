package assign

import (
	"context"
	"math"

	"github.com/hupe1980/kmeans/distance"
	"github.com/hupe1980/kmeans/internal/spatial"
	"github.com/hupe1980/kmeans/matrix"
)

// dualTree assigns whole subtrees at once. Each node carries a candidate
// centroid list inherited from its parent; a candidate whose minimum
// distance to the node strictly exceeds some other candidate's maximum is
// worse for every point inside and drops out. A node left with a single
// candidate assigns its full index range without touching the points.
//
// Pruning uses strict inequalities only, so a pruned centroid can neither
// win nor tie for any point in the node and the surviving winner is the
// same one an exhaustive scan would pick.
type dualTree struct {
	points *matrix.Dense
	tree   spatial.Tree
	name   string
}

func newDualTreeKD(points *matrix.Dense) *dualTree {
	return &dualTree{
		points: points,
		tree:   spatial.NewKDTree(points, 0),
		name:   KindDualTreeKD.String(),
	}
}

func newDualTreeCover(points *matrix.Dense) *dualTree {
	return &dualTree{
		points: points,
		tree:   spatial.NewCoverTree(points),
		name:   KindDualTreeCover.String(),
	}
}

func (d *dualTree) Name() string { return d.name }

func (d *dualTree) Reset() {}

func (d *dualTree) Assign(ctx context.Context, centroids *matrix.Dense, labels []int) (int, float64, error) {
	cands := make([]int, centroids.Rows())
	for j := range cands {
		cands[j] = j
	}

	var changed int
	if err := d.descend(ctx, d.tree.Root(), cands, centroids, labels, &changed); err != nil {
		return 0, 0, err
	}

	return changed, totalDistortion(d.points, centroids, labels), nil
}

// descend filters the candidate list against the node's bounds and either
// bulk-assigns, scans the leaf, or recurses.
func (d *dualTree) descend(ctx context.Context, node spatial.Node, cands []int, centroids *matrix.Dense, labels []int, changed *int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bound := math.Inf(1)
	minSq := make([]float64, len(cands))
	for idx, j := range cands {
		c := centroids.Row(j)
		minSq[idx] = node.MinSqDist(c)
		if mx := node.MaxSqDist(c); mx < bound {
			bound = mx
		}
	}

	// Candidate order is ascending, so the filtered list stays ascending
	// and leaf scans keep ties on the lower centroid index.
	keep := make([]int, 0, len(cands))
	for idx, j := range cands {
		if minSq[idx] > bound {
			continue
		}
		keep = append(keep, j)
	}

	begin, end := node.Range()
	order := d.tree.Indices()

	if len(keep) == 1 {
		j := keep[0]
		for _, i := range order[begin:end] {
			if labels[i] != j {
				labels[i] = j
				*changed++
			}
		}
		return nil
	}

	children := node.Children()
	if len(children) == 0 {
		d.scanPoints(order[begin:end], keep, centroids, labels, changed)
		return nil
	}

	// Child ranges are contiguous but need not cover the node's whole
	// range: a cover-tree node holds its own point outside every child.
	// Points in the gaps get an exact scan against the surviving
	// candidates.
	pos := begin
	for _, child := range children {
		childBegin, childEnd := child.Range()
		d.scanPoints(order[pos:childBegin], keep, centroids, labels, changed)
		if err := d.descend(ctx, child, keep, centroids, labels, changed); err != nil {
			return err
		}
		pos = childEnd
	}
	d.scanPoints(order[pos:end], keep, centroids, labels, changed)

	return nil
}

// scanPoints assigns each listed point to its nearest candidate exactly.
func (d *dualTree) scanPoints(points []int, cands []int, centroids *matrix.Dense, labels []int, changed *int) {
	for _, i := range points {
		best := nearestAmong(d.points.Row(i), centroids, cands)
		if labels[i] != best {
			labels[i] = best
			*changed++
		}
	}
}

// nearestAmong scans an ascending candidate list by exact squared distance,
// leaving ties on the lower centroid index.
func nearestAmong(p []float64, centroids *matrix.Dense, cands []int) int {
	best := cands[0]
	bestSq := distance.SquaredL2(p, centroids.Row(best))
	for _, j := range cands[1:] {
		if sq := distance.SquaredL2(p, centroids.Row(j)); sq < bestSq {
			best, bestSq = j, sq
		}
	}
	return best
}
