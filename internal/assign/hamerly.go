package assign

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/hupe1980/kmeans/distance"
	"github.com/hupe1980/kmeans/matrix"
)

// hamerly prunes with two bounds per point: an upper bound to the assigned
// centroid and a single lower bound on the distance to the second-closest
// centroid. Cheaper to maintain than the full elkan bound set, at the cost
// of a full rescan whenever the bounds cross.
//
// The rescan is the same exact two-minimum sweep the cold start uses, so a
// point that falls out of its pruning window lands on the identical winner
// an unpruned scan would pick.
type hamerly struct {
	points  *matrix.Dense
	workers int

	k       int           // centroid count the caches were built for; 0 = cold
	prev    *matrix.Dense // centroid snapshot backing the caches
	upper   []float64     // per point: L2 upper bound to the assigned centroid
	upperSq []float64     // per point: exact squared distance when !stale
	stale   []bool        // per point: upper has been drift-inflated
	lower   []float64     // per point: L2 lower bound to the second-closest centroid
	s       []float64     // per centroid: half distance to its nearest peer
	moved   []float64     // per centroid: drift since the previous call
}

func (h *hamerly) Name() string { return KindHamerly.String() }

func (h *hamerly) Reset() { h.k = 0 }

func (h *hamerly) Assign(ctx context.Context, centroids *matrix.Dense, labels []int) (int, float64, error) {
	k := centroids.Rows()

	var changed atomic.Int64
	var err error
	if h.k != k {
		err = h.coldStart(ctx, centroids, labels, &changed)
	} else {
		for j := 0; j < k; j++ {
			h.moved[j] = distance.L2(h.prev.Row(j), centroids.Row(j))
		}
		h.centerBounds(centroids)
		err = h.warmPass(ctx, centroids, labels, &changed)
	}
	if err != nil {
		return 0, 0, err
	}

	copy(h.prev.Data(), centroids.Data())

	return int(changed.Load()), totalDistortion(h.points, centroids, labels), nil
}

// scanTwo finds the closest and second-closest centroids for p by exact
// squared distance. The ascending strict scan leaves ties on the lower
// index.
func scanTwo(p []float64, centroids *matrix.Dense) (best int, bestSq, secondSq float64) {
	bestSq = distance.SquaredL2(p, centroids.Row(0))
	secondSq = math.Inf(1)
	for j := 1; j < centroids.Rows(); j++ {
		sq := distance.SquaredL2(p, centroids.Row(j))
		if sq < bestSq {
			best, bestSq, secondSq = j, sq, bestSq
		} else if sq < secondSq {
			secondSq = sq
		}
	}
	return best, bestSq, secondSq
}

// coldStart sizes the caches for k centroids and fills them with one exact
// full scan.
func (h *hamerly) coldStart(ctx context.Context, centroids *matrix.Dense, labels []int, changed *atomic.Int64) error {
	n := h.points.Rows()
	k := centroids.Rows()

	h.k = k
	h.prev = matrix.Zero(k, centroids.Cols())
	h.upper = make([]float64, n)
	h.upperSq = make([]float64, n)
	h.stale = make([]bool, n)
	h.lower = make([]float64, n)
	h.s = make([]float64, k)
	h.moved = make([]float64, k)

	return forEachChunk(ctx, n, h.workers, func(ctx context.Context, begin, end int) error {
		for i := begin; i < end; i++ {
			if (i-begin)&(ctxStride-1) == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			best, bestSq, secondSq := scanTwo(h.points.Row(i), centroids)

			h.upper[i] = math.Sqrt(bestSq)
			h.upperSq[i] = bestSq
			h.stale[i] = false
			h.lower[i] = math.Sqrt(secondSq)

			if labels[i] != best {
				labels[i] = best
				changed.Add(1)
			}
		}
		return nil
	})
}

// centerBounds refreshes each centroid's half distance to its nearest peer.
func (h *hamerly) centerBounds(centroids *matrix.Dense) {
	k := h.k
	for a := 0; a < k; a++ {
		s := math.Inf(1)
		for b := 0; b < k; b++ {
			if b == a {
				continue
			}
			if d := distance.L2(centroids.Row(a), centroids.Row(b)); d < s {
				s = d
			}
		}
		h.s[a] = 0.5 * s
	}
}

// warmPass loosens each point's bounds by the centroid drift, then keeps
// the assignment when the upper bound stays strictly inside the pruning
// window and rescans exactly otherwise.
func (h *hamerly) warmPass(ctx context.Context, centroids *matrix.Dense, labels []int, changed *atomic.Int64) error {
	n := h.points.Rows()

	// The lower bound decreases by the largest drift among the other
	// centroids; using the overall two largest avoids a per-point argmax.
	max1, max2 := 0, -1
	for j := 1; j < h.k; j++ {
		if h.moved[j] > h.moved[max1] {
			max1, max2 = j, max1
		} else if max2 < 0 || h.moved[j] > h.moved[max2] {
			max2 = j
		}
	}

	return forEachChunk(ctx, n, h.workers, func(ctx context.Context, begin, end int) error {
		for i := begin; i < end; i++ {
			if (i-begin)&(ctxStride-1) == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			cur := labels[i]

			if m := h.moved[cur]; m > 0 {
				h.upper[i] += m
				h.stale[i] = true
			}
			drop := h.moved[max1]
			if cur == max1 && max2 >= 0 {
				drop = h.moved[max2]
			}
			if drop > 0 {
				if l := h.lower[i] - drop; l > 0 {
					h.lower[i] = l
				} else {
					h.lower[i] = 0
				}
			}

			m := h.s[cur]
			if h.lower[i] > m {
				m = h.lower[i]
			}
			if h.upper[i] < m {
				continue
			}

			if h.stale[i] {
				curSq := distance.SquaredL2(h.points.Row(i), centroids.Row(cur))
				h.upper[i] = math.Sqrt(curSq)
				h.upperSq[i] = curSq
				h.stale[i] = false

				if h.upper[i] < m {
					continue
				}
			}

			best, bestSq, secondSq := scanTwo(h.points.Row(i), centroids)

			h.upper[i] = math.Sqrt(bestSq)
			h.upperSq[i] = bestSq
			h.lower[i] = math.Sqrt(secondSq)

			if labels[i] != best {
				labels[i] = best
				changed.Add(1)
			}
		}
		return nil
	})
}
