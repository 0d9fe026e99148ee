package assign

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/hupe1980/kmeans/distance"
	"github.com/hupe1980/kmeans/matrix"
)

// elkan prunes centroid comparisons with the full triangle-inequality bound
// set: one upper bound per point, one lower bound per point-centroid pair,
// and half the pairwise inter-centroid distances.
//
// Bound arithmetic happens on L2 roots; winner selection happens on exact
// squared kernel values. upperSq caches the exact squared distance to the
// assigned centroid whenever stale is false, so ties are decided on kernel
// output instead of a root-trip through Sqrt.
type elkan struct {
	points  *matrix.Dense
	workers int

	k       int           // centroid count the caches were built for; 0 = cold
	prev    *matrix.Dense // centroid snapshot backing the caches
	upper   []float64     // per point: L2 upper bound to the assigned centroid
	upperSq []float64     // per point: exact squared distance when !stale
	stale   []bool        // per point: upper has been drift-inflated
	lower   []float64     // n×k flat: L2 lower bound to every centroid
	half    []float64     // k×k flat: half inter-centroid L2 distances
	s       []float64     // per centroid: half distance to its nearest peer
	moved   []float64     // per centroid: drift since the previous call
}

func (e *elkan) Name() string { return KindElkan.String() }

func (e *elkan) Reset() { e.k = 0 }

func (e *elkan) Assign(ctx context.Context, centroids *matrix.Dense, labels []int) (int, float64, error) {
	k := centroids.Rows()

	var changed atomic.Int64
	var err error
	if e.k != k {
		err = e.coldStart(ctx, centroids, labels, &changed)
	} else {
		for j := 0; j < k; j++ {
			e.moved[j] = distance.L2(e.prev.Row(j), centroids.Row(j))
		}
		e.centerBounds(centroids)
		err = e.warmPass(ctx, centroids, labels, &changed)
	}
	if err != nil {
		return 0, 0, err
	}

	copy(e.prev.Data(), centroids.Data())

	return int(changed.Load()), totalDistortion(e.points, centroids, labels), nil
}

// coldStart sizes the caches for k centroids and fills them with one exact
// full scan.
func (e *elkan) coldStart(ctx context.Context, centroids *matrix.Dense, labels []int, changed *atomic.Int64) error {
	n := e.points.Rows()
	k := centroids.Rows()

	e.k = k
	e.prev = matrix.Zero(k, centroids.Cols())
	e.upper = make([]float64, n)
	e.upperSq = make([]float64, n)
	e.stale = make([]bool, n)
	e.lower = make([]float64, n*k)
	e.half = make([]float64, k*k)
	e.s = make([]float64, k)
	e.moved = make([]float64, k)

	return forEachChunk(ctx, n, e.workers, func(ctx context.Context, begin, end int) error {
		for i := begin; i < end; i++ {
			if (i-begin)&(ctxStride-1) == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			p := e.points.Row(i)
			lrow := e.lower[i*k : (i+1)*k]

			best := 0
			bestSq := distance.SquaredL2(p, centroids.Row(0))
			lrow[0] = math.Sqrt(bestSq)
			for j := 1; j < k; j++ {
				sq := distance.SquaredL2(p, centroids.Row(j))
				lrow[j] = math.Sqrt(sq)
				if sq < bestSq {
					best, bestSq = j, sq
				}
			}

			e.upper[i] = lrow[best]
			e.upperSq[i] = bestSq
			e.stale[i] = false

			if labels[i] != best {
				labels[i] = best
				changed.Add(1)
			}
		}
		return nil
	})
}

// centerBounds refreshes the half inter-centroid distance matrix and each
// centroid's half distance to its nearest peer.
func (e *elkan) centerBounds(centroids *matrix.Dense) {
	k := e.k
	for a := 0; a < k; a++ {
		for b := a + 1; b < k; b++ {
			h := 0.5 * distance.L2(centroids.Row(a), centroids.Row(b))
			e.half[a*k+b] = h
			e.half[b*k+a] = h
		}
	}

	for a := 0; a < k; a++ {
		s := math.Inf(1)
		for b := 0; b < k; b++ {
			if b != a && e.half[a*k+b] < s {
				s = e.half[a*k+b]
			}
		}
		e.s[a] = s
	}
}

// warmPass loosens each point's bounds by the centroid drift, then
// reassigns under the pruning rules. Every skip requires a bound to
// strictly exceed the upper bound; equality falls through to the exact
// squared comparison with lower-index tie-breaking.
func (e *elkan) warmPass(ctx context.Context, centroids *matrix.Dense, labels []int, changed *atomic.Int64) error {
	n := e.points.Rows()
	k := e.k

	return forEachChunk(ctx, n, e.workers, func(ctx context.Context, begin, end int) error {
		for i := begin; i < end; i++ {
			if (i-begin)&(ctxStride-1) == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			cur := labels[i]
			lrow := e.lower[i*k : (i+1)*k]

			if m := e.moved[cur]; m > 0 {
				e.upper[i] += m
				e.stale[i] = true
			}
			for j, m := range e.moved {
				if m > 0 {
					if l := lrow[j] - m; l > 0 {
						lrow[j] = l
					} else {
						lrow[j] = 0
					}
				}
			}

			u := e.upper[i]

			// Nearest peer at least 2*s away: no other centroid can win.
			if u < e.s[cur] {
				continue
			}

			p := e.points.Row(i)
			curSq := e.upperSq[i]

			for j := 0; j < k; j++ {
				if j == cur {
					continue
				}
				if lrow[j] > u || e.half[cur*k+j] > u {
					continue
				}

				if e.stale[i] {
					curSq = distance.SquaredL2(p, centroids.Row(cur))
					u = math.Sqrt(curSq)
					e.upper[i] = u
					e.upperSq[i] = curSq
					lrow[cur] = u
					e.stale[i] = false

					if lrow[j] > u || e.half[cur*k+j] > u {
						continue
					}
				}

				sq := distance.SquaredL2(p, centroids.Row(j))
				l := math.Sqrt(sq)
				lrow[j] = l

				if sq < curSq || (sq == curSq && j < cur) {
					cur = j
					curSq = sq
					u = l
					e.upper[i] = u
					e.upperSq[i] = sq
				}
			}

			if labels[i] != cur {
				labels[i] = cur
				changed.Add(1)
			}
		}
		return nil
	})
}
