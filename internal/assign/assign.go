package assign

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/kmeans/distance"
	"github.com/hupe1980/kmeans/matrix"
)

// Kind selects an assignment strategy implementation.
type Kind uint8

const (
	KindNaive Kind = iota
	KindElkan
	KindHamerly
	KindDualTreeKD
	KindDualTreeCover
)

func (k Kind) String() string {
	switch k {
	case KindNaive:
		return "naive"
	case KindElkan:
		return "elkan"
	case KindHamerly:
		return "hamerly"
	case KindDualTreeKD:
		return "dualtree"
	case KindDualTreeCover:
		return "dualtree-covertree"
	default:
		return "unknown"
	}
}

// Strategy computes nearest-centroid assignments for one fixed point set.
//
// Assign reads labels as the previous assignment, overwrites it with the new
// one, and reports how many points moved plus the exact total distortion of
// the new assignment. The result is a pure function of (points, centroids):
// internal caches accelerate the computation but never alter it.
type Strategy interface {
	Name() string
	Assign(ctx context.Context, centroids *matrix.Dense, labels []int) (changed int, distortion float64, err error)
	// Reset discards assignment-dependent caches. Callers must invoke it
	// after mutating labels outside of Assign; centroid-count changes are
	// detected without it.
	Reset()
}

// New constructs the strategy for kind over points. workers bounds the
// parallelism of the per-point phases; values <= 0 select GOMAXPROCS.
func New(kind Kind, points *matrix.Dense, workers int) Strategy {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	switch kind {
	case KindElkan:
		return &elkan{points: points, workers: workers}
	case KindHamerly:
		return &hamerly{points: points, workers: workers}
	case KindDualTreeKD:
		return newDualTreeKD(points)
	case KindDualTreeCover:
		return newDualTreeCover(points)
	default:
		return &naive{points: points, workers: workers}
	}
}

// ctxStride is how many points a worker processes between cancellation
// checks. Must be a power of two.
const ctxStride = 4096

// serialCutoff is the point count below which chunked fan-out costs more
// than it saves.
const serialCutoff = 512

// forEachChunk splits [0, n) into contiguous chunks and runs fn on each from
// a bounded worker pool. fn must not let its output depend on chunk
// boundaries; per-point work only.
func forEachChunk(ctx context.Context, n, workers int, fn func(ctx context.Context, begin, end int) error) error {
	if workers <= 1 || n < serialCutoff {
		return fn(ctx, 0, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	size := (n + workers - 1) / workers
	for begin := 0; begin < n; begin += size {
		begin := begin
		end := min(begin+size, n)
		g.Go(func() error {
			return fn(gctx, begin, end)
		})
	}

	return g.Wait()
}

// nearest returns the centroid closest to p and the squared distance to it.
// The lower index wins exact ties.
func nearest(p []float64, centroids *matrix.Dense) (int, float64) {
	best := 0
	bestSq := distance.SquaredL2(p, centroids.Row(0))
	for j := 1; j < centroids.Rows(); j++ {
		if sq := distance.SquaredL2(p, centroids.Row(j)); sq < bestSq {
			best, bestSq = j, sq
		}
	}
	return best, bestSq
}

// totalDistortion sums the exact squared distance from every point to its
// assigned centroid, in point order. All strategies report distortion
// through this one function so identical assignments always produce the
// identical total.
func totalDistortion(points, centroids *matrix.Dense, labels []int) float64 {
	var sum float64
	for i := 0; i < points.Rows(); i++ {
		sum += distance.SquaredL2(points.Row(i), centroids.Row(labels[i]))
	}
	return sum
}
