package assign

import (
	"context"
	"sync/atomic"

	"github.com/hupe1980/kmeans/matrix"
)

// naive scans every centroid for every point. It is the reference the other
// strategies are validated against.
type naive struct {
	points  *matrix.Dense
	workers int
}

func (s *naive) Name() string { return KindNaive.String() }

func (s *naive) Reset() {}

func (s *naive) Assign(ctx context.Context, centroids *matrix.Dense, labels []int) (int, float64, error) {
	var changed atomic.Int64

	err := forEachChunk(ctx, s.points.Rows(), s.workers, func(ctx context.Context, begin, end int) error {
		for i := begin; i < end; i++ {
			if (i-begin)&(ctxStride-1) == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			best, _ := nearest(s.points.Row(i), centroids)
			if labels[i] != best {
				labels[i] = best
				changed.Add(1)
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return int(changed.Load()), totalDistortion(s.points, centroids, labels), nil
}
