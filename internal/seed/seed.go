// Package seed produces initial centroid sets for the clustering engine.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/hupe1980/kmeans/internal/assign"
	"github.com/hupe1980/kmeans/internal/math64"
	"github.com/hupe1980/kmeans/matrix"
)

// Defaults for the refined start parameters.
const (
	DefaultPercentage = 0.02
	DefaultSamplings  = 100
)

var (
	// ErrTooFewPoints is returned when more centroids are requested than
	// points exist.
	ErrTooFewPoints = errors.New("cluster count exceeds point count")

	// ErrSampleTooSmall is returned when the refined start sample cannot
	// hold one point per centroid.
	ErrSampleTooSmall = errors.New("sample smaller than cluster count")
)

// RandomPartition assigns every point an independent uniformly random
// cluster and returns the per-cluster means. A cluster the draw left empty
// falls back to the coordinates of a random point, so every centroid
// starts on data.
func RandomPartition(rng *rand.Rand, points *matrix.Dense, k int) (*matrix.Dense, error) {
	n, d := points.Dims()
	if k > n {
		return nil, ErrTooFewPoints
	}

	centroids := matrix.Zero(k, d)
	counts := make([]int, k)
	for i := 0; i < n; i++ {
		c := rng.Intn(k)
		counts[c]++
		math64.AddTo(centroids.Row(c), points.Row(i))
	}

	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			centroids.SetRow(c, points.Row(rng.Intn(n)))
			continue
		}
		math64.ScaleInPlace(centroids.Row(c), 1/float64(counts[c]))
	}

	return centroids, nil
}

// RefinedStart draws samplings random subsamples of round(percentage×n)
// points, refines a random partition of each with a single assignment
// pass, scores every candidate centroid set by its distortion over the
// full dataset, and returns the best. Ties keep the earlier trial.
//
// The caller is responsible for validating the percentage range.
func RefinedStart(ctx context.Context, rng *rand.Rand, points *matrix.Dense, k int, percentage float64, samplings, workers int) (*matrix.Dense, error) {
	n, _ := points.Dims()
	if k > n {
		return nil, ErrTooFewPoints
	}

	sampleSize := int(math.Round(percentage * float64(n)))
	if sampleSize < k {
		return nil, fmt.Errorf("%w: %d sampled points for %d clusters", ErrSampleTooSmall, sampleSize, k)
	}

	scorer := assign.New(assign.KindNaive, points, workers)
	fullLabels := make([]int, n)

	var best *matrix.Dense
	bestScore := math.Inf(1)

	for trial := 0; trial < samplings; trial++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sample := points.SelectRows(rng.Perm(n)[:sampleSize])

		cand, err := RandomPartition(rng, sample, k)
		if err != nil {
			return nil, err
		}

		labels := make([]int, sampleSize)
		refiner := assign.New(assign.KindNaive, sample, workers)
		if _, _, err := refiner.Assign(ctx, cand, labels); err != nil {
			return nil, err
		}
		cand = means(sample, labels, cand)

		_, score, err := scorer.Assign(ctx, cand, fullLabels)
		if err != nil {
			return nil, err
		}

		if score < bestScore {
			best, bestScore = cand, score
		}
	}

	return best, nil
}

// means recomputes each centroid as the mean of its labeled points. A
// cluster with no points keeps its previous row.
func means(points *matrix.Dense, labels []int, prev *matrix.Dense) *matrix.Dense {
	k, d := prev.Dims()

	next := matrix.Zero(k, d)
	counts := make([]int, k)
	for i, c := range labels {
		counts[c]++
		math64.AddTo(next.Row(c), points.Row(i))
	}

	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			next.SetRow(c, prev.Row(c))
			continue
		}
		math64.ScaleInPlace(next.Row(c), 1/float64(counts[c]))
	}

	return next
}
