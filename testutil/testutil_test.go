package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/kmeans/matrix"
)

func TestUniformPoints(t *testing.T) {
	rng := NewRNG(4711)

	p := rng.UniformPoints(8, 32)

	assert.Equal(t, 8, p.Rows())
	assert.Equal(t, 32, p.Cols())
	assert.Less(t, p.At(0, 0), 1.0)
	assert.GreaterOrEqual(t, p.At(1, 0), 0.0)
}

func TestClusteredPoints(t *testing.T) {
	rng := NewRNG(4711)

	points, centers := rng.ClusteredPoints(100, 8, 5, 0.1)

	assert.Equal(t, 100, points.Rows())
	assert.Equal(t, 8, points.Cols())
	assert.Equal(t, 5, centers.Rows())
	assert.Equal(t, 8, centers.Cols())
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	p1 := rng.UniformPoints(1, 10)

	rng.Reset()
	p2 := rng.UniformPoints(1, 10)

	assert.Equal(t, p1, p2)
}

func TestBruteForceAssign(t *testing.T) {
	points := matrix.NewDense(4, 1, []float64{0.0, 0.9, 2.1, 3.0})
	centroids := matrix.NewDense(2, 1, []float64{0.0, 3.0})

	labels := BruteForceAssign(points, centroids)

	assert.Equal(t, []int{0, 0, 1, 1}, labels)
}

func TestBruteForceAssignTieGoesToLowerIndex(t *testing.T) {
	points := matrix.NewDense(1, 1, []float64{1.0})
	centroids := matrix.NewDense(3, 1, []float64{0.0, 2.0, 1.0})

	labels := BruteForceAssign(points, centroids)

	// Centroid 2 is an exact hit, but 0 and 2 are not tied; only 0 and 1
	// tie at distance 1. The exact hit must win.
	assert.Equal(t, []int{2}, labels)
}

func TestDistortion(t *testing.T) {
	points := matrix.NewDense(3, 1, []float64{0.0, 1.0, 5.0})
	centroids := matrix.NewDense(2, 1, []float64{0.0, 4.0})
	labels := []int{0, 0, 1}

	assert.InDelta(t, 0.0+1.0+1.0, Distortion(points, centroids, labels), 1e-12)
}
