package seed

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kmeans/matrix"
	"github.com/hupe1980/kmeans/testutil"
)

func TestRandomPartition(t *testing.T) {
	points := testutil.NewRNG(42).UniformPoints(50, 3)

	centroids, err := RandomPartition(rand.New(rand.NewSource(1)), points, 5)
	require.NoError(t, err)

	assert.Equal(t, 5, centroids.Rows())
	assert.Equal(t, 3, centroids.Cols())

	// Means of points in [0,1) stay in [0,1).
	for i := 0; i < centroids.Rows(); i++ {
		for _, v := range centroids.Row(i) {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Less(t, v, 1.0)
		}
	}
}

func TestRandomPartitionDeterministic(t *testing.T) {
	points := testutil.NewRNG(42).UniformPoints(80, 4)

	a, err := RandomPartition(rand.New(rand.NewSource(7)), points, 6)
	require.NoError(t, err)
	b, err := RandomPartition(rand.New(rand.NewSource(7)), points, 6)
	require.NoError(t, err)

	assert.True(t, matrix.Equal(a, b))
}

func TestRandomPartitionTooFewPoints(t *testing.T) {
	points := testutil.NewRNG(42).UniformPoints(3, 2)

	_, err := RandomPartition(rand.New(rand.NewSource(1)), points, 4)
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestRefinedStart(t *testing.T) {
	rng := testutil.NewRNG(4711)
	points, _ := rng.ClusteredPoints(200, 4, 5, 0.2)

	centroids, err := RefinedStart(context.Background(), rand.New(rand.NewSource(1)), points, 5, 0.2, 5, 1)
	require.NoError(t, err)

	assert.Equal(t, 5, centroids.Rows())
	assert.Equal(t, 4, centroids.Cols())
}

func TestRefinedStartDeterministic(t *testing.T) {
	points := testutil.NewRNG(42).UniformPoints(150, 3)

	a, err := RefinedStart(context.Background(), rand.New(rand.NewSource(9)), points, 4, 0.1, 3, 1)
	require.NoError(t, err)
	b, err := RefinedStart(context.Background(), rand.New(rand.NewSource(9)), points, 4, 0.1, 3, 1)
	require.NoError(t, err)

	assert.True(t, matrix.Equal(a, b))
}

func TestRefinedStartSampleTooSmall(t *testing.T) {
	points := testutil.NewRNG(42).UniformPoints(200, 2)

	_, err := RefinedStart(context.Background(), rand.New(rand.NewSource(1)), points, 5, 0.001, 3, 1)
	assert.ErrorIs(t, err, ErrSampleTooSmall)
}

func TestRefinedStartTooFewPoints(t *testing.T) {
	points := testutil.NewRNG(42).UniformPoints(4, 2)

	_, err := RefinedStart(context.Background(), rand.New(rand.NewSource(1)), points, 10, 1.0, 1, 1)
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestRefinedStartCancelled(t *testing.T) {
	points := testutil.NewRNG(42).UniformPoints(100, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RefinedStart(ctx, rand.New(rand.NewSource(1)), points, 3, 0.5, 10, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
