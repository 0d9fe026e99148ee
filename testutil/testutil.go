package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/kmeans/distance"
	"github.com/hupe1980/kmeans/matrix"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns, as a float64, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// NormFloat64 returns a normally distributed float64 with mean 0 and
// standard deviation 1.
func (r *RNG) NormFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.NormFloat64()
}

// Perm returns a pseudo-random permutation of the integers [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) FillUniform(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float64()
	}
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float64, minVal, maxVal float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float64()*span
	}
}

// UniformPoints generates a num×dims matrix with values in range [0, 1).
func (r *RNG) UniformPoints(num, dims int) *matrix.Dense {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dims)
	for i := range data {
		data[i] = r.rand.Float64()
	}

	return matrix.NewDense(num, dims, data)
}

// GaussianPoints generates a num×dims matrix with values from a standard
// normal distribution.
func (r *RNG) GaussianPoints(num, dims int) *matrix.Dense {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dims)
	for i := range data {
		data[i] = r.rand.NormFloat64()
	}

	return matrix.NewDense(num, dims, data)
}

// ClusteredPoints generates points grouped into Gaussian blobs around
// random centers and returns both the points and the centers. Point i
// belongs to blob i%clusters. Useful for testing on data with real cluster
// structure.
func (r *RNG) ClusteredPoints(num, dims, clusters int, spread float64) (points, centers *matrix.Dense) {
	r.mu.Lock()
	defer r.mu.Unlock()

	centers = matrix.Zero(clusters, dims)
	for i := 0; i < clusters; i++ {
		row := centers.Row(i)
		for j := range row {
			row[j] = r.rand.Float64() * 10
		}
	}

	points = matrix.Zero(num, dims)
	for i := 0; i < num; i++ {
		center := centers.Row(i % clusters)
		row := points.Row(i)
		for j := range row {
			row[j] = center[j] + r.rand.NormFloat64()*spread
		}
	}

	return points, centers
}

// BruteForceAssign computes exact nearest-centroid labels for every point.
// Ties go to the lower centroid index.
func BruteForceAssign(points, centroids *matrix.Dense) []int {
	labels := make([]int, points.Rows())
	for i := range labels {
		p := points.Row(i)
		best := 0
		bestSq := distance.SquaredL2(p, centroids.Row(0))
		for j := 1; j < centroids.Rows(); j++ {
			if sq := distance.SquaredL2(p, centroids.Row(j)); sq < bestSq {
				best, bestSq = j, sq
			}
		}
		labels[i] = best
	}
	return labels
}

// Distortion sums the squared distance from every point to its assigned
// centroid, in point order.
func Distortion(points, centroids *matrix.Dense, labels []int) float64 {
	var total float64
	for i, c := range labels {
		total += distance.SquaredL2(points.Row(i), centroids.Row(c))
	}
	return total
}
