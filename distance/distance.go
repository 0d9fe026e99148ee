// Package distance provides the public API for point distance calculations.
// All distance functions route through the shared kernels in internal/math64
// so that every caller sees bit-identical values for identical inputs.
package distance

import (
	"math"

	"github.com/hupe1980/kmeans/internal/math64"
)

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float64) float64 {
	return math64.SquaredL2(a, b)
}

// L2 calculates the L2 (Euclidean) distance between two vectors.
func L2(a, b []float64) float64 {
	return math.Sqrt(math64.SquaredL2(a, b))
}

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float64) float64 {
	return math64.Dot(a, b)
}

// Func is a function type for distance calculation.
type Func func(a, b []float64) float64
