// Package math64 provides float64 vector kernels shared by every
// distance-computing code path. All nearest-centroid decisions compare
// values produced by these functions; callers must not reimplement them
// locally, or assignments can drift between strategies by a few ulps.
package math64

// SquaredL2 calculates the squared L2 distance.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float64) float64 {
	var distance float64
	for i := range a {
		d := a[i] - b[i]
		distance += d * d
	}

	return distance
}

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float64) float64 {
	var ret float64
	for i := range a {
		ret += a[i] * b[i]
	}

	return ret
}

// AddTo adds src element-wise into dst.
// Used by centroid accumulation; dst and src must be the same length.
func AddTo(dst, src []float64) {
	for i := range dst {
		dst[i] += src[i]
	}
}

// ScaleInPlace multiplies all elements of a by scalar.
func ScaleInPlace(a []float64, scalar float64) {
	for i := range a {
		a[i] *= scalar
	}
}

// Zero resets all elements of a to zero.
func Zero(a []float64) {
	for i := range a {
		a[i] = 0
	}
}
