// Package distance provides Euclidean distance calculations over float64
// vectors.
//
// Every function delegates to the shared kernels in internal/math64. The
// clustering strategies rely on this: two code paths that compute the same
// point-to-centroid distance must obtain the exact same float64, otherwise
// their assignments can disagree on near-ties.
//
// # Usage
//
//	dist := distance.SquaredL2(a, b)
//	norm := distance.L2(a, b)
package distance
