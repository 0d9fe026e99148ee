// Package testutil provides testing utilities for the clustering packages.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random point sets, computing exact
// nearest-centroid labels, and summing cluster distortion.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	points := rng.UniformPoints(1000, 16)               // uniform [0, 1)
//	points, centers := rng.ClusteredPoints(1000, 16, 5, 0.1)
//
// # Exact Assignment (Ground Truth)
//
//	labels := testutil.BruteForceAssign(points, centroids)
//	total := testutil.Distortion(points, centroids, labels)
package testutil
