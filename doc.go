// Package kmeans provides a high-performance k-means clustering engine for Go.
//
// It runs Lloyd iterations with exact squared-Euclidean assignments and a
// choice of accelerated assignment strategies. Every strategy returns the
// identical clustering for identical inputs; pick one purely for speed.
//
// # Quick Start
//
//	ctx := context.Background()
//	data := matrix.NewDense(rows, dims, values) // one point per row
//
//	result, err := kmeans.Cluster(ctx, data, 5, kmeans.WithRandomSeed(42))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Labels)     // cluster per point
//	fmt.Println(result.Centroids)  // one row per cluster
//	fmt.Println(result.Distortion) // sum of squared point-centroid distances
//
// # Algorithms
//
// Five assignment strategies, all bit-identical in output:
//
//	// 1. NAIVE — every point-centroid distance, the reference baseline
//	kmeans.WithAlgorithm(kmeans.AlgorithmNaive)
//
//	// 2. ELKAN — triangle-inequality pruning, fastest for large k
//	kmeans.WithAlgorithm(kmeans.AlgorithmElkan)
//
//	// 3. HAMERLY — two bounds per point, lean memory footprint
//	kmeans.WithAlgorithm(kmeans.AlgorithmHamerly)
//
//	// 4. DUALTREE — kd-tree subtree assignment, strongest in low dimensions
//	kmeans.WithAlgorithm(kmeans.AlgorithmDualTree)
//
//	// 5. DUALTREE-COVERTREE — same pruning over a cover tree
//	kmeans.WithAlgorithm(kmeans.AlgorithmDualTreeCover)
//
// # Empty Clusters
//
// When an iteration leaves a cluster without members, the policy decides:
//
//	kmeans.WithEmptyClusterPolicy(kmeans.PolicyDefault)    // relocate onto the farthest point
//	kmeans.WithEmptyClusterPolicy(kmeans.PolicyAllowEmpty) // freeze the centroid in place
//	kmeans.WithEmptyClusterPolicy(kmeans.PolicyKillEmpty)  // delete and renumber
//
// Under PolicyKillEmpty the result may hold fewer clusters than requested;
// Result.OriginalIndex maps each survivor back to its requested slot.
//
// # Reproducibility
//
// A run is fully determined by its inputs, options and seed. Result.Seed
// records the seed actually used, so any run can be replayed:
//
//	first, _ := kmeans.Cluster(ctx, data, 5)
//	again, _ := kmeans.Cluster(ctx, data, 5, kmeans.WithRandomSeed(first.Seed))
//
// Worker counts change nothing but wall time.
//
// # Key Features
//
//   - Exact assignments under squared Euclidean distance (ties to lower index)
//   - Elkan, Hamerly and dual-tree acceleration with bit-identical results
//   - Random-partition and refined-start (subsample) initialization
//   - Three empty-cluster policies
//   - Deterministic parallel execution with bounded workers
//   - Structured logging (slog) and pluggable metrics
package kmeans
