// Package assign implements the nearest-centroid assignment strategies.
//
// Five implementations share one contract: brute force, two
// triangle-inequality pruning variants (Elkan and Hamerly bounds), and two
// tree-accelerated variants over the spatial package's kd-tree and cover
// tree. Pruning is an optimization, never a semantic: every strategy must
// assign each point to exactly the centroid brute force would pick,
// including on exact distance ties, where the lower centroid index wins.
//
// Two rules keep that equivalence airtight:
//
//   - Exact distances come only from the shared kernels (math64 via the
//     distance package), and final comparisons happen on squared values.
//   - A bound may skip work only when it strictly exceeds the value it is
//     tested against. Bound equality always falls through to an exact
//     computation, so ties are resolved by the comparison rule, never by a
//     bound.
//
// Strategies may carry caches between calls (distance bounds, a spatial
// index). Caches are keyed to the centroid set of the previous call;
// implementations detect centroid-count changes and rebuild, and Reset
// discards assignment-dependent state after the caller mutates labels
// behind the strategy's back.
package assign
