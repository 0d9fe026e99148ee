// Package spatial provides the hierarchical point-set indexes used by the
// tree-accelerated assignment strategies.
//
// Two geometries are available behind one interface: a kd-tree with tight
// axis-aligned bounding boxes and a cover tree with metric balls. A tree is
// built once over a point set; its shape depends only on the geometry of the
// points, never on cluster assignments. Every node covers a contiguous range
// of the tree's depth-first index permutation, so "assign this whole subtree"
// is a slice walk.
//
// Node bounds are conservative by construction: for any query q and any
// point p inside a node, MinSqDist(q) ≤ SquaredL2(q, p) ≤ MaxSqDist(q).
// Callers that prune on these bounds must use strict comparisons; bound
// equality proves nothing about which side a tie falls on.
package spatial
