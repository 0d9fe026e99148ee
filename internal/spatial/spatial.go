package spatial

// Tree is a hierarchical partition of a point set.
type Tree interface {
	// Root returns the node covering the whole point set.
	Root() Node
	// Indices returns the depth-first point index permutation. Each node's
	// Range() addresses a contiguous slice of it.
	Indices() []int
}

// Node is one cell of the partition.
type Node interface {
	// Children returns the child nodes; an empty slice marks a leaf.
	Children() []Node
	// Range returns the half-open [begin, end) interval of Tree.Indices()
	// holding the points of this subtree.
	Range() (begin, end int)
	// MinSqDist returns a lower bound on the squared distance from p to any
	// point in the subtree.
	MinSqDist(p []float64) float64
	// MaxSqDist returns an upper bound on the squared distance from p to any
	// point in the subtree.
	MaxSqDist(p []float64) float64
}
