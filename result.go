package kmeans

import "github.com/hupe1980/kmeans/matrix"

// Termination reports why a clustering run stopped.
type Termination uint8

const (
	// TerminationConverged means an assignment pass moved no point.
	TerminationConverged Termination = iota

	// TerminationIterationLimit means the iteration cap was reached first.
	// The result still holds the last completed iteration's state.
	TerminationIterationLimit
)

// String implements the fmt.Stringer interface.
func (t Termination) String() string {
	if t == TerminationIterationLimit {
		return "iteration-limit"
	}
	return "converged"
}

// Result holds a finished clustering run.
type Result struct {
	// Labels[i] is the cluster of data row i.
	Labels []int

	// Output is the dataset with the label column appended, or just the
	// label column when WithLabelsOnly is set. With WithInPlace it aliases
	// the caller's dataset.
	Output *matrix.Dense

	// Centroids holds one row per surviving cluster.
	Centroids *matrix.Dense

	// Clusters is the surviving cluster count. Lower than requested only
	// under PolicyKillEmpty.
	Clusters int

	// OriginalIndex maps each surviving cluster back to its requested
	// cluster index. The identity mapping unless PolicyKillEmpty deleted
	// clusters.
	OriginalIndex []int

	// Iterations counts the completed centroid update cycles.
	Iterations int

	// Distortion is the summed squared distance from every point to its
	// assigned centroid in the final assignment pass.
	Distortion float64

	// Termination reports why the run stopped.
	Termination Termination

	// Seed is the random seed the run used. Pass it to WithRandomSeed to
	// reproduce the run exactly.
	Seed int64
}
