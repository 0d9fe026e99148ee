package kmeans

import (
	"fmt"
	"log/slog"

	"github.com/hupe1980/kmeans/internal/assign"
	"github.com/hupe1980/kmeans/internal/engine"
	"github.com/hupe1980/kmeans/internal/seed"
	"github.com/hupe1980/kmeans/matrix"
)

// DefaultMaxIterations caps a run unless WithMaxIterations overrides it.
const DefaultMaxIterations = 1000

// Algorithm selects the assignment strategy for a run. Every algorithm
// produces the exact same clustering; they differ only in how much work
// they avoid.
type Algorithm uint8

const (
	// AlgorithmNaive computes every point-centroid distance. Reference
	// implementation the pruning variants are validated against.
	AlgorithmNaive Algorithm = iota

	// AlgorithmElkan skips distance computations using per-point upper
	// bounds, per-point-per-centroid lower bounds and the triangle
	// inequality over inter-centroid distances.
	AlgorithmElkan

	// AlgorithmHamerly keeps only two bounds per point. Less bookkeeping
	// than Elkan, more conservative pruning.
	AlgorithmHamerly

	// AlgorithmDualTree assigns whole kd-tree subtrees at once when a
	// node-level bound proves a single centroid wins everywhere inside.
	AlgorithmDualTree

	// AlgorithmDualTreeCover is AlgorithmDualTree over a cover tree
	// instead of a kd-tree.
	AlgorithmDualTreeCover
)

// String implements the fmt.Stringer interface.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmElkan:
		return "elkan"
	case AlgorithmHamerly:
		return "hamerly"
	case AlgorithmDualTree:
		return "dualtree"
	case AlgorithmDualTreeCover:
		return "dualtree-covertree"
	default:
		return "naive"
	}
}

func (a Algorithm) kind() assign.Kind {
	switch a {
	case AlgorithmElkan:
		return assign.KindElkan
	case AlgorithmHamerly:
		return assign.KindHamerly
	case AlgorithmDualTree:
		return assign.KindDualTreeKD
	case AlgorithmDualTreeCover:
		return assign.KindDualTreeCover
	default:
		return assign.KindNaive
	}
}

// Algorithms returns the names of all assignment algorithms.
func Algorithms() []string {
	return []string{"naive", "elkan", "hamerly", "dualtree", "dualtree-covertree"}
}

// ParseAlgorithm maps an algorithm name to its Algorithm value.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "naive":
		return AlgorithmNaive, nil
	case "elkan":
		return AlgorithmElkan, nil
	case "hamerly":
		return AlgorithmHamerly, nil
	case "dualtree":
		return AlgorithmDualTree, nil
	case "dualtree-covertree":
		return AlgorithmDualTreeCover, nil
	default:
		return 0, fmt.Errorf("unknown algorithm %q (valid: %v)", name, Algorithms())
	}
}

// Initializer selects how the starting centroids are produced when no
// explicit initial centroids are supplied.
type Initializer uint8

const (
	// InitializerRandomPartition assigns every point a uniformly random
	// cluster and starts from the per-cluster means.
	InitializerRandomPartition Initializer = iota

	// InitializerRefinedStart clusters repeated small subsamples and
	// starts from the best-scoring candidate centroids.
	InitializerRefinedStart
)

// String implements the fmt.Stringer interface.
func (i Initializer) String() string {
	if i == InitializerRefinedStart {
		return "refined-start"
	}
	return "random-partition"
}

// EmptyClusterPolicy selects how an iteration treats clusters that lost
// all members.
type EmptyClusterPolicy uint8

const (
	// PolicyDefault relocates each empty cluster's centroid onto the
	// point farthest from its own assigned centroid.
	PolicyDefault EmptyClusterPolicy = iota

	// PolicyAllowEmpty leaves empty centroids in place; they may
	// reacquire points in later iterations.
	PolicyAllowEmpty

	// PolicyKillEmpty deletes empty clusters; the final cluster count may
	// be lower than requested.
	PolicyKillEmpty
)

// String implements the fmt.Stringer interface.
func (p EmptyClusterPolicy) String() string {
	switch p {
	case PolicyAllowEmpty:
		return "allow-empty"
	case PolicyKillEmpty:
		return "kill-empty"
	default:
		return "default"
	}
}

func (p EmptyClusterPolicy) policy() engine.Policy {
	switch p {
	case PolicyAllowEmpty:
		return engine.PolicyAllowEmpty
	case PolicyKillEmpty:
		return engine.PolicyKillEmpty
	default:
		return engine.PolicyDefault
	}
}

type options struct {
	algorithm        Algorithm
	initializer      Initializer
	percentage       float64
	samplings        int
	initialCentroids *matrix.Dense
	maxIterations    int
	policy           EmptyClusterPolicy
	labelsOnly       bool
	inPlace          bool
	seed             int64
	seedSet          bool
	workers          int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures clustering behavior.
type Option func(*options)

// WithAlgorithm selects the assignment strategy. All strategies return
// identical clusterings; pick by dataset shape (Elkan/Hamerly for many
// clusters, dual-tree for low dimensions, naive for small inputs).
func WithAlgorithm(algorithm Algorithm) Option {
	return func(o *options) {
		o.algorithm = algorithm
	}
}

// WithInitializer selects how starting centroids are produced. Ignored
// when WithInitialCentroids supplies them directly.
func WithInitializer(initializer Initializer) Option {
	return func(o *options) {
		o.initializer = initializer
	}
}

// WithPercentage sets the refined start sample share. Must lie in (0, 1];
// the default is 0.02.
func WithPercentage(percentage float64) Option {
	return func(o *options) {
		o.percentage = percentage
	}
}

// WithSamplings sets how many candidate samples the refined start scores.
// The default is 100.
func WithSamplings(samplings int) Option {
	return func(o *options) {
		o.samplings = samplings
	}
}

// WithInitialCentroids supplies explicit starting centroids, bypassing
// the initializer. The matrix must have one row per requested cluster and
// the dataset's column count; it is copied before the run mutates it.
func WithInitialCentroids(centroids *matrix.Dense) Option {
	return func(o *options) {
		o.initialCentroids = centroids
	}
}

// WithMaxIterations caps the number of assignment/update cycles.
// Zero means iterate without limit until convergence.
func WithMaxIterations(maxIterations int) Option {
	return func(o *options) {
		o.maxIterations = maxIterations
	}
}

// WithEmptyClusterPolicy selects the empty-cluster handling policy.
func WithEmptyClusterPolicy(policy EmptyClusterPolicy) Option {
	return func(o *options) {
		o.policy = policy
	}
}

// WithLabelsOnly switches the output to a single label column instead of
// the dataset with an appended label column.
func WithLabelsOnly(labelsOnly bool) Option {
	return func(o *options) {
		o.labelsOnly = labelsOnly
	}
}

// WithInPlace appends the label column directly to the caller's dataset
// instead of copying it. The dataset keeps its row count and gains one
// column.
func WithInPlace(inPlace bool) Option {
	return func(o *options) {
		o.inPlace = inPlace
	}
}

// WithRandomSeed fixes the random seed so runs are reproducible. Without
// it every run draws a fresh seed.
func WithRandomSeed(s int64) Option {
	return func(o *options) {
		o.seed = s
		o.seedSet = true
	}
}

// WithWorkers sets how many goroutines share the per-point distance work.
// Values below 1 use GOMAXPROCS. The worker count never changes results.
func WithWorkers(workers int) Option {
	return func(o *options) {
		o.workers = workers
	}
}

// WithMetricsCollector configures a metrics collector for monitoring runs.
//
// Example with BasicMetricsCollector:
//
//	metrics := &kmeans.BasicMetricsCollector{}
//	result, _ := kmeans.Cluster(ctx, data, 5, kmeans.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("Iterations: %d, Avg pass: %dns\n", stats.IterationCount, stats.IterationAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for runs.
//
// Example with JSON logging:
//
//	logger := kmeans.NewJSONLogger(slog.LevelInfo)
//	result, _ := kmeans.Cluster(ctx, data, 5, kmeans.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		algorithm:        AlgorithmNaive,
		initializer:      InitializerRandomPartition,
		percentage:       seed.DefaultPercentage,
		samplings:        seed.DefaultSamplings,
		maxIterations:    DefaultMaxIterations,
		policy:           PolicyDefault,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
