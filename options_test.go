package kmeans

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kmeans/internal/assign"
	"github.com/hupe1980/kmeans/internal/engine"
	"github.com/hupe1980/kmeans/matrix"
)

func TestApplyOptionsDefaults(t *testing.T) {
	opts := applyOptions(nil)

	assert.Equal(t, AlgorithmNaive, opts.algorithm)
	assert.Equal(t, InitializerRandomPartition, opts.initializer)
	assert.Equal(t, 0.02, opts.percentage)
	assert.Equal(t, 100, opts.samplings)
	assert.Nil(t, opts.initialCentroids)
	assert.Equal(t, DefaultMaxIterations, opts.maxIterations)
	assert.Equal(t, PolicyDefault, opts.policy)
	assert.False(t, opts.labelsOnly)
	assert.False(t, opts.inPlace)
	assert.False(t, opts.seedSet)
	assert.Equal(t, 0, opts.workers)
	assert.NotNil(t, opts.logger)
	assert.NotNil(t, opts.metricsCollector)
}

func TestApplyOptions(t *testing.T) {
	seeds := matrix.Zero(2, 2)
	logger := NoopLogger()
	metrics := &BasicMetricsCollector{}

	opts := applyOptions([]Option{
		nil, // nil options are skipped
		WithAlgorithm(AlgorithmHamerly),
		WithInitializer(InitializerRefinedStart),
		WithPercentage(0.1),
		WithSamplings(25),
		WithInitialCentroids(seeds),
		WithMaxIterations(10),
		WithEmptyClusterPolicy(PolicyKillEmpty),
		WithLabelsOnly(true),
		WithInPlace(true),
		WithRandomSeed(77),
		WithWorkers(3),
		WithLogger(logger),
		WithMetricsCollector(metrics),
	})

	assert.Equal(t, AlgorithmHamerly, opts.algorithm)
	assert.Equal(t, InitializerRefinedStart, opts.initializer)
	assert.Equal(t, 0.1, opts.percentage)
	assert.Equal(t, 25, opts.samplings)
	assert.Same(t, seeds, opts.initialCentroids)
	assert.Equal(t, 10, opts.maxIterations)
	assert.Equal(t, PolicyKillEmpty, opts.policy)
	assert.True(t, opts.labelsOnly)
	assert.True(t, opts.inPlace)
	assert.True(t, opts.seedSet)
	assert.Equal(t, int64(77), opts.seed)
	assert.Equal(t, 3, opts.workers)
	assert.Same(t, logger, opts.logger)
	assert.Same(t, metrics, opts.metricsCollector)
}

func TestWithLogLevel(t *testing.T) {
	opts := applyOptions([]Option{WithLogLevel(slog.LevelDebug)})

	require.NotNil(t, opts.logger)
	assert.True(t, opts.logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestAlgorithmString(t *testing.T) {
	assert.Equal(t, "naive", AlgorithmNaive.String())
	assert.Equal(t, "elkan", AlgorithmElkan.String())
	assert.Equal(t, "hamerly", AlgorithmHamerly.String())
	assert.Equal(t, "dualtree", AlgorithmDualTree.String())
	assert.Equal(t, "dualtree-covertree", AlgorithmDualTreeCover.String())
}

func TestAlgorithmKind(t *testing.T) {
	assert.Equal(t, assign.KindNaive, AlgorithmNaive.kind())
	assert.Equal(t, assign.KindElkan, AlgorithmElkan.kind())
	assert.Equal(t, assign.KindHamerly, AlgorithmHamerly.kind())
	assert.Equal(t, assign.KindDualTreeKD, AlgorithmDualTree.kind())
	assert.Equal(t, assign.KindDualTreeCover, AlgorithmDualTreeCover.kind())
}

func TestParseAlgorithm(t *testing.T) {
	for _, name := range Algorithms() {
		algorithm, err := ParseAlgorithm(name)
		require.NoError(t, err)
		assert.Equal(t, name, algorithm.String())
	}

	_, err := ParseAlgorithm("kmeans++")
	require.Error(t, err)
}

func TestInitializerString(t *testing.T) {
	assert.Equal(t, "random-partition", InitializerRandomPartition.String())
	assert.Equal(t, "refined-start", InitializerRefinedStart.String())
}

func TestEmptyClusterPolicy(t *testing.T) {
	assert.Equal(t, "default", PolicyDefault.String())
	assert.Equal(t, "allow-empty", PolicyAllowEmpty.String())
	assert.Equal(t, "kill-empty", PolicyKillEmpty.String())

	assert.Equal(t, engine.PolicyDefault, PolicyDefault.policy())
	assert.Equal(t, engine.PolicyAllowEmpty, PolicyAllowEmpty.policy())
	assert.Equal(t, engine.PolicyKillEmpty, PolicyKillEmpty.policy())
}

func TestTerminationString(t *testing.T) {
	assert.Equal(t, "converged", TerminationConverged.String())
	assert.Equal(t, "iteration-limit", TerminationIterationLimit.String())
}
