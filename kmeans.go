package kmeans

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/hupe1980/kmeans/internal/assign"
	"github.com/hupe1980/kmeans/internal/engine"
	"github.com/hupe1980/kmeans/internal/seed"
	"github.com/hupe1980/kmeans/matrix"
)

// Cluster partitions the rows of data into the requested number of clusters
// by Lloyd iterations: assign every point to its nearest centroid, recompute
// each centroid as the mean of its points, repeat until no point moves or
// the iteration cap is hit. Squared Euclidean distance throughout; exact
// ties go to the lower cluster index.
//
// data is left untouched unless WithInPlace is set. Every Algorithm choice
// returns the identical result; only the runtime differs.
//
// Example:
//
//	result, err := kmeans.Cluster(ctx, data, 5,
//		kmeans.WithAlgorithm(kmeans.AlgorithmElkan),
//		kmeans.WithRandomSeed(42),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Labels, result.Distortion)
func Cluster(ctx context.Context, data *matrix.Dense, clusters int, optFns ...Option) (*Result, error) {
	start := time.Now()
	opts := applyOptions(optFns)

	logger := opts.logger.WithAlgorithm(opts.algorithm)

	if data == nil || data.Rows() == 0 {
		opts.metricsCollector.RecordRun(time.Since(start), 0, ErrMissingInput)
		logger.LogCluster(ctx, clusters, 0, "", ErrMissingInput)
		return nil, ErrMissingInput
	}

	n, _ := data.Dims()
	logger = logger.WithPoints(n)

	if clusters <= 0 || clusters > n {
		err := &ErrInvalidClusterCount{Clusters: clusters, Points: n}
		opts.metricsCollector.RecordRun(time.Since(start), 0, err)
		logger.LogCluster(ctx, clusters, 0, "", err)
		return nil, err
	}

	seedVal := opts.seed
	if !opts.seedSet {
		seedVal = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seedVal))
	logger = logger.WithSeed(seedVal)

	centroids, err := initCentroids(ctx, rng, data, clusters, opts, logger)
	if err != nil {
		opts.metricsCollector.RecordRun(time.Since(start), 0, err)
		logger.LogCluster(ctx, clusters, 0, "", err)
		return nil, err
	}

	eng := engine.New(engine.Config{
		Points:        data,
		Centroids:     centroids,
		Strategy:      assign.New(opts.algorithm.kind(), data, opts.workers),
		MaxIterations: opts.maxIterations,
		Policy:        opts.policy.policy(),
		Logger:        logger.Logger,
		Metrics:       opts.metricsCollector,
	})

	out, err := eng.Run(ctx)
	if err != nil {
		err = translateError(err)
		opts.metricsCollector.RecordRun(time.Since(start), 0, err)
		logger.LogCluster(ctx, clusters, 0, "", err)
		return nil, err
	}

	termination := TerminationConverged
	if out.Termination == engine.TerminationIterationLimit {
		termination = TerminationIterationLimit
	}

	col := make([]float64, n)
	for i, label := range out.Labels {
		col[i] = float64(label)
	}

	if opts.inPlace {
		data.AppendCol(col)
	}

	var output *matrix.Dense
	switch {
	case opts.labelsOnly:
		output = matrix.NewDense(n, 1, col)
	case opts.inPlace:
		output = data
	default:
		output = data.Clone()
		output.AppendCol(col)
	}

	result := &Result{
		Labels:        out.Labels,
		Output:        output,
		Centroids:     out.Centroids,
		Clusters:      out.Centroids.Rows(),
		OriginalIndex: out.OriginalIndex,
		Iterations:    out.Iterations,
		Distortion:    out.Distortion,
		Termination:   termination,
		Seed:          seedVal,
	}

	opts.metricsCollector.RecordRun(time.Since(start), out.Iterations, nil)
	logger.LogCluster(ctx, result.Clusters, out.Iterations, termination.String(), nil)

	return result, nil
}

// initCentroids produces the starting centroids according to the options.
// Errors come back already translated into the exported error types.
func initCentroids(ctx context.Context, rng *rand.Rand, data *matrix.Dense, clusters int, opts options, logger *Logger) (*matrix.Dense, error) {
	start := time.Now()

	if opts.initialCentroids != nil {
		rows, cols := opts.initialCentroids.Dims()
		if rows != clusters || cols != data.Cols() {
			err := &ErrDegenerateInit{
				Reason: fmt.Sprintf("initial centroids are %dx%d, want %dx%d", rows, cols, clusters, data.Cols()),
			}
			opts.metricsCollector.RecordInit(time.Since(start), err)
			logger.LogInit(ctx, "explicit", clusters, err)
			return nil, err
		}

		opts.metricsCollector.RecordInit(time.Since(start), nil)
		logger.LogInit(ctx, "explicit", clusters, nil)

		return opts.initialCentroids.Clone(), nil
	}

	if opts.initializer == InitializerRefinedStart {
		if opts.percentage <= 0 || opts.percentage > 1 {
			err := &ErrInvalidPercentage{Percentage: opts.percentage}
			opts.metricsCollector.RecordInit(time.Since(start), err)
			logger.LogInit(ctx, opts.initializer.String(), clusters, err)
			return nil, err
		}
		if opts.samplings < 1 {
			err := &ErrDegenerateInit{
				Reason: fmt.Sprintf("refined start needs at least one sampling, got %d", opts.samplings),
			}
			opts.metricsCollector.RecordInit(time.Since(start), err)
			logger.LogInit(ctx, opts.initializer.String(), clusters, err)
			return nil, err
		}

		centroids, err := seed.RefinedStart(ctx, rng, data, clusters, opts.percentage, opts.samplings, opts.workers)
		err = translateError(err)

		opts.metricsCollector.RecordInit(time.Since(start), err)
		logger.LogInit(ctx, opts.initializer.String(), clusters, err)

		if err != nil {
			return nil, err
		}

		return centroids, nil
	}

	centroids, err := seed.RandomPartition(rng, data, clusters)
	err = translateError(err)

	opts.metricsCollector.RecordInit(time.Since(start), err)
	logger.LogInit(ctx, opts.initializer.String(), clusters, err)

	if err != nil {
		return nil, err
	}

	return centroids, nil
}
