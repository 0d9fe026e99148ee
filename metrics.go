package kmeans

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    runCounter         prometheus.Counter
//	    iterationHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordRun(duration time.Duration, iterations int, err error) {
//	    p.runCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordRun is called after each clustering run.
	// duration is the total time taken, iterations the number of completed
	// assignment/update cycles, err is nil if successful.
	RecordRun(duration time.Duration, iterations int, err error)

	// RecordInit is called after the initializer produced (or failed to
	// produce) the starting centroids.
	RecordInit(duration time.Duration, err error)

	// RecordIteration is called after each assignment pass with the number
	// of points that changed cluster.
	RecordIteration(duration time.Duration, changed int)

	// RecordEmptyClusters is called whenever an iteration's empty-cluster
	// policy handled count empty clusters.
	RecordEmptyClusters(count int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRun(time.Duration, int, error) {}
func (NoopMetricsCollector) RecordInit(time.Duration, error)     {}
func (NoopMetricsCollector) RecordIteration(time.Duration, int)  {}
func (NoopMetricsCollector) RecordEmptyClusters(int)             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RunCount             atomic.Int64
	RunErrors            atomic.Int64
	RunTotalNanos        atomic.Int64
	RunIterations        atomic.Int64
	InitCount            atomic.Int64
	InitErrors           atomic.Int64
	IterationCount       atomic.Int64
	IterationTotalNanos  atomic.Int64
	PointsChanged        atomic.Int64
	EmptyClustersHandled atomic.Int64
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(duration time.Duration, iterations int, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	b.RunIterations.Add(int64(iterations))
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// RecordInit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInit(duration time.Duration, err error) {
	b.InitCount.Add(1)
	if err != nil {
		b.InitErrors.Add(1)
	}
}

// RecordIteration implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIteration(duration time.Duration, changed int) {
	b.IterationCount.Add(1)
	b.IterationTotalNanos.Add(duration.Nanoseconds())
	b.PointsChanged.Add(int64(changed))
}

// RecordEmptyClusters implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEmptyClusters(count int) {
	b.EmptyClustersHandled.Add(int64(count))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RunCount:             b.RunCount.Load(),
		RunErrors:            b.RunErrors.Load(),
		RunAvgNanos:          b.getAvgRunNanos(),
		RunIterations:        b.RunIterations.Load(),
		InitCount:            b.InitCount.Load(),
		InitErrors:           b.InitErrors.Load(),
		IterationCount:       b.IterationCount.Load(),
		IterationAvgNanos:    b.getAvgIterationNanos(),
		PointsChanged:        b.PointsChanged.Load(),
		EmptyClustersHandled: b.EmptyClustersHandled.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgRunNanos() int64 {
	count := b.RunCount.Load()
	if count == 0 {
		return 0
	}
	return b.RunTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgIterationNanos() int64 {
	count := b.IterationCount.Load()
	if count == 0 {
		return 0
	}
	return b.IterationTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RunCount             int64
	RunErrors            int64
	RunAvgNanos          int64
	RunIterations        int64
	InitCount            int64
	InitErrors           int64
	IterationCount       int64
	IterationAvgNanos    int64
	PointsChanged        int64
	EmptyClustersHandled int64
}
