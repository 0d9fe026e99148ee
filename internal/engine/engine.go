// Package engine drives the clustering iteration loop: assignment,
// centroid recomputation, empty-cluster handling and termination.
package engine

import (
	"context"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/time/rate"

	"github.com/hupe1980/kmeans/internal/assign"
	"github.com/hupe1980/kmeans/internal/math64"
	"github.com/hupe1980/kmeans/matrix"
)

// Policy selects how an iteration treats clusters that lost all members.
type Policy uint8

const (
	// PolicyDefault relocates each empty cluster's centroid onto the point
	// farthest from its own assigned centroid.
	PolicyDefault Policy = iota

	// PolicyAllowEmpty freezes empty centroids in place; they may
	// reacquire points in later iterations.
	PolicyAllowEmpty

	// PolicyKillEmpty deletes empty clusters and renumbers the survivors
	// contiguously.
	PolicyKillEmpty
)

// String implements the fmt.Stringer interface.
func (p Policy) String() string {
	switch p {
	case PolicyAllowEmpty:
		return "allow-empty"
	case PolicyKillEmpty:
		return "kill-empty"
	default:
		return "default"
	}
}

// Termination reports which terminal state ended a run.
type Termination uint8

const (
	// TerminationConverged means no point changed assignment in the final
	// pass.
	TerminationConverged Termination = iota

	// TerminationIterationLimit means the configured iteration cap was
	// reached first. The state from that iteration is still valid output.
	TerminationIterationLimit
)

// String implements the fmt.Stringer interface.
func (t Termination) String() string {
	if t == TerminationIterationLimit {
		return "iteration-limit"
	}
	return "converged"
}

// Metrics receives engine counters.
type Metrics interface {
	RecordIteration(duration time.Duration, changed int)
	RecordEmptyClusters(count int)
}

type noopMetrics struct{}

func (noopMetrics) RecordIteration(_ time.Duration, _ int) {}
func (noopMetrics) RecordEmptyClusters(_ int)              {}

// Config holds everything a run needs. Centroids is the initial seed; the
// engine takes ownership and mutates it.
type Config struct {
	Points        *matrix.Dense
	Centroids     *matrix.Dense
	Strategy      assign.Strategy
	MaxIterations int // 0 iterates without limit until convergence
	Policy        Policy
	Logger        *slog.Logger
	Metrics       Metrics
}

// Engine runs the iteration loop over one point set. Not safe for
// concurrent use; independent runs need independent engines.
type Engine struct {
	points    *matrix.Dense
	centroids *matrix.Dense
	strategy  assign.Strategy
	maxIter   int
	policy    Policy
	logger    *slog.Logger
	metrics   Metrics

	labels     []int
	prevLabels []int
	members    []*roaring.Bitmap
	origIndex  []int

	debugLog rate.Sometimes
}

// New creates a new engine from the config.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &Engine{
		points:    cfg.Points,
		centroids: cfg.Centroids,
		strategy:  cfg.Strategy,
		maxIter:   cfg.MaxIterations,
		policy:    cfg.Policy,
		logger:    logger,
		metrics:   metrics,
		debugLog:  rate.Sometimes{First: 5, Interval: time.Second},
	}
}

// Outcome is the terminal state of a run.
type Outcome struct {
	Labels        []int
	Centroids     *matrix.Dense
	OriginalIndex []int // original seed slot of each surviving cluster
	Iterations    int
	Distortion    float64
	Termination   Termination
}

// Run iterates until convergence or the iteration cap. Each iteration is a
// full barrier: assignment completes over all points before centroids
// move, and the empty-cluster policy runs after every recomputation.
func (e *Engine) Run(ctx context.Context) (*Outcome, error) {
	n := e.points.Rows()
	k := e.centroids.Rows()

	// Labels start at -1 so the first pass counts every point as changed
	// and at least one update cycle runs before convergence can trigger.
	e.labels = make([]int, n)
	e.prevLabels = make([]int, n)
	for i := range e.labels {
		e.labels[i] = -1
		e.prevLabels[i] = -1
	}
	e.members = make([]*roaring.Bitmap, k)
	e.origIndex = make([]int, k)
	for j := 0; j < k; j++ {
		e.members[j] = roaring.New()
		e.origIndex[j] = j
	}

	e.logger.DebugContext(ctx, "clustering started",
		slog.Int("points", n),
		slog.Int("clusters", k),
		slog.String("strategy", e.strategy.Name()),
		slog.String("policy", e.policy.String()),
	)

	var (
		iterations  int
		distortion  float64
		termination Termination
	)

	for {
		start := time.Now()

		changed, dist, err := e.strategy.Assign(ctx, e.centroids, e.labels)
		if err != nil {
			return nil, err
		}
		distortion = dist
		e.syncMembers()

		e.metrics.RecordIteration(time.Since(start), changed)
		e.debugLog.Do(func() {
			e.logger.DebugContext(ctx, "iteration finished",
				slog.Int("iteration", iterations),
				slog.Int("changed", changed),
				slog.Float64("distortion", distortion),
				slog.Int("clusters", e.centroids.Rows()),
			)
		})

		if changed == 0 {
			termination = TerminationConverged
			break
		}

		e.updateCentroids()

		var handled int
		switch e.policy {
		case PolicyAllowEmpty:
			handled = e.countEmpty()
		case PolicyKillEmpty:
			handled = e.killEmpty()
		default:
			handled = e.reviveEmpty()
		}
		if handled > 0 {
			e.metrics.RecordEmptyClusters(handled)
			if e.policy != PolicyAllowEmpty {
				// Labels or cluster numbering changed behind the
				// strategy's back; cached bounds are no longer valid.
				e.strategy.Reset()
			}
		}

		iterations++
		if e.maxIter > 0 && iterations >= e.maxIter {
			termination = TerminationIterationLimit
			break
		}
	}

	e.logger.DebugContext(ctx, "clustering finished",
		slog.String("termination", termination.String()),
		slog.Int("iterations", iterations),
		slog.Float64("distortion", distortion),
		slog.Int("clusters", e.centroids.Rows()),
	)

	return &Outcome{
		Labels:        e.labels,
		Centroids:     e.centroids,
		OriginalIndex: e.origIndex,
		Iterations:    iterations,
		Distortion:    distortion,
		Termination:   termination,
	}, nil
}

// syncMembers folds label changes since the previous pass into the
// per-cluster membership bitmaps.
func (e *Engine) syncMembers() {
	for i, c := range e.labels {
		prev := e.prevLabels[i]
		if prev == c {
			continue
		}
		if prev >= 0 {
			e.members[prev].Remove(uint32(i))
		}
		e.members[c].Add(uint32(i))
		e.prevLabels[i] = c
	}
}

// updateCentroids recomputes every non-empty cluster's centroid as the
// mean of its members, iterating members in ascending point order so the
// sums are reproducible. Empty clusters keep their position for the
// policy to deal with.
func (e *Engine) updateCentroids() {
	for j := 0; j < e.centroids.Rows(); j++ {
		m := e.members[j]
		count := m.GetCardinality()
		if count == 0 {
			continue
		}

		row := e.centroids.Row(j)
		math64.Zero(row)
		it := m.Iterator()
		for it.HasNext() {
			math64.AddTo(row, e.points.Row(int(it.Next())))
		}
		math64.ScaleInPlace(row, 1/float64(count))
	}
}

func (e *Engine) countEmpty() int {
	var count int
	for _, m := range e.members {
		if m.IsEmpty() {
			count++
		}
	}
	return count
}

// reviveEmpty relocates each empty cluster's centroid onto the point
// currently farthest from its own assigned centroid. Every relocation
// consumes its point, so two empty clusters never land on the same spot.
// A cluster that loses its last point to a relocation waits for the next
// iteration's policy pass.
func (e *Engine) reviveEmpty() int {
	var empty []int
	for j, m := range e.members {
		if m.IsEmpty() {
			empty = append(empty, j)
		}
	}
	if len(empty) == 0 {
		return 0
	}

	n := e.points.Rows()
	dists := make([]float64, n)
	for i := 0; i < n; i++ {
		dists[i] = math64.SquaredL2(e.points.Row(i), e.centroids.Row(e.labels[i]))
	}

	taken := roaring.New()
	for _, j := range empty {
		far := -1
		farDist := math.Inf(-1)
		for i := 0; i < n; i++ {
			if taken.Contains(uint32(i)) {
				continue
			}
			if dists[i] > farDist {
				far, farDist = i, dists[i]
			}
		}

		taken.Add(uint32(far))
		e.centroids.SetRow(j, e.points.Row(far))

		old := e.labels[far]
		e.labels[far] = j
		e.prevLabels[far] = j
		e.members[old].Remove(uint32(far))
		e.members[j].Add(uint32(far))
	}

	return len(empty)
}

// killEmpty deletes empty clusters, renumbering the survivors
// contiguously and remapping every label. OriginalIndex keeps the seed
// slot each surviving cluster came from.
func (e *Engine) killEmpty() int {
	k := e.centroids.Rows()

	remap := make([]int, k)
	kept := 0
	for j := 0; j < k; j++ {
		if e.members[j].IsEmpty() {
			remap[j] = -1
			continue
		}
		remap[j] = kept
		kept++
	}
	if kept == k {
		return 0
	}

	survivors := make([]int, 0, kept)
	members := make([]*roaring.Bitmap, 0, kept)
	origIndex := make([]int, 0, kept)
	for j := 0; j < k; j++ {
		if remap[j] < 0 {
			continue
		}
		survivors = append(survivors, j)
		members = append(members, e.members[j])
		origIndex = append(origIndex, e.origIndex[j])
	}

	e.centroids = e.centroids.SelectRows(survivors)
	e.members = members
	e.origIndex = origIndex

	// Only points in surviving clusters exist, so no label maps to -1.
	for i, c := range e.labels {
		e.labels[i] = remap[c]
		e.prevLabels[i] = e.labels[i]
	}

	return k - kept
}
