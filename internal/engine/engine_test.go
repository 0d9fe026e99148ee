package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kmeans/internal/assign"
	"github.com/hupe1980/kmeans/matrix"
	"github.com/hupe1980/kmeans/testutil"
)

var allKinds = []assign.Kind{
	assign.KindNaive,
	assign.KindElkan,
	assign.KindHamerly,
	assign.KindDualTreeKD,
	assign.KindDualTreeCover,
}

func runEngine(t *testing.T, points, seed *matrix.Dense, kind assign.Kind, policy Policy, maxIter int) *Outcome {
	t.Helper()

	out, err := New(Config{
		Points:        points,
		Centroids:     seed.Clone(),
		Strategy:      assign.New(kind, points, 2),
		MaxIterations: maxIter,
		Policy:        policy,
	}).Run(context.Background())
	require.NoError(t, err)

	return out
}

func TestEngineConverges(t *testing.T) {
	rng := testutil.NewRNG(42)
	points, _ := rng.ClusteredPoints(200, 4, 3, 0.2)
	seed := points.SelectRows([]int{0, 1, 2})

	out := runEngine(t, points, seed, assign.KindNaive, PolicyDefault, 100)

	assert.Equal(t, TerminationConverged, out.Termination)
	assert.GreaterOrEqual(t, out.Iterations, 1)
	assert.Equal(t, []int{0, 1, 2}, out.OriginalIndex)

	// A converged state is a fixed point: recomputing assignments against
	// the final centroids reproduces the final labels and distortion.
	assert.Equal(t, testutil.BruteForceAssign(points, out.Centroids), out.Labels)
	assert.Equal(t, testutil.Distortion(points, out.Centroids, out.Labels), out.Distortion)
}

func TestEngineIterationCap(t *testing.T) {
	rng := testutil.NewRNG(42)
	points, _ := rng.ClusteredPoints(300, 4, 5, 1.5)
	seed := points.SelectRows([]int{0, 1, 2, 3, 4})

	out := runEngine(t, points, seed, assign.KindNaive, PolicyDefault, 1)

	assert.Equal(t, TerminationIterationLimit, out.Termination)
	assert.Equal(t, 1, out.Iterations)
	for _, c := range out.Labels {
		assert.GreaterOrEqual(t, c, 0)
		assert.Less(t, c, 5)
	}
}

func TestEngineUnlimitedIterations(t *testing.T) {
	rng := testutil.NewRNG(7)
	points, _ := rng.ClusteredPoints(150, 3, 4, 0.4)
	seed := points.SelectRows([]int{0, 1, 2, 3})

	out := runEngine(t, points, seed, assign.KindNaive, PolicyDefault, 0)

	assert.Equal(t, TerminationConverged, out.Termination)
}

func TestEngineCrossStrategyAgreement(t *testing.T) {
	rng := testutil.NewRNG(4711)
	points := rng.UniformPoints(250, 4)
	seed := points.SelectRows([]int{0, 50, 100, 150, 200})

	want := runEngine(t, points, seed, assign.KindNaive, PolicyDefault, 100)

	for _, kind := range allKinds[1:] {
		t.Run(kind.String(), func(t *testing.T) {
			out := runEngine(t, points, seed, kind, PolicyDefault, 100)

			assert.Equal(t, want.Labels, out.Labels)
			assert.True(t, matrix.Equal(want.Centroids, out.Centroids))
			assert.Equal(t, want.Iterations, out.Iterations)
			assert.Equal(t, want.Distortion, out.Distortion)
			assert.Equal(t, want.Termination, out.Termination)
		})
	}
}

// emptyForcingCase returns four points in two pairs plus three seeds whose
// first centroid sits far from all data, so cluster 0 is empty after the
// first pass.
func emptyForcingCase() (points, seed *matrix.Dense) {
	points = matrix.NewDense(4, 1, []float64{0, 1, 10, 11})
	seed = matrix.NewDense(3, 1, []float64{100, 0.5, 10.5})
	return points, seed
}

func TestEngineAllowEmptyFreezesCentroid(t *testing.T) {
	points, seed := emptyForcingCase()

	out := runEngine(t, points, seed, assign.KindNaive, PolicyAllowEmpty, 100)

	assert.Equal(t, TerminationConverged, out.Termination)
	assert.Equal(t, 3, out.Centroids.Rows())
	assert.Equal(t, []int{1, 1, 2, 2}, out.Labels)

	// The empty cluster's centroid never moves.
	assert.Equal(t, 100.0, out.Centroids.At(0, 0))
}

func TestEngineKillEmptyRenumbers(t *testing.T) {
	points, seed := emptyForcingCase()

	out := runEngine(t, points, seed, assign.KindNaive, PolicyKillEmpty, 100)

	assert.Equal(t, TerminationConverged, out.Termination)
	assert.Equal(t, 2, out.Centroids.Rows())
	assert.Equal(t, []int{0, 0, 1, 1}, out.Labels)
	assert.Equal(t, []int{1, 2}, out.OriginalIndex)
}

func TestEngineDefaultRevivesEmpty(t *testing.T) {
	points, seed := emptyForcingCase()

	out := runEngine(t, points, seed, assign.KindNaive, PolicyDefault, 100)

	assert.Equal(t, TerminationConverged, out.Termination)
	assert.Equal(t, 3, out.Centroids.Rows())

	// All ties on the farthest point break to the lowest index, so the
	// revived cluster picks up point 0.
	assert.Equal(t, []int{0, 1, 2, 2}, out.Labels)

	seen := make(map[int]bool)
	for _, c := range out.Labels {
		seen[c] = true
	}
	assert.Len(t, seen, 3, "every cluster keeps at least one member")
}

// TestEnginePolicyDivergence requires the three policies to disagree on
// the label of at least one point whenever an empty cluster appears.
func TestEnginePolicyDivergence(t *testing.T) {
	points, seed := emptyForcingCase()

	outs := map[Policy]*Outcome{}
	for _, policy := range []Policy{PolicyDefault, PolicyAllowEmpty, PolicyKillEmpty} {
		outs[policy] = runEngine(t, points, seed, assign.KindNaive, policy, 100)
	}

	policies := []Policy{PolicyDefault, PolicyAllowEmpty, PolicyKillEmpty}
	for a := 0; a < len(policies); a++ {
		for b := a + 1; b < len(policies); b++ {
			assert.NotEqual(t, outs[policies[a]].Labels, outs[policies[b]].Labels,
				"%s and %s agreed on every label", policies[a], policies[b])
		}
	}
}

// TestEnginePolicyAgreementAcrossStrategies pins the policy outcomes for
// every strategy, covering the bound-cache reset after relocations and
// cluster deletion.
func TestEnginePolicyAgreementAcrossStrategies(t *testing.T) {
	points, seed := emptyForcingCase()

	for _, policy := range []Policy{PolicyDefault, PolicyAllowEmpty, PolicyKillEmpty} {
		want := runEngine(t, points, seed, assign.KindNaive, policy, 100)

		for _, kind := range allKinds[1:] {
			t.Run(policy.String()+"/"+kind.String(), func(t *testing.T) {
				out := runEngine(t, points, seed, kind, policy, 100)

				assert.Equal(t, want.Labels, out.Labels)
				assert.True(t, matrix.Equal(want.Centroids, out.Centroids))
				assert.Equal(t, want.Termination, out.Termination)
			})
		}
	}
}

func TestEngineDeterminism(t *testing.T) {
	rng := testutil.NewRNG(99)
	points := rng.UniformPoints(400, 3)
	seed := points.SelectRows([]int{0, 100, 200, 300})

	a := runEngine(t, points, seed, assign.KindElkan, PolicyDefault, 100)
	b := runEngine(t, points, seed, assign.KindElkan, PolicyDefault, 100)

	assert.Equal(t, a.Labels, b.Labels)
	assert.True(t, matrix.Equal(a.Centroids, b.Centroids))
	assert.Equal(t, a.Distortion, b.Distortion)
	assert.Equal(t, a.Iterations, b.Iterations)
}

type countingMetrics struct {
	iterations atomic.Int64
	empty      atomic.Int64
}

func (m *countingMetrics) RecordIteration(_ time.Duration, _ int) { m.iterations.Add(1) }
func (m *countingMetrics) RecordEmptyClusters(count int)          { m.empty.Add(int64(count)) }

func TestEngineMetrics(t *testing.T) {
	points, seed := emptyForcingCase()

	metrics := &countingMetrics{}
	out, err := New(Config{
		Points:        points,
		Centroids:     seed.Clone(),
		Strategy:      assign.New(assign.KindNaive, points, 1),
		MaxIterations: 100,
		Policy:        PolicyAllowEmpty,
		Metrics:       metrics,
	}).Run(context.Background())
	require.NoError(t, err)

	// The converging pass is recorded too.
	assert.Equal(t, int64(out.Iterations+1), metrics.iterations.Load())
	assert.Positive(t, metrics.empty.Load())
}

func TestEngineCancelled(t *testing.T) {
	rng := testutil.NewRNG(1)
	points := rng.UniformPoints(100, 2)
	seed := points.SelectRows([]int{0, 1, 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{
		Points:    points,
		Centroids: seed.Clone(),
		Strategy:  assign.New(assign.KindNaive, points, 1),
		Policy:    PolicyDefault,
	}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "default", PolicyDefault.String())
	assert.Equal(t, "allow-empty", PolicyAllowEmpty.String())
	assert.Equal(t, "kill-empty", PolicyKillEmpty.String())
}

func TestTerminationString(t *testing.T) {
	assert.Equal(t, "converged", TerminationConverged.String())
	assert.Equal(t, "iteration-limit", TerminationIterationLimit.String())
}
