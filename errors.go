package kmeans

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kmeans/internal/seed"
)

var (
	// ErrMissingInput is returned when no dataset was supplied.
	ErrMissingInput = errors.New("missing input dataset")
)

// ErrInvalidClusterCount indicates a cluster count outside [1, N].
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidClusterCount struct {
	Clusters int
	Points   int
	cause    error
}

func (e *ErrInvalidClusterCount) Error() string {
	return fmt.Sprintf("invalid cluster count: %d clusters for %d points", e.Clusters, e.Points)
}

func (e *ErrInvalidClusterCount) Unwrap() error { return e.cause }

// ErrInvalidPercentage indicates a refined start percentage outside (0, 1].
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidPercentage struct {
	Percentage float64
	cause      error
}

func (e *ErrInvalidPercentage) Error() string {
	return fmt.Sprintf("invalid refined start percentage: %g", e.Percentage)
}

func (e *ErrInvalidPercentage) Unwrap() error { return e.cause }

// ErrDegenerateInit indicates the initializer cannot produce the requested
// centroids.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDegenerateInit struct {
	Reason string
	cause  error
}

func (e *ErrDegenerateInit) Error() string {
	return fmt.Sprintf("degenerate initialization: %s", e.Reason)
}

func (e *ErrDegenerateInit) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Initializer failure normalization.
	if errors.Is(err, seed.ErrTooFewPoints) {
		return &ErrDegenerateInit{Reason: "cluster count exceeds point count", cause: err}
	}
	if errors.Is(err, seed.ErrSampleTooSmall) {
		return &ErrDegenerateInit{Reason: "refined start sample smaller than cluster count", cause: err}
	}

	return err
}
