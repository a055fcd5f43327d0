package analysis

import (
	"context"
	"errors"

	"mealsnap/internal/model"
)

// Analyzer sends a meal photo to the external vision service and
// returns the structured calorie estimate.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (*model.Analysis, error)
}

// Failures are tagged so callers can distinguish a service that is
// unreachable from one that replied but unusably.
var (
	// ErrUnavailable means the service could not be reached or
	// returned a non-success status.
	ErrUnavailable = errors.New("analysis service unavailable")

	// ErrMalformedReply means the service replied, but the reply could
	// not be parsed into an analysis result.
	ErrMalformedReply = errors.New("malformed analysis response")
)
