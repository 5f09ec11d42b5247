package ports

import "context"

// RatingRepository records manager ratings.
type RatingRepository interface {
	// Submit attributes the rating to the project's manager and recomputes the
	// manager's average in one transaction, returning the new average.
	Submit(ctx context.Context, projectID int64, rating float64) (float64, error)
}

type RatingService interface {
	Submit(ctx context.Context, projectID int64, rating float64) (float64, error)
}
