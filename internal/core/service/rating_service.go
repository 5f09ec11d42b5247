package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
	"github.com/SakutaArc/QuickFund/internal/core/ports"
)

type RatingService struct {
	repo   ports.RatingRepository
	logger zerolog.Logger
}

func NewRatingService(repo ports.RatingRepository, logger zerolog.Logger) *RatingService {
	return &RatingService{repo: repo, logger: logger}
}

// Submit records a rating for the manager of projectID and returns the
// manager's new average. Any finite value is accepted.
func (s *RatingService) Submit(ctx context.Context, projectID int64, rating float64) (float64, error) {
	if projectID <= 0 {
		return 0, domain.Invalid("project id is required")
	}
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return 0, domain.Invalid("rating must be a finite number")
	}

	avg, err := s.repo.Submit(ctx, projectID, rating)
	if err != nil {
		return 0, fmt.Errorf("submit rating: %w", err)
	}

	s.logger.Info().Int64("project_id", projectID).Float64("average", avg).Msg("manager rated")
	return avg, nil
}
