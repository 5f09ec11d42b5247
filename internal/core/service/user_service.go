package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
	"github.com/SakutaArc/QuickFund/internal/core/ports"
)

// UserService serves the authenticated user's profile and account changes.
type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// Profile is computed fresh on every call.
func (s *UserService) Profile(ctx context.Context, userID int64) (*domain.Profile, error) {
	profile, err := s.repo.Profile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

func (s *UserService) UpdateCredentials(ctx context.Context, userID int64, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Invalid("username and password are required")
	}
	if len(password) < minPasswordLength {
		return domain.Invalid("password must be at least %d characters", minPasswordLength)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateCredentials(ctx, userID, username, hash); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.logger.Info().Int64("user_id", userID).Msg("credentials updated")
	return nil
}

// Delete removes the account. Projects the user manages are not removed and
// keep pointing at the deleted manager id.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	orphaned, err := s.repo.Delete(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if orphaned > 0 {
		s.logger.Warn().Int64("user_id", userID).Int("projects", orphaned).Msg("deleted user still manages projects")
	}
	s.logger.Info().Int64("user_id", userID).Msg("user deleted")
	return nil
}
