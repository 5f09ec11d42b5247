package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
	"github.com/SakutaArc/QuickFund/internal/core/ports"
)

type ProjectService struct {
	repo   ports.ProjectRepository
	logger zerolog.Logger
}

func NewProjectService(repo ports.ProjectRepository, logger zerolog.Logger) *ProjectService {
	return &ProjectService{repo: repo, logger: logger}
}

// Create persists a new active project owned by input.ManagerID together with
// its tags and rewards.
func (s *ProjectService) Create(ctx context.Context, input ports.CreateProjectInput) (int64, error) {
	title := strings.TrimSpace(input.Title)
	faq := strings.TrimSpace(input.FAQ)
	if title == "" || faq == "" {
		return 0, domain.Invalid("title and faq are required")
	}
	if input.Goal <= 0 {
		return 0, domain.Invalid("goal must be greater than 0")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return 0, domain.Invalid("start date and end date are required")
	}
	if input.EndDate.Before(input.StartDate) {
		return 0, domain.Invalid("end date must not be before start date")
	}

	rewards := make([]domain.Reward, 0, len(input.Rewards))
	for i, r := range input.Rewards {
		desc := strings.TrimSpace(r.Description)
		if desc == "" {
			return 0, domain.Invalid("reward[%d]: description is required", i)
		}
		if r.MinDonation < 0 {
			return 0, domain.Invalid("reward[%d]: minimum donation must not be negative", i)
		}
		rewards = append(rewards, domain.Reward{Description: desc, MinDonation: r.MinDonation})
	}

	project := &domain.Project{
		Title:      title,
		GoalAmount: input.Goal,
		FAQ:        faq,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Status:     domain.ProjectActive,
		ManagerID:  input.ManagerID,
		Tags:       normalizeTags(input.Tags),
		Rewards:    rewards,
	}

	id, err := s.repo.Create(ctx, project)
	if err != nil {
		s.logger.Error().Err(err).Int64("manager_id", input.ManagerID).Msg("failed to create project")
		return 0, fmt.Errorf("create project: %w", err)
	}

	s.logger.Info().
		Int64("project_id", id).
		Int64("manager_id", input.ManagerID).
		Int("tags", len(project.Tags)).
		Int("rewards", len(rewards)).
		Msg("project created")
	return id, nil
}

func (s *ProjectService) Get(ctx context.Context, id int64) (*domain.Project, error) {
	return s.repo.FindByID(ctx, id)
}

// Popular returns the best-funded projects by raised/goal ratio.
func (s *ProjectService) Popular(ctx context.Context) ([]domain.Project, error) {
	return s.repo.ListPopular(ctx, ports.PopularLimit)
}

// Search filters by title substring and/or tag membership. Supplying neither
// is a validation error.
func (s *ProjectService) Search(ctx context.Context, filter ports.ProjectSearchFilter) ([]domain.Project, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Tags = normalizeTags(filter.Tags)
	if filter.Query == "" && len(filter.Tags) == 0 {
		return nil, domain.Invalid("at least one search parameter (query or tags) is required")
	}
	return s.repo.Search(ctx, filter)
}

// Update replaces every editable column, raised amount included.
func (s *ProjectService) Update(ctx context.Context, input ports.UpdateProjectInput) error {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.FAQ) == "" {
		return domain.Invalid("title and faq are required")
	}
	if input.Goal <= 0 {
		return domain.Invalid("goal must be greater than 0")
	}
	if input.Raised < 0 {
		return domain.Invalid("raised amount must not be negative")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return domain.Invalid("start date and end date are required")
	}
	if input.EndDate.Before(input.StartDate) {
		return domain.Invalid("end date must not be before start date")
	}

	err := s.repo.Update(ctx, &domain.Project{
		ID:           input.ID,
		Title:        strings.TrimSpace(input.Title),
		FAQ:          strings.TrimSpace(input.FAQ),
		GoalAmount:   input.Goal,
		RaisedAmount: input.Raised,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
	})
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	s.logger.Info().Int64("project_id", input.ID).Msg("project updated")
	return nil
}

// normalizeTags trims, drops empty values and removes duplicates while
// keeping the first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
