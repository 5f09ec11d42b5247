package ports

import (
	"context"
	"time"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
)

// RewardInput holds one reward tier of a new project.
type RewardInput struct {
	Description string
	MinDonation float64
}

// CreateProjectInput carries all data needed to create a project.
type CreateProjectInput struct {
	ManagerID int64
	Title     string
	Goal      float64
	FAQ       string
	StartDate time.Time
	EndDate   time.Time
	Tags      []string
	Rewards   []RewardInput
}

// UpdateProjectInput is a full replacement of a project's editable fields.
type UpdateProjectInput struct {
	ID        int64
	Title     string
	FAQ       string
	Goal      float64
	Raised    float64
	StartDate time.Time
	EndDate   time.Time
}

// PopularLimit is the size of the popular listing.
const PopularLimit = 5

type ProjectService interface {
	Create(ctx context.Context, input CreateProjectInput) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Project, error)
	Popular(ctx context.Context) ([]domain.Project, error)
	Search(ctx context.Context, filter ProjectSearchFilter) ([]domain.Project, error)
	Update(ctx context.Context, input UpdateProjectInput) error
}
