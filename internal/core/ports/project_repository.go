package ports

import (
	"context"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
)

// ProjectSearchFilter carries the search parameters. At least one of Query or
// Tags is non-empty by the time it reaches the repository.
type ProjectSearchFilter struct {
	Query string   // case-insensitive substring of the title
	Tags  []string // project must carry any of these tags
}

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	// Create persists the project with its tags and rewards, ensuring the
	// manager extension row exists, as a single all-or-nothing unit.
	Create(ctx context.Context, p *domain.Project) (int64, error)
	// FindByID loads a project with its tags and rewards.
	FindByID(ctx context.Context, id int64) (*domain.Project, error)
	ListPopular(ctx context.Context, limit int) ([]domain.Project, error)
	Search(ctx context.Context, filter ProjectSearchFilter) ([]domain.Project, error)
	// Update replaces the editable columns. Returns domain.ErrProjectNotFound
	// when no row was affected.
	Update(ctx context.Context, p *domain.Project) error
}
