package ports

import (
	"context"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
)

type CommentRepository interface {
	// ListByProject returns comments newest first with the author's username.
	ListByProject(ctx context.Context, projectID int64) ([]domain.Comment, error)
	// Create stores the comment dated today and returns its id.
	Create(ctx context.Context, c *domain.Comment) (int64, error)
}

type CommentService interface {
	List(ctx context.Context, projectID int64) ([]domain.Comment, error)
	Add(ctx context.Context, userID, projectID int64, content string) (int64, error)
}
