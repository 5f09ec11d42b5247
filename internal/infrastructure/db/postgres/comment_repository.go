package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
	"github.com/SakutaArc/QuickFund/internal/core/ports"
)

type CommentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) ports.CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) ListByProject(ctx context.Context, projectID int64) ([]domain.Comment, error) {
	comments := []domain.Comment{}
	err := r.db.SelectContext(ctx, &comments,
		`SELECT c.comment_id, c.project_id, c.user_id, u.username, c.content, c.date_posted
		FROM comments c
		JOIN users u ON u.user_id = c.user_id
		WHERE c.project_id = $1
		ORDER BY c.date_posted DESC, c.comment_id DESC`, projectID)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Create stores the comment dated today. A missing author surfaces as
// domain.ErrUserNotFound, a missing project as domain.ErrProjectNotFound.
func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO comments (project_id, user_id, content, date_posted)
		VALUES ($1, $2, $3, CURRENT_DATE)
		RETURNING comment_id`,
		c.ProjectID, c.UserID, c.Content,
	).Scan(&id)
	if err != nil {
		if pqCode(err) == codeForeignKeyViolation {
			if pqConstraint(err) == "comments_user_id_fkey" {
				return 0, domain.ErrUserNotFound
			}
			return 0, domain.ErrProjectNotFound
		}
		return 0, err
	}
	return id, nil
}
