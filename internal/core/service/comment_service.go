package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
	"github.com/SakutaArc/QuickFund/internal/core/ports"
)

type CommentService struct {
	repo ports.CommentRepository
}

func NewCommentService(repo ports.CommentRepository) *CommentService {
	return &CommentService{repo: repo}
}

func (s *CommentService) List(ctx context.Context, projectID int64) ([]domain.Comment, error) {
	return s.repo.ListByProject(ctx, projectID)
}

func (s *CommentService) Add(ctx context.Context, userID, projectID int64, content string) (int64, error) {
	content = strings.TrimSpace(content)
	if projectID <= 0 || content == "" {
		return 0, domain.Invalid("project id and content are required")
	}

	id, err := s.repo.Create(ctx, &domain.Comment{
		ProjectID: projectID,
		UserID:    userID,
		Content:   content,
	})
	if err != nil {
		return 0, fmt.Errorf("add comment: %w", err)
	}
	return id, nil
}
