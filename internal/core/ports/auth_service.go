package ports

import (
	"context"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}

// UserService covers the authenticated user's own account.
type UserService interface {
	Profile(ctx context.Context, userID int64) (*domain.Profile, error)
	UpdateCredentials(ctx context.Context, userID int64, username, password string) error
	Delete(ctx context.Context, userID int64) error
}
