package ports

import (
	"context"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
)

// UserRepository defines persistence for accounts and their aggregates.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// UpdateCredentials replaces username and password hash.
	// Returns domain.ErrUserNotFound when no row matched.
	UpdateCredentials(ctx context.Context, id int64, username, passwordHash string) error
	// Delete removes the user and its extension, donation and comment rows in
	// one transaction. It reports how many projects still reference the user
	// as manager; those rows are left untouched.
	Delete(ctx context.Context, id int64) (orphanedProjects int, err error)
	Profile(ctx context.Context, id int64) (*domain.Profile, error)
}
