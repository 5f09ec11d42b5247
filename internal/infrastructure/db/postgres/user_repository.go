package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
	"github.com/SakutaArc/QuickFund/internal/core/ports"
)

// UserRepository implements ports.UserRepository on PostgreSQL.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	const q = `INSERT INTO users (username, password_hash, acct_status) VALUES ($1, $2, $3) RETURNING user_id`

	created := *user
	if err := r.db.QueryRowxContext(ctx, q, user.Username, user.PasswordHash, user.AccountStatus).Scan(&created.ID); err != nil {
		if pqCode(err) == codeUniqueViolation {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &created, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT user_id, username, password_hash, acct_status FROM users WHERE username = $1`, username)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, `SELECT user_id, username, password_hash, acct_status FROM users WHERE user_id = $1`, id)
}

func (r *UserRepository) findOne(ctx context.Context, q string, arg any) (*domain.User, error) {
	var u domain.User
	if err := r.db.GetContext(ctx, &u, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) UpdateCredentials(ctx context.Context, id int64, username, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET username = $1, password_hash = $2 WHERE user_id = $3`,
		username, passwordHash, id)
	if err != nil {
		if pqCode(err) == codeUniqueViolation {
			return domain.ErrUserExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete removes every row owned by the user. Donations are removed without
// touching the projects' raised amounts.
func (r *UserRepository) Delete(ctx context.Context, id int64) (int, error) {
	var orphaned int
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &orphaned, `SELECT COUNT(*) FROM projects WHERE manager_id = $1`, id); err != nil {
			return fmt.Errorf("count managed projects: %w", err)
		}

		for _, q := range []string{
			`DELETE FROM general_users WHERE user_id = $1`,
			`DELETE FROM project_managers WHERE user_id = $1`,
			`DELETE FROM donations WHERE user_id = $1`,
			`DELETE FROM comments WHERE user_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orphaned, nil
}

const (
	profileQuery = `SELECT u.user_id, u.username, pm.projects_managed, pm.rating, gu.total_donations
		FROM users u
		LEFT JOIN project_managers pm ON pm.user_id = u.user_id
		LEFT JOIN general_users gu ON gu.user_id = u.user_id
		WHERE u.user_id = $1`
	profileDonationsQuery = `SELECT d.project_id, p.title AS project_title, d.donation_amt, d.payment_mthd
		FROM donations d
		JOIN projects p ON p.project_id = d.project_id
		WHERE d.user_id = $1
		ORDER BY d.project_id`
	profileProjectsQuery = `SELECT project_id, title, goal_amt, raised_amt, status
		FROM projects
		WHERE manager_id = $1
		ORDER BY project_id`
)

func (r *UserRepository) Profile(ctx context.Context, id int64) (*domain.Profile, error) {
	var p domain.Profile
	if err := r.db.GetContext(ctx, &p, profileQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	p.Donations = []domain.DonationSummary{}
	if err := r.db.SelectContext(ctx, &p.Donations, profileDonationsQuery, id); err != nil {
		return nil, fmt.Errorf("profile donations: %w", err)
	}

	p.CreatedProjects = []domain.ProjectSummary{}
	if err := r.db.SelectContext(ctx, &p.CreatedProjects, profileProjectsQuery, id); err != nil {
		return nil, fmt.Errorf("profile projects: %w", err)
	}
	return &p, nil
}
