package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
	"github.com/SakutaArc/QuickFund/internal/core/ports"
)

const projectColumns = `p.project_id, p.title, p.goal_amt, p.raised_amt, p.faq, p.start_date, p.end_date, p.status, p.manager_id`

// ordering by funding ratio, ties broken by id for a stable listing
const byFundingRatio = ` ORDER BY p.raised_amt / p.goal_amt DESC, p.project_id`

// ProjectRepository implements ports.ProjectRepository on PostgreSQL.
type ProjectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) ports.ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create writes the project, its manager bookkeeping, tag links and rewards in
// one transaction. Tags are reused by value.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) (int64, error) {
	var id int64
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO project_managers (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
			p.ManagerID); err != nil {
			if pqCode(err) == codeForeignKeyViolation {
				return domain.ErrUserNotFound
			}
			return fmt.Errorf("ensure manager: %w", err)
		}

		if err := tx.QueryRowxContext(ctx,
			`INSERT INTO projects (title, goal_amt, raised_amt, faq, start_date, end_date, status, manager_id)
			VALUES ($1, $2, 0, $3, $4, $5, $6, $7) RETURNING project_id`,
			p.Title, p.GoalAmount, p.FAQ, p.StartDate, p.EndDate, string(p.Status), p.ManagerID,
		).Scan(&id); err != nil {
			return fmt.Errorf("insert project: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE project_managers SET projects_managed = projects_managed + 1 WHERE user_id = $1`,
			p.ManagerID); err != nil {
			return fmt.Errorf("count managed project: %w", err)
		}

		for _, tag := range p.Tags {
			var tagID int64
			if err := tx.QueryRowxContext(ctx,
				`INSERT INTO tags (tag_value) VALUES ($1)
				ON CONFLICT (tag_value) DO UPDATE SET tag_value = EXCLUDED.tag_value
				RETURNING tag_id`, tag).Scan(&tagID); err != nil {
				return fmt.Errorf("upsert tag %q: %w", tag, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO project_tags (project_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				id, tagID); err != nil {
				return fmt.Errorf("link tag %q: %w", tag, err)
			}
		}

		for _, rw := range p.Rewards {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO rewards (project_id, description, min_donation) VALUES ($1, $2, $3)`,
				id, rw.Description, rw.MinDonation); err != nil {
				return fmt.Errorf("insert reward: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FindByID loads the project together with its tags and rewards.
func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (*domain.Project, error) {
	var p domain.Project
	if err := r.db.GetContext(ctx, &p, `SELECT `+projectColumns+` FROM projects p WHERE p.project_id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}

	p.Tags = []string{}
	if err := r.db.SelectContext(ctx, &p.Tags,
		`SELECT t.tag_value FROM tags t
		JOIN project_tags pt ON pt.tag_id = t.tag_id
		WHERE pt.project_id = $1
		ORDER BY t.tag_value`, id); err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	p.Rewards = []domain.Reward{}
	if err := r.db.SelectContext(ctx, &p.Rewards,
		`SELECT reward_id, project_id, description, min_donation FROM rewards
		WHERE project_id = $1
		ORDER BY min_donation, reward_id`, id); err != nil {
		return nil, fmt.Errorf("load rewards: %w", err)
	}
	return &p, nil
}

func (r *ProjectRepository) ListPopular(ctx context.Context, limit int) ([]domain.Project, error) {
	projects := []domain.Project{}
	if err := r.db.SelectContext(ctx, &projects,
		`SELECT `+projectColumns+` FROM projects p`+byFundingRatio+` LIMIT $1`, limit); err != nil {
		return nil, err
	}
	return projects, nil
}

// Search matches the title case-insensitively and, when tags are given,
// requires at least one of them.
func (r *ProjectRepository) Search(ctx context.Context, filter ports.ProjectSearchFilter) ([]domain.Project, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Query != "" {
		conds = append(conds, `p.title ILIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(filter.Query)+"%")
	}
	if len(filter.Tags) > 0 {
		conds = append(conds, `p.project_id IN (
			SELECT pt.project_id FROM project_tags pt
			JOIN tags t ON t.tag_id = pt.tag_id
			WHERE t.tag_value IN (?))`)
		args = append(args, filter.Tags)
	}

	q := `SELECT ` + projectColumns + ` FROM projects p`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += byFundingRatio

	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, fmt.Errorf("build search: %w", err)
	}

	projects := []domain.Project{}
	if err := r.db.SelectContext(ctx, &projects, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return projects, nil
}

// Update replaces the editable columns. Status and manager are kept.
func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects
		SET title = $1, faq = $2, goal_amt = $3, raised_amt = $4, start_date = $5, end_date = $6
		WHERE project_id = $7`,
		p.Title, p.FAQ, p.GoalAmount, p.RaisedAmount, p.StartDate, p.EndDate, p.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
