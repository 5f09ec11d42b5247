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

type RatingRepository struct {
	db *sqlx.DB
}

func NewRatingRepository(db *sqlx.DB) ports.RatingRepository {
	return &RatingRepository{db: db}
}

func (r *RatingRepository) Submit(ctx context.Context, projectID int64, rating float64) (float64, error) {
	var avg float64
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var managerID int64
		if err := tx.GetContext(ctx, &managerID,
			`SELECT manager_id FROM projects WHERE project_id = $1`, projectID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrProjectNotFound
			}
			return fmt.Errorf("resolve manager: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ratings (manager_id, rating) VALUES ($1, $2)`, managerID, rating); err != nil {
			return fmt.Errorf("insert rating: %w", err)
		}

		if err := tx.GetContext(ctx, &avg,
			`UPDATE project_managers
			SET rating = (SELECT AVG(rating) FROM ratings WHERE manager_id = $1)
			WHERE user_id = $1
			RETURNING rating`, managerID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrManagerNotFound
			}
			return fmt.Errorf("recompute rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return avg, nil
}
