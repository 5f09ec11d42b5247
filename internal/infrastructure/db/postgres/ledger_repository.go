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

// LedgerRepository implements ports.LedgerRepository on PostgreSQL. Every
// balance movement runs inside a single transaction.
type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) ports.LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok, `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`, userID)
	return ok, err
}

func (r *LedgerRepository) ProjectExists(ctx context.Context, projectID int64) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok, `SELECT EXISTS (SELECT 1 FROM projects WHERE project_id = $1)`, projectID)
	return ok, err
}

func (r *LedgerRepository) EnsureGeneralUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO general_users (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
	return err
}

func (r *LedgerRepository) ApplyDonation(ctx context.Context, d domain.Donation) (*domain.LedgerBalance, error) {
	var bal domain.LedgerBalance
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx,
			`INSERT INTO donations (user_id, project_id, donation_amt, payment_mthd)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, project_id) DO UPDATE
			SET donation_amt = donations.donation_amt + EXCLUDED.donation_amt,
				payment_mthd = EXCLUDED.payment_mthd
			RETURNING donation_amt`,
			d.UserID, d.ProjectID, d.Amount, d.PaymentMethod,
		).Scan(&bal.DonatedTotal); err != nil {
			if pqCode(err) == codeForeignKeyViolation {
				return domain.ErrProjectNotFound
			}
			return fmt.Errorf("upsert donation: %w", err)
		}

		if err := tx.QueryRowxContext(ctx,
			`UPDATE projects SET raised_amt = raised_amt + $1 WHERE project_id = $2 RETURNING raised_amt`,
			d.Amount, d.ProjectID,
		).Scan(&bal.RaisedAmount); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrProjectNotFound
			}
			return fmt.Errorf("raise project total: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE general_users SET total_donations = total_donations + $1 WHERE user_id = $2`,
			d.Amount, d.UserID); err != nil {
			return fmt.Errorf("raise donor total: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &bal, nil
}

func (r *LedgerRepository) ApplyRefund(ctx context.Context, userID, projectID int64, amount float64) (*domain.LedgerBalance, error) {
	var bal domain.LedgerBalance
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var total float64
		err := tx.GetContext(ctx, &total,
			`SELECT donation_amt FROM donations WHERE user_id = $1 AND project_id = $2 FOR UPDATE`,
			userID, projectID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lock donation: %w", err)
		}
		if amount > total {
			return domain.ErrRefundExceedsDonation
		}

		if err := tx.QueryRowxContext(ctx,
			`UPDATE donations SET donation_amt = donation_amt - $1
			WHERE user_id = $2 AND project_id = $3
			RETURNING donation_amt`,
			amount, userID, projectID,
		).Scan(&bal.DonatedTotal); err != nil {
			return fmt.Errorf("lower donation: %w", err)
		}

		if err := tx.QueryRowxContext(ctx,
			`UPDATE projects SET raised_amt = raised_amt - $1 WHERE project_id = $2 RETURNING raised_amt`,
			amount, projectID,
		).Scan(&bal.RaisedAmount); err != nil {
			return fmt.Errorf("lower project total: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE general_users SET total_donations = total_donations - $1 WHERE user_id = $2`,
			amount, userID); err != nil {
			return fmt.Errorf("lower donor total: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &bal, nil
}

func (r *LedgerRepository) ListByProject(ctx context.Context, projectID int64) ([]domain.Donation, error) {
	donations := []domain.Donation{}
	err := r.db.SelectContext(ctx, &donations,
		`SELECT user_id, project_id, donation_amt, payment_mthd FROM donations
		WHERE project_id = $1
		ORDER BY donation_amt DESC, user_id`, projectID)
	if err != nil {
		return nil, err
	}
	return donations, nil
}
