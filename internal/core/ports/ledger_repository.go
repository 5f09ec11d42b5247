package ports

import (
	"context"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
)

// LedgerRepository owns the donation/refund balance rows.
//
// ApplyDonation and ApplyRefund each run as one atomic unit: either every
// balance they touch moves, or none does.
type LedgerRepository interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	ProjectExists(ctx context.Context, projectID int64) (bool, error)
	// EnsureGeneralUser creates the donor extension row if it is absent.
	EnsureGeneralUser(ctx context.Context, userID int64) error

	// ApplyDonation adds the amount to the (user, project) donation row,
	// creating it if needed and overwriting its payment method, and raises
	// the project's total by the same amount.
	ApplyDonation(ctx context.Context, d domain.Donation) (*domain.LedgerBalance, error)
	// ApplyRefund subtracts amount from the donation row and the project's
	// total. It returns domain.ErrRefundExceedsDonation, leaving every row
	// unchanged, when amount is larger than what the user has donated.
	ApplyRefund(ctx context.Context, userID, projectID int64, amount float64) (*domain.LedgerBalance, error)

	ListByProject(ctx context.Context, projectID int64) ([]domain.Donation, error)
}

// LedgerEntryRepository stores the append-only audit trail of movements.
type LedgerEntryRepository interface {
	Insert(ctx context.Context, entry *domain.LedgerEntry) error
	ListByProject(ctx context.Context, projectID int64, limit int64) ([]domain.LedgerEntry, error)
}
