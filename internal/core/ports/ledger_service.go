package ports

import (
	"context"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
)

// DonateInput is the DTO passed from the transport layer to LedgerService.
type DonateInput struct {
	UserID        int64
	ProjectID     int64
	Amount        float64
	PaymentMethod string
	// IdempotencyKey is optional. A key seen before for the same user makes
	// the call a no-op replay.
	IdempotencyKey string
}

// DonationResult is returned by Donate.
type DonationResult struct {
	Balance domain.LedgerBalance
	// Replayed is true when the idempotency key matched an earlier request
	// and nothing was written.
	Replayed bool
}

// RefundInput carries a refund request.
type RefundInput struct {
	UserID    int64
	ProjectID int64
	Amount    float64
}

// HistoryLimit caps the number of audit entries returned per project.
const HistoryLimit = 100

type LedgerService interface {
	Donate(ctx context.Context, input DonateInput) (*DonationResult, error)
	Refund(ctx context.Context, input RefundInput) (*domain.LedgerBalance, error)
	ListDonations(ctx context.Context, projectID int64) ([]domain.Donation, error)
	History(ctx context.Context, projectID int64) ([]domain.LedgerEntry, error)
}
