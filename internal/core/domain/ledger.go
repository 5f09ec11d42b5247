package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidAmount         = fmt.Errorf("%w: amount must be a positive number", ErrValidation)
	ErrRefundExceedsDonation = errors.New("refund amount exceeds total donated to project")
	ErrDonationInProgress    = errors.New("a donation with this idempotency key is still being processed")
	// ErrLedgerProcessing is surfaced when an atomic ledger unit fails and was
	// rolled back. The underlying cause is logged, never returned to clients.
	ErrLedgerProcessing = errors.New("ledger processing failed")
)

// Donation is the accumulated amount one user has given to one project.
// There is exactly one row per (user, project) pair.
type Donation struct {
	UserID        int64   `db:"user_id"`
	ProjectID     int64   `db:"project_id"`
	Amount        float64 `db:"donation_amt"`
	PaymentMethod string  `db:"payment_mthd"`
}

// LedgerBalance reports the balances left by a committed ledger unit.
type LedgerBalance struct {
	DonatedTotal float64 // the user's donation row for the project
	RaisedAmount float64 // the project's raised amount
}

// EntryKind tags an audit entry.
type EntryKind string

const (
	EntryDonation EntryKind = "donation"
	EntryRefund   EntryKind = "refund"
)

// LedgerEntry is an immutable record of one committed ledger movement.
// Refunds carry a negative Amount.
type LedgerEntry struct {
	ID            string
	Kind          EntryKind
	UserID        int64
	ProjectID     int64
	Amount        float64
	PaymentMethod string
	RaisedAfter   float64
	RecordedAt    time.Time
}
