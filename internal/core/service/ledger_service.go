package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
	"github.com/SakutaArc/QuickFund/internal/core/ports"
)

// ClaimStatus is the state of an idempotency key at claim time.
type ClaimStatus int

const (
	// ClaimAcquired means the key was new. The caller must Complete or
	// Release it.
	ClaimAcquired ClaimStatus = iota
	// ClaimInFlight means an earlier request holding the key has not finished.
	ClaimInFlight
	// ClaimCompleted means an earlier request with the key was applied.
	ClaimCompleted
)

// IdempotencyStore abstracts the donation replay guard (Redis).
type IdempotencyStore interface {
	Claim(ctx context.Context, userID int64, key string) (ClaimStatus, error)
	// Complete marks a claimed key as applied.
	Complete(ctx context.Context, userID int64, key string) error
	Release(ctx context.Context, userID int64, key string) error
}

// AuditRecorder receives committed ledger movements. Record must not block.
type AuditRecorder interface {
	Record(entry domain.LedgerEntry)
}

type ledgerService struct {
	repo    ports.LedgerRepository
	entries ports.LedgerEntryRepository
	idem    IdempotencyStore
	audit   AuditRecorder
	log     zerolog.Logger
}

// NewLedgerService returns a LedgerService implementation. entries, idem and
// audit may be nil, which disables history reads, replay protection and the
// audit trail respectively.
func NewLedgerService(
	repo ports.LedgerRepository,
	entries ports.LedgerEntryRepository,
	idem IdempotencyStore,
	audit AuditRecorder,
	log zerolog.Logger,
) ports.LedgerService {
	return &ledgerService{
		repo:    repo,
		entries: entries,
		idem:    idem,
		audit:   audit,
		log:     log,
	}
}

// Donate validates the request, ensures the donor extension row, and applies
// the donation atomically.
func (s *ledgerService) Donate(ctx context.Context, in ports.DonateInput) (*ports.DonationResult, error) {
	// 1. Validate before touching any state.
	if in.ProjectID <= 0 {
		return nil, domain.Invalid("project id is required")
	}
	if !(in.Amount > 0) {
		return nil, domain.ErrInvalidAmount
	}
	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		return nil, domain.Invalid("payment method is required")
	}

	// 2. Replay guard. A store failure never blocks a donation.
	claimed := false
	if in.IdempotencyKey != "" && s.idem != nil {
		status, err := s.idem.Claim(ctx, in.UserID, in.IdempotencyKey)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Int64("user_id", in.UserID).Msg("idempotency check failed, processing anyway")
		case status == ClaimCompleted:
			s.log.Info().Int64("user_id", in.UserID).Str("idempotency_key", in.IdempotencyKey).Msg("donation replay skipped")
			return &ports.DonationResult{Replayed: true}, nil
		case status == ClaimInFlight:
			return nil, domain.ErrDonationInProgress
		default:
			claimed = true
		}
	}

	balance, err := s.donate(ctx, in.UserID, in.ProjectID, in.Amount, method)
	if err != nil {
		if claimed {
			if relErr := s.idem.Release(ctx, in.UserID, in.IdempotencyKey); relErr != nil {
				s.log.Warn().Err(relErr).Int64("user_id", in.UserID).Msg("failed to release idempotency key")
			}
		}
		return nil, err
	}
	if claimed {
		if err := s.idem.Complete(ctx, in.UserID, in.IdempotencyKey); err != nil {
			s.log.Warn().Err(err).Int64("user_id", in.UserID).Msg("failed to mark idempotency key completed")
		}
	}

	s.record(domain.LedgerEntry{
		Kind:          domain.EntryDonation,
		UserID:        in.UserID,
		ProjectID:     in.ProjectID,
		Amount:        in.Amount,
		PaymentMethod: method,
		RaisedAfter:   balance.RaisedAmount,
	})

	s.log.Info().
		Int64("user_id", in.UserID).
		Int64("project_id", in.ProjectID).
		Float64("amount", in.Amount).
		Float64("raised", balance.RaisedAmount).
		Msg("donation applied")

	return &ports.DonationResult{Balance: *balance}, nil
}

func (s *ledgerService) donate(ctx context.Context, userID, projectID int64, amount float64, method string) (*domain.LedgerBalance, error) {
	ok, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("donate: lookup user: %w", err)
	}
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if err := s.repo.EnsureGeneralUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("donate: ensure donor: %w", err)
	}

	ok, err = s.repo.ProjectExists(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("donate: lookup project: %w", err)
	}
	if !ok {
		return nil, domain.ErrProjectNotFound
	}

	balance, err := s.repo.ApplyDonation(ctx, domain.Donation{
		UserID:        userID,
		ProjectID:     projectID,
		Amount:        amount,
		PaymentMethod: method,
	})
	if err != nil {
		if errors.Is(err, domain.ErrProjectNotFound) {
			return nil, err
		}
		s.log.Error().Err(err).Int64("user_id", userID).Int64("project_id", projectID).Msg("donation rolled back")
		return nil, fmt.Errorf("donate: %w", domain.ErrLedgerProcessing)
	}
	return balance, nil
}

// Refund returns part of a user's accumulated donation to a project.
func (s *ledgerService) Refund(ctx context.Context, in ports.RefundInput) (*domain.LedgerBalance, error) {
	if in.ProjectID <= 0 {
		return nil, domain.Invalid("project id is required")
	}
	if !(in.Amount > 0) {
		return nil, domain.ErrInvalidAmount
	}

	balance, err := s.repo.ApplyRefund(ctx, in.UserID, in.ProjectID, in.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrRefundExceedsDonation) {
			return nil, err
		}
		s.log.Error().Err(err).Int64("user_id", in.UserID).Int64("project_id", in.ProjectID).Msg("refund rolled back")
		return nil, fmt.Errorf("refund: %w", domain.ErrLedgerProcessing)
	}

	s.record(domain.LedgerEntry{
		Kind:        domain.EntryRefund,
		UserID:      in.UserID,
		ProjectID:   in.ProjectID,
		Amount:      -in.Amount,
		RaisedAfter: balance.RaisedAmount,
	})

	s.log.Info().
		Int64("user_id", in.UserID).
		Int64("project_id", in.ProjectID).
		Float64("amount", in.Amount).
		Float64("raised", balance.RaisedAmount).
		Msg("refund applied")

	return balance, nil
}

func (s *ledgerService) ListDonations(ctx context.Context, projectID int64) ([]domain.Donation, error) {
	return s.repo.ListByProject(ctx, projectID)
}

// History returns the audit trail for a project, newest first.
func (s *ledgerService) History(ctx context.Context, projectID int64) ([]domain.LedgerEntry, error) {
	if s.entries == nil {
		return []domain.LedgerEntry{}, nil
	}
	return s.entries.ListByProject(ctx, projectID, ports.HistoryLimit)
}

// record hands a committed movement to the audit trail (non-fatal).
func (s *ledgerService) record(entry domain.LedgerEntry) {
	if s.audit == nil {
		return
	}
	entry.ID = uuid.NewString()
	entry.RecordedAt = time.Now().UTC()
	s.audit.Record(entry)
}
