package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
	"github.com/SakutaArc/QuickFund/internal/core/ports"
)

func nopLogger() zerolog.Logger { return zerolog.Nop() }

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type donationKey struct{ user, project int64 }

// memLedger mirrors the all-or-nothing balance rules of the Postgres ledger.
type memLedger struct {
	users     map[int64]bool
	donors    map[int64]float64 // general_users.total_donations
	raised    map[int64]float64 // projects.raised_amt
	donations map[donationKey]*domain.Donation
	applyErr  error
}

func newMemLedger() *memLedger {
	return &memLedger{
		users:     map[int64]bool{},
		donors:    map[int64]float64{},
		raised:    map[int64]float64{},
		donations: map[donationKey]*domain.Donation{},
	}
}

func (m *memLedger) UserExists(_ context.Context, id int64) (bool, error) { return m.users[id], nil }

func (m *memLedger) ProjectExists(_ context.Context, id int64) (bool, error) {
	_, ok := m.raised[id]
	return ok, nil
}

func (m *memLedger) EnsureGeneralUser(_ context.Context, id int64) error {
	if _, ok := m.donors[id]; !ok {
		m.donors[id] = 0
	}
	return nil
}

func (m *memLedger) ApplyDonation(_ context.Context, d domain.Donation) (*domain.LedgerBalance, error) {
	if m.applyErr != nil {
		return nil, m.applyErr
	}
	if _, ok := m.raised[d.ProjectID]; !ok {
		return nil, domain.ErrProjectNotFound
	}
	k := donationKey{d.UserID, d.ProjectID}
	row, ok := m.donations[k]
	if !ok {
		row = &domain.Donation{UserID: d.UserID, ProjectID: d.ProjectID}
		m.donations[k] = row
	}
	row.Amount += d.Amount
	row.PaymentMethod = d.PaymentMethod
	m.raised[d.ProjectID] += d.Amount
	m.donors[d.UserID] += d.Amount
	return &domain.LedgerBalance{DonatedTotal: row.Amount, RaisedAmount: m.raised[d.ProjectID]}, nil
}

func (m *memLedger) ApplyRefund(_ context.Context, userID, projectID int64, amount float64) (*domain.LedgerBalance, error) {
	if m.applyErr != nil {
		return nil, m.applyErr
	}
	var total float64
	row, ok := m.donations[donationKey{userID, projectID}]
	if ok {
		total = row.Amount
	}
	if amount > total {
		return nil, domain.ErrRefundExceedsDonation
	}
	row.Amount -= amount
	m.raised[projectID] -= amount
	m.donors[userID] -= amount
	return &domain.LedgerBalance{DonatedTotal: row.Amount, RaisedAmount: m.raised[projectID]}, nil
}

func (m *memLedger) ListByProject(_ context.Context, projectID int64) ([]domain.Donation, error) {
	var out []domain.Donation
	for k, d := range m.donations {
		if k.project == projectID {
			out = append(out, *d)
		}
	}
	return out, nil
}

type stubIdem struct {
	seen     map[string]ClaimStatus
	claimErr error
	released []string
}

func (s *stubIdem) Claim(_ context.Context, _ int64, key string) (ClaimStatus, error) {
	if s.claimErr != nil {
		return 0, s.claimErr
	}
	if s.seen == nil {
		s.seen = map[string]ClaimStatus{}
	}
	if status, ok := s.seen[key]; ok {
		return status, nil
	}
	s.seen[key] = ClaimInFlight
	return ClaimAcquired, nil
}

func (s *stubIdem) Complete(_ context.Context, _ int64, key string) error {
	s.seen[key] = ClaimCompleted
	return nil
}

func (s *stubIdem) Release(_ context.Context, _ int64, key string) error {
	delete(s.seen, key)
	s.released = append(s.released, key)
	return nil
}

type stubAudit struct {
	entries []domain.LedgerEntry
}

func (a *stubAudit) Record(e domain.LedgerEntry) { a.entries = append(a.entries, e) }

type stubEntryRepo struct {
	entries []domain.LedgerEntry
	limit   int64
}

func (r *stubEntryRepo) Insert(_ context.Context, e *domain.LedgerEntry) error {
	r.entries = append(r.entries, *e)
	return nil
}

func (r *stubEntryRepo) ListByProject(_ context.Context, projectID, limit int64) ([]domain.LedgerEntry, error) {
	r.limit = limit
	var out []domain.LedgerEntry
	for _, e := range r.entries {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Helper: user 1 and project 10 exist, project starts at zero raised.
// ---------------------------------------------------------------------------

func seededLedger() *memLedger {
	m := newMemLedger()
	m.users[1] = true
	m.raised[10] = 0
	return m
}

func donate(t *testing.T, svc ports.LedgerService, amount float64) *ports.DonationResult {
	t.Helper()
	res, err := svc.Donate(context.Background(), ports.DonateInput{
		UserID: 1, ProjectID: 10, Amount: amount, PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("donate %.2f: %v", amount, err)
	}
	return res
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestLedgerService_Donate_Accumulates(t *testing.T) {
	repo := seededLedger()
	audit := &stubAudit{}
	svc := NewLedgerService(repo, nil, nil, audit, nopLogger())

	donate(t, svc, 50)
	res := donate(t, svc, 30)

	if res.Balance.DonatedTotal != 80 || res.Balance.RaisedAmount != 80 {
		t.Fatalf("expected 80/80, got %+v", res.Balance)
	}
	if repo.donors[1] != 80 {
		t.Errorf("expected total donations 80, got %v", repo.donors[1])
	}
	if len(repo.donations) != 1 {
		t.Errorf("expected one donation row per pair, got %d", len(repo.donations))
	}
	if len(audit.entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(audit.entries))
	}
	if audit.entries[1].ID == "" || audit.entries[1].RecordedAt.IsZero() {
		t.Errorf("audit entry missing id or timestamp: %+v", audit.entries[1])
	}
	if audit.entries[1].RaisedAfter != 80 {
		t.Errorf("expected raised_after 80, got %v", audit.entries[1].RaisedAfter)
	}
}

func TestLedgerService_Donate_OverwritesPaymentMethod(t *testing.T) {
	repo := seededLedger()
	svc := NewLedgerService(repo, nil, nil, nil, nopLogger())

	donate(t, svc, 10)
	if _, err := svc.Donate(context.Background(), ports.DonateInput{
		UserID: 1, ProjectID: 10, Amount: 5, PaymentMethod: "paypal",
	}); err != nil {
		t.Fatalf("donate: %v", err)
	}

	if got := repo.donations[donationKey{1, 10}].PaymentMethod; got != "paypal" {
		t.Errorf("expected last payment method to win, got %q", got)
	}
}

func TestLedgerService_Donate_Validation(t *testing.T) {
	repo := seededLedger()
	svc := NewLedgerService(repo, nil, nil, nil, nopLogger())

	cases := []ports.DonateInput{
		{UserID: 1, ProjectID: 10, Amount: 0, PaymentMethod: "card"},
		{UserID: 1, ProjectID: 10, Amount: -5, PaymentMethod: "card"},
		{UserID: 1, ProjectID: 10, Amount: 5, PaymentMethod: "  "},
		{UserID: 1, ProjectID: 0, Amount: 5, PaymentMethod: "card"},
	}
	for _, in := range cases {
		if _, err := svc.Donate(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%+v: expected ErrValidation, got %v", in, err)
		}
	}
	if repo.raised[10] != 0 {
		t.Errorf("expected no balance change, got %v", repo.raised[10])
	}
}

func TestLedgerService_Donate_UnknownProjectOrUser(t *testing.T) {
	repo := seededLedger()
	svc := NewLedgerService(repo, nil, nil, nil, nopLogger())

	_, err := svc.Donate(context.Background(), ports.DonateInput{UserID: 1, ProjectID: 99, Amount: 5, PaymentMethod: "card"})
	if !errors.Is(err, domain.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}

	_, err = svc.Donate(context.Background(), ports.DonateInput{UserID: 7, ProjectID: 10, Amount: 5, PaymentMethod: "card"})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestLedgerService_Donate_StorageFailureIsLedgerError(t *testing.T) {
	repo := seededLedger()
	repo.applyErr = errors.New("connection reset")
	idem := &stubIdem{}
	svc := NewLedgerService(repo, nil, idem, nil, nopLogger())

	_, err := svc.Donate(context.Background(), ports.DonateInput{
		UserID: 1, ProjectID: 10, Amount: 5, PaymentMethod: "card", IdempotencyKey: "k1",
	})
	if !errors.Is(err, domain.ErrLedgerProcessing) {
		t.Fatalf("expected ErrLedgerProcessing, got %v", err)
	}
	if len(idem.released) != 1 || idem.released[0] != "k1" {
		t.Errorf("expected idempotency key released after failure, got %v", idem.released)
	}
}

func TestLedgerService_Donate_ReplaySkipped(t *testing.T) {
	repo := seededLedger()
	idem := &stubIdem{}
	audit := &stubAudit{}
	svc := NewLedgerService(repo, nil, idem, audit, nopLogger())

	in := ports.DonateInput{UserID: 1, ProjectID: 10, Amount: 25, PaymentMethod: "card", IdempotencyKey: "abc"}
	if _, err := svc.Donate(context.Background(), in); err != nil {
		t.Fatalf("first donate: %v", err)
	}
	res, err := svc.Donate(context.Background(), in)
	if err != nil {
		t.Fatalf("replay donate: %v", err)
	}

	if !res.Replayed {
		t.Errorf("expected replay to be reported")
	}
	if repo.raised[10] != 25 {
		t.Errorf("expected raised 25 after replay, got %v", repo.raised[10])
	}
	if len(audit.entries) != 1 {
		t.Errorf("expected a single audit entry, got %d", len(audit.entries))
	}
}

func TestLedgerService_Donate_InFlightDuplicateConflicts(t *testing.T) {
	repo := seededLedger()
	idem := &stubIdem{seen: map[string]ClaimStatus{"abc": ClaimInFlight}}
	svc := NewLedgerService(repo, nil, idem, nil, nopLogger())

	in := ports.DonateInput{UserID: 1, ProjectID: 10, Amount: 25, PaymentMethod: "card", IdempotencyKey: "abc"}
	_, err := svc.Donate(context.Background(), in)
	if !errors.Is(err, domain.ErrDonationInProgress) {
		t.Fatalf("expected ErrDonationInProgress, got %v", err)
	}
	if repo.raised[10] != 0 {
		t.Errorf("expected nothing applied, got raised=%v", repo.raised[10])
	}
	if len(idem.released) != 0 {
		t.Errorf("duplicate must not release the first request's key, got %v", idem.released)
	}
}

func TestLedgerService_Donate_RetryAfterFailureIsApplied(t *testing.T) {
	repo := seededLedger()
	repo.applyErr = errors.New("connection reset")
	idem := &stubIdem{}
	svc := NewLedgerService(repo, nil, idem, nil, nopLogger())

	in := ports.DonateInput{UserID: 1, ProjectID: 10, Amount: 5, PaymentMethod: "card", IdempotencyKey: "k1"}
	if _, err := svc.Donate(context.Background(), in); !errors.Is(err, domain.ErrLedgerProcessing) {
		t.Fatalf("expected ErrLedgerProcessing, got %v", err)
	}

	repo.applyErr = nil
	res, err := svc.Donate(context.Background(), in)
	if err != nil {
		t.Fatalf("retry donate: %v", err)
	}
	if res.Replayed || repo.raised[10] != 5 {
		t.Errorf("expected retry applied, got %+v raised=%v", res, repo.raised[10])
	}
	if idem.seen["k1"] != ClaimCompleted {
		t.Errorf("expected key marked completed, got %v", idem.seen["k1"])
	}
}

func TestLedgerService_Donate_IdempotencyErrorProcessesAnyway(t *testing.T) {
	repo := seededLedger()
	idem := &stubIdem{claimErr: errors.New("redis timeout")}
	svc := NewLedgerService(repo, nil, idem, nil, nopLogger())

	res, err := svc.Donate(context.Background(), ports.DonateInput{
		UserID: 1, ProjectID: 10, Amount: 5, PaymentMethod: "card", IdempotencyKey: "k",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Replayed || repo.raised[10] != 5 {
		t.Errorf("expected donation applied, got %+v raised=%v", res, repo.raised[10])
	}
}

func TestLedgerService_Refund(t *testing.T) {
	repo := seededLedger()
	audit := &stubAudit{}
	svc := NewLedgerService(repo, nil, nil, audit, nopLogger())

	donate(t, svc, 50)
	donate(t, svc, 30)

	bal, err := svc.Refund(context.Background(), ports.RefundInput{UserID: 1, ProjectID: 10, Amount: 20})
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if bal.DonatedTotal != 60 || bal.RaisedAmount != 60 {
		t.Fatalf("expected 60/60, got %+v", bal)
	}
	if repo.donors[1] != 60 {
		t.Errorf("expected total donations 60, got %v", repo.donors[1])
	}

	last := audit.entries[len(audit.entries)-1]
	if last.Kind != domain.EntryRefund || last.Amount != -20 {
		t.Errorf("expected refund entry of -20, got %+v", last)
	}
}

func TestLedgerService_Refund_ExceedsDonation(t *testing.T) {
	repo := seededLedger()
	svc := NewLedgerService(repo, nil, nil, nil, nopLogger())

	donate(t, svc, 60)

	_, err := svc.Refund(context.Background(), ports.RefundInput{UserID: 1, ProjectID: 10, Amount: 100})
	if !errors.Is(err, domain.ErrRefundExceedsDonation) {
		t.Fatalf("expected ErrRefundExceedsDonation, got %v", err)
	}
	if repo.raised[10] != 60 || repo.donations[donationKey{1, 10}].Amount != 60 {
		t.Errorf("expected balances unchanged at 60, got raised=%v", repo.raised[10])
	}
}

func TestLedgerService_Refund_WithoutDonation(t *testing.T) {
	svc := NewLedgerService(seededLedger(), nil, nil, nil, nopLogger())

	_, err := svc.Refund(context.Background(), ports.RefundInput{UserID: 1, ProjectID: 10, Amount: 1})
	if !errors.Is(err, domain.ErrRefundExceedsDonation) {
		t.Fatalf("expected ErrRefundExceedsDonation, got %v", err)
	}
}

func TestLedgerService_Refund_ExactTotalLeavesZero(t *testing.T) {
	repo := seededLedger()
	svc := NewLedgerService(repo, nil, nil, nil, nopLogger())
	donate(t, svc, 40)

	bal, err := svc.Refund(context.Background(), ports.RefundInput{UserID: 1, ProjectID: 10, Amount: 40})
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if bal.DonatedTotal != 0 || bal.RaisedAmount != 0 {
		t.Errorf("expected zero balances, got %+v", bal)
	}
}

func TestLedgerService_Refund_NonPositive(t *testing.T) {
	svc := NewLedgerService(seededLedger(), nil, nil, nil, nopLogger())

	for _, amt := range []float64{0, -3} {
		_, err := svc.Refund(context.Background(), ports.RefundInput{UserID: 1, ProjectID: 10, Amount: amt})
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("amount %v: expected ErrInvalidAmount, got %v", amt, err)
		}
	}
}

func TestLedgerService_History(t *testing.T) {
	entries := &stubEntryRepo{entries: []domain.LedgerEntry{
		{ID: "a", ProjectID: 10, Amount: 5},
		{ID: "b", ProjectID: 11, Amount: 7},
	}}
	svc := NewLedgerService(seededLedger(), entries, nil, nil, nopLogger())

	got, err := svc.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("unexpected entries: %+v", got)
	}
	if entries.limit != ports.HistoryLimit {
		t.Errorf("expected limit %d, got %d", ports.HistoryLimit, entries.limit)
	}

	disabled := NewLedgerService(seededLedger(), nil, nil, nil, nopLogger())
	got, err = disabled.History(context.Background(), 10)
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("expected empty history when audit store disabled, got %v, %v", got, err)
	}
}
