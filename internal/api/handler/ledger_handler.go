package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/SakutaArc/QuickFund/internal/api/metrics"
	"github.com/SakutaArc/QuickFund/internal/core/domain"
	"github.com/SakutaArc/QuickFund/internal/core/ports"
)

// LedgerHandler serves donations, refunds and the audit history.
type LedgerHandler struct {
	service ports.LedgerService
}

func NewLedgerHandler(service ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// Donate handles POST /donations.
//
// @Summary      Donate to a project
// @Description  Repeated donations to the same project accumulate into one record.
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string         false  "Replays with the same key within 24h are not applied twice"
// @Param        body             body      donateRequest  true   "Donation"
// @Success      201              {object}  balanceResponse
// @Success      200              {object}  messageResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Router       /donations [post]
func (h *LedgerHandler) Donate(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.LedgerDuration.WithLabelValues("donate"))
	defer timer.ObserveDuration()

	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req donateRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.LedgerFailuresTotal.WithLabelValues("donate", "validation").Inc()
		return err
	}

	res, err := h.service.Donate(c.Request().Context(), ports.DonateInput{
		UserID:         userID,
		ProjectID:      req.ProjectID,
		Amount:         req.Amount,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		metrics.LedgerFailuresTotal.WithLabelValues("donate", failureReason(err)).Inc()
		return err
	}

	if res.Replayed {
		metrics.DonationReplaysTotal.Inc()
		return c.JSON(http.StatusOK, messageResponse{Message: "donation already processed"})
	}

	metrics.DonationsTotal.Inc()
	metrics.DonationAmountTotal.Add(req.Amount)
	return c.JSON(http.StatusCreated, balanceResponse{
		Message: "Donation successful!",
		Donated: res.Balance.DonatedTotal,
		Raised:  res.Balance.RaisedAmount,
	})
}

// Refund handles POST /refunds/:projectId.
//
// @Summary      Refund part of a donation
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      int            true  "Project id"
// @Param        body       body      refundRequest  true  "Refund"
// @Success      200        {object}  balanceResponse
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Failure      422        {object}  errorResponse
// @Failure      500        {object}  errorResponse
// @Router       /refunds/{projectId} [post]
func (h *LedgerHandler) Refund(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.LedgerDuration.WithLabelValues("refund"))
	defer timer.ObserveDuration()

	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, "projectId")
	if err != nil {
		return err
	}

	var req refundRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.LedgerFailuresTotal.WithLabelValues("refund", "validation").Inc()
		return err
	}

	bal, err := h.service.Refund(c.Request().Context(), ports.RefundInput{
		UserID:    userID,
		ProjectID: projectID,
		Amount:    req.Amount,
	})
	if err != nil {
		metrics.LedgerFailuresTotal.WithLabelValues("refund", failureReason(err)).Inc()
		return err
	}

	metrics.RefundsTotal.Inc()
	metrics.RefundAmountTotal.Add(req.Amount)
	return c.JSON(http.StatusOK, balanceResponse{
		Message: "Refund processed successfully",
		Donated: bal.DonatedTotal,
		Raised:  bal.RaisedAmount,
	})
}

// ListDonations handles GET /donations/:projectId.
//
// @Summary      Donations to a project, largest first
// @Tags         ledger
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      int  true  "Project id"
// @Success      200        {array}   donationResponse
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Router       /donations/{projectId} [get]
func (h *LedgerHandler) ListDonations(c echo.Context) error {
	projectID, err := pathID(c, "projectId")
	if err != nil {
		return err
	}

	donations, err := h.service.ListDonations(c.Request().Context(), projectID)
	if err != nil {
		return err
	}

	out := make([]donationResponse, 0, len(donations))
	for _, d := range donations {
		out = append(out, donationResponse{UserID: d.UserID, Amount: d.Amount, PaymentMethod: d.PaymentMethod})
	}
	return c.JSON(http.StatusOK, out)
}

// History handles GET /ledger/:projectId.
//
// @Summary      Audit trail of a project's donations and refunds
// @Tags         ledger
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      int  true  "Project id"
// @Success      200        {array}   ledgerEntryResponse
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Router       /ledger/{projectId} [get]
func (h *LedgerHandler) History(c echo.Context) error {
	projectID, err := pathID(c, "projectId")
	if err != nil {
		return err
	}

	entries, err := h.service.History(c.Request().Context(), projectID)
	if err != nil {
		return err
	}

	out := make([]ledgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ledgerEntryResponse{
			ID:            e.ID,
			Kind:          string(e.Kind),
			UserID:        e.UserID,
			Amount:        e.Amount,
			PaymentMethod: e.PaymentMethod,
			RaisedAfter:   e.RaisedAfter,
			RecordedAt:    formatTimestamp(e.RecordedAt),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// failureReason labels a ledger error for metrics.
func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrProjectNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrRefundExceedsDonation):
		return "exceeds_donation"
	case errors.Is(err, domain.ErrDonationInProgress):
		return "in_flight"
	default:
		return "processing"
	}
}
