package handler

import (
	"net/http"

	"github.com/bingoo/platform/internal/service"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles point purchases.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Deposit handles POST /payments/deposit.
func (h *PaymentHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	id, err := Identity(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var req depositRequest
	if err := DecodeBody(r, &req); err != nil {
		RespondError(w, err)
		return
	}

	session, err := h.payments.CreateDeposit(r.Context(), id, req.Amount)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, session)
}

// Capture handles POST /payments/{id}/capture after the buyer approved the order.
func (h *PaymentHandler) Capture(w http.ResponseWriter, r *http.Request) {
	id, err := Identity(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	txID, err := URLUUID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.payments.CaptureDeposit(r.Context(), id, txID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"transaction": result.Transaction,
		"points":      result.User.Points,
		"balance":     result.User.Balance,
	})
}
