package admin

import (
	"net/http"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/handler"
	"github.com/bingoo/platform/internal/service"
)

// TransactionAdminHandler browses the ledger and settles or refunds deposits.
type TransactionAdminHandler struct {
	users    *service.UserService
	payments *service.PaymentService
}

// NewTransactionAdminHandler creates a new TransactionAdminHandler.
func NewTransactionAdminHandler(users *service.UserService, payments *service.PaymentService) *TransactionAdminHandler {
	return &TransactionAdminHandler{users: users, payments: payments}
}

// ListTransactions handles GET /admin/transactions?user_id=&type=&status=&cursor=&limit=.
func (h *TransactionAdminHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	userID, err := handler.QueryUUID(r, "user_id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	cursor, err := handler.QueryUUID(r, "cursor")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	filter := domain.TransactionFilter{
		UserID: userID,
		Type:   domain.TransactionType(q.Get("type")),
		Status: domain.TransactionStatus(q.Get("status")),
		Cursor: cursor,
		Limit:  handler.QueryLimit(r, 50, 100),
	}

	txs, err := h.users.SearchTransactions(r.Context(), id, filter)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	handler.RespondJSON(w, http.StatusOK, txs)
}

// GetTransaction handles GET /admin/transactions/{id}.
func (h *TransactionAdminHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	txID, err := handler.URLUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	t, err := h.users.Transaction(r.Context(), id, txID)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, t)
}

// UpdateTransactionStatus handles PATCH /admin/transactions/{id}/status.
// Only PENDING deposits can move, to COMPLETED or FAILED.
func (h *TransactionAdminHandler) UpdateTransactionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	txID, err := handler.URLUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var req struct {
		Status domain.TransactionStatus `json:"status"`
	}
	if err := handler.DecodeBody(r, &req); err != nil {
		handler.RespondError(w, err)
		return
	}

	result, err := h.payments.SettleManually(r.Context(), id, txID, req.Status)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, result.Transaction)
}

// RefundTransaction handles POST /admin/transactions/{id}/refund.
func (h *TransactionAdminHandler) RefundTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	txID, err := handler.URLUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := handler.DecodeBody(r, &req); err != nil {
		handler.RespondError(w, err)
		return
	}

	result, err := h.payments.Refund(r.Context(), id, txID, req.Reason)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, result.Transaction)
}
