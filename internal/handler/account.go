package handler

import (
	"net/http"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/service"
)

// AccountHandler serves the caller's profile and wallet.
type AccountHandler struct {
	users *service.UserService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(users *service.UserService) *AccountHandler {
	return &AccountHandler{users: users}
}

// GetMe handles GET /me.
func (h *AccountHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	id, err := Identity(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	u, err := h.users.Me(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, u)
}

// GetRegion handles GET /me/region.
func (h *AccountHandler) GetRegion(w http.ResponseWriter, r *http.Request) {
	id, err := Identity(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	region, err := h.users.Region(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, region)
}

// GetPoints handles GET /wallet/points.
func (h *AccountHandler) GetPoints(w http.ResponseWriter, r *http.Request) {
	id, err := Identity(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	view, err := h.users.Points(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, view)
}

// txListResponse wraps a list of transactions with cursor.
type txListResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
	NextCursor   *string              `json:"next_cursor,omitempty"`
}

// GetTransactions handles GET /wallet/transactions with cursor-based pagination.
func (h *AccountHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := Identity(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	cursor, err := QueryUUID(r, "cursor")
	if err != nil {
		RespondError(w, err)
		return
	}
	limit := QueryLimit(r, 20, 99)

	txs, err := h.users.Transactions(r.Context(), id, cursor, limit+1)
	if err != nil {
		RespondError(w, err)
		return
	}

	resp := txListResponse{Transactions: txs}
	if resp.Transactions == nil {
		resp.Transactions = []domain.Transaction{}
	}
	if len(txs) > limit {
		resp.Transactions = txs[:limit]
		next := txs[limit-1].ID.String()
		resp.NextCursor = &next
	}
	RespondJSON(w, http.StatusOK, resp)
}
