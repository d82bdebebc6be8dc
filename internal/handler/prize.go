package handler

import (
	"net/http"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/service"
)

// PrizeHandler serves the player prize catalog.
type PrizeHandler struct {
	prizes *service.PrizeService
}

// NewPrizeHandler creates a new PrizeHandler.
func NewPrizeHandler(prizes *service.PrizeService) *PrizeHandler {
	return &PrizeHandler{prizes: prizes}
}

// List handles GET /prizes?category=FOOD.
func (h *PrizeHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := Identity(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	category := domain.PrizeCategory(r.URL.Query().Get("category"))
	prizes, err := h.prizes.ListForUser(r.Context(), id, category)
	if err != nil {
		RespondError(w, err)
		return
	}
	if prizes == nil {
		prizes = []domain.Prize{}
	}
	RespondJSON(w, http.StatusOK, prizes)
}

type claimResponse struct {
	History     *domain.GameHistory `json:"history"`
	Transaction *domain.Transaction `json:"transaction"`
	Prize       *domain.Prize       `json:"prize"`
	Points      int64               `json:"points"`
}

// Claim handles POST /prizes/{id}/claim.
func (h *PrizeHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := Identity(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	prizeID, err := URLUUID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.prizes.Claim(r.Context(), id, prizeID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, claimResponse{
		History:     result.History,
		Transaction: result.Transaction,
		Prize:       result.Prize,
		Points:      result.User.Points,
	})
}
