package admin

import (
	"net/http"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/handler"
	"github.com/bingoo/platform/internal/service"
)

// PrizeAdminHandler manages the prize catalog.
type PrizeAdminHandler struct {
	prizes *service.PrizeService
}

// NewPrizeAdminHandler creates a new PrizeAdminHandler.
func NewPrizeAdminHandler(prizes *service.PrizeService) *PrizeAdminHandler {
	return &PrizeAdminHandler{prizes: prizes}
}

// ListPrizes handles GET /admin/prizes?region=&category=&available=true.
func (h *PrizeAdminHandler) ListPrizes(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	filter := domain.PrizeFilter{
		Region:        q.Get("region"),
		Category:      domain.PrizeCategory(q.Get("category")),
		AvailableOnly: q.Get("available") == "true",
		Limit:         handler.QueryLimit(r, 100, 500),
	}

	prizes, err := h.prizes.AdminList(r.Context(), id, filter)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	if prizes == nil {
		prizes = []domain.Prize{}
	}
	handler.RespondJSON(w, http.StatusOK, prizes)
}

// CreatePrize handles POST /admin/prizes.
func (h *PrizeAdminHandler) CreatePrize(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var in domain.PrizeInput
	if err := handler.DecodeBody(r, &in); err != nil {
		handler.RespondError(w, err)
		return
	}

	p, err := h.prizes.Create(r.Context(), id, in)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, p)
}

// UpdatePrize handles PUT /admin/prizes/{id}.
func (h *PrizeAdminHandler) UpdatePrize(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	prizeID, err := handler.URLUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var in domain.PrizeInput
	if err := handler.DecodeBody(r, &in); err != nil {
		handler.RespondError(w, err)
		return
	}

	p, err := h.prizes.Update(r.Context(), id, prizeID, in)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, p)
}

// TogglePrize handles PATCH /admin/prizes/{id}/active.
func (h *PrizeAdminHandler) TogglePrize(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	prizeID, err := handler.URLUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := handler.DecodeBody(r, &req); err != nil {
		handler.RespondError(w, err)
		return
	}

	p, err := h.prizes.SetActive(r.Context(), id, prizeID, req.Active)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, p)
}

// RestockPrize handles POST /admin/prizes/{id}/restock.
func (h *PrizeAdminHandler) RestockPrize(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	prizeID, err := handler.URLUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := handler.DecodeBody(r, &req); err != nil {
		handler.RespondError(w, err)
		return
	}

	p, err := h.prizes.Restock(r.Context(), id, prizeID, req.Quantity)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, p)
}
