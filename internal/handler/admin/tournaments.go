package admin

import (
	"net/http"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/handler"
	"github.com/bingoo/platform/internal/service"
)

// TournamentAdminHandler manages tournaments.
type TournamentAdminHandler struct {
	tournaments *service.TournamentService
}

// NewTournamentAdminHandler creates a new TournamentAdminHandler.
func NewTournamentAdminHandler(tournaments *service.TournamentService) *TournamentAdminHandler {
	return &TournamentAdminHandler{tournaments: tournaments}
}

// CreateTournament handles POST /admin/tournaments.
func (h *TournamentAdminHandler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var in domain.TournamentInput
	if err := handler.DecodeBody(r, &in); err != nil {
		handler.RespondError(w, err)
		return
	}

	t, err := h.tournaments.Create(r.Context(), id, in)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, t)
}

// UpdateTournamentStatus handles PATCH /admin/tournaments/{id}/status.
func (h *TournamentAdminHandler) UpdateTournamentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	tournamentID, err := handler.URLUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var req struct {
		Status domain.TournamentStatus `json:"status"`
	}
	if err := handler.DecodeBody(r, &req); err != nil {
		handler.RespondError(w, err)
		return
	}

	t, err := h.tournaments.UpdateStatus(r.Context(), id, tournamentID, req.Status)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, t)
}

// ListParticipants handles GET /admin/tournaments/{id}/participants.
func (h *TournamentAdminHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	tournamentID, err := handler.URLUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	items, err := h.tournaments.Participants(r.Context(), id, tournamentID)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	if items == nil {
		items = []domain.TournamentParticipant{}
	}
	handler.RespondJSON(w, http.StatusOK, items)
}

// SetScore handles PUT /admin/tournaments/{id}/participants/{userID}/score.
func (h *TournamentAdminHandler) SetScore(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	tournamentID, err := handler.URLUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	userID, err := handler.URLUUID(r, "userID")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var req struct {
		Score int64 `json:"score"`
	}
	if err := handler.DecodeBody(r, &req); err != nil {
		handler.RespondError(w, err)
		return
	}

	p, err := h.tournaments.SetScore(r.Context(), id, tournamentID, userID, req.Score)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, p)
}
