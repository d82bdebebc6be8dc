package handler

import (
	"net/http"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/service"
)

// TournamentHandler serves tournament listing, enrollment and leaderboards.
type TournamentHandler struct {
	tournaments *service.TournamentService
}

// NewTournamentHandler creates a new TournamentHandler.
func NewTournamentHandler(tournaments *service.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournaments: tournaments}
}

// List handles GET /tournaments?status=REGISTERING.
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.TournamentStatus(r.URL.Query().Get("status"))
	items, err := h.tournaments.List(r.Context(), status)
	if err != nil {
		RespondError(w, err)
		return
	}
	if items == nil {
		items = []domain.Tournament{}
	}
	RespondJSON(w, http.StatusOK, items)
}

// Get handles GET /tournaments/{id}.
func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := URLUUID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	t, err := h.tournaments.Get(r.Context(), tournamentID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, t)
}

type joinResponse struct {
	Participant *domain.TournamentParticipant `json:"participant"`
	Tournament  *domain.Tournament            `json:"tournament"`
	Transaction *domain.Transaction           `json:"transaction,omitempty"`
	Points      int64                         `json:"points"`
}

// Join handles POST /tournaments/{id}/join.
func (h *TournamentHandler) Join(w http.ResponseWriter, r *http.Request) {
	id, err := Identity(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	tournamentID, err := URLUUID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.tournaments.Join(r.Context(), id, tournamentID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, joinResponse{
		Participant: result.Participant,
		Tournament:  result.Tournament,
		Transaction: result.Transaction,
		Points:      result.User.Points,
	})
}

// Leaderboard handles GET /tournaments/{id}/leaderboard.
func (h *TournamentHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := URLUUID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	items, err := h.tournaments.Leaderboard(r.Context(), tournamentID, QueryLimit(r, 50, 500))
	if err != nil {
		RespondError(w, err)
		return
	}
	if items == nil {
		items = []domain.TournamentParticipant{}
	}
	RespondJSON(w, http.StatusOK, items)
}
