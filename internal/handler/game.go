package handler

import (
	"net/http"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/service"
)

// GameHandler serves the game catalog, plays and history.
type GameHandler struct {
	games *service.GameService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(games *service.GameService) *GameHandler {
	return &GameHandler{games: games}
}

// List handles GET /games.
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.games.ListGames(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	if games == nil {
		games = []domain.Game{}
	}
	RespondJSON(w, http.StatusOK, games)
}

type playRequest struct {
	Won bool `json:"won"`
}

type playResponse struct {
	History     *domain.GameHistory `json:"history"`
	Transaction *domain.Transaction `json:"transaction"`
	Points      int64               `json:"points"`
}

// Play handles POST /games/{id}/play.
func (h *GameHandler) Play(w http.ResponseWriter, r *http.Request) {
	id, err := Identity(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	gameID, err := URLUUID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var req playRequest
	if err := DecodeBody(r, &req); err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.games.Play(r.Context(), id, gameID, req.Won)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, playResponse{
		History:     result.History,
		Transaction: result.Transaction,
		Points:      result.User.Points,
	})
}

// History handles GET /history.
func (h *GameHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := Identity(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	items, err := h.games.History(r.Context(), id, QueryLimit(r, 50, 200))
	if err != nil {
		RespondError(w, err)
		return
	}
	if items == nil {
		items = []domain.GameHistory{}
	}
	RespondJSON(w, http.StatusOK, items)
}
