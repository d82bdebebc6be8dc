package admin

import (
	"net/http"
	"strconv"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/handler"
	"github.com/bingoo/platform/internal/service"
)

// FraudAdminHandler lists and reviews fraud alerts.
type FraudAdminHandler struct {
	fraud *service.FraudDetector
}

// NewFraudAdminHandler creates a new FraudAdminHandler.
func NewFraudAdminHandler(fraud *service.FraudDetector) *FraudAdminHandler {
	return &FraudAdminHandler{fraud: fraud}
}

// ListAlerts handles GET /admin/fraud/alerts?reviewed=false.
func (h *FraudAdminHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var reviewed *bool
	if raw := r.URL.Query().Get("reviewed"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			handler.RespondError(w, domain.ErrValidation("reviewed must be true or false"))
			return
		}
		reviewed = &b
	}

	alerts, err := h.fraud.ListAlerts(r.Context(), id, reviewed, handler.QueryLimit(r, 100, 500))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	if alerts == nil {
		alerts = []domain.FraudAlert{}
	}
	handler.RespondJSON(w, http.StatusOK, alerts)
}

// ReviewAlert handles POST /admin/fraud/alerts/{id}/review.
func (h *FraudAdminHandler) ReviewAlert(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	alertID, err := handler.URLUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	a, err := h.fraud.Review(r.Context(), id, alertID)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, a)
}
