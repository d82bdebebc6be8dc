package admin

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/bingoo/platform/internal/handler"
	"github.com/bingoo/platform/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportsHandler handles admin report generation.
type ReportsHandler struct {
	stats *service.StatsService
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(stats *service.StatsService) *ReportsHandler {
	return &ReportsHandler{stats: stats}
}

// GetDashboardStats handles GET /admin/reports/dashboard.
func (h *ReportsHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	d, err := h.stats.Dashboard(r.Context(), id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, d)
}

// GetDailyStats handles GET /admin/reports/daily?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *ReportsHandler) GetDailyStats(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	series, err := h.stats.Daily(r.Context(), id, q.Get("from"), q.Get("to"))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, series)
}

// ExportDailyStats handles GET /admin/reports/daily.xlsx.
func (h *ReportsHandler) ExportDailyStats(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	var buf bytes.Buffer
	if err := h.stats.ExportDailyXLSX(r.Context(), id, q.Get("from"), q.Get("to"), &buf); err != nil {
		handler.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="daily-stats.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
