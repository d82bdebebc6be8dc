package admin

import (
	"net/http"
	"strconv"

	"github.com/bingoo/platform/internal/domain"
	"github.com/bingoo/platform/internal/handler"
	"github.com/bingoo/platform/internal/service"
)

// UserAdminHandler handles admin user management.
type UserAdminHandler struct {
	users *service.UserService
}

// NewUserAdminHandler creates a new UserAdminHandler.
func NewUserAdminHandler(users *service.UserService) *UserAdminHandler {
	return &UserAdminHandler{users: users}
}

// SearchUsers handles GET /admin/users?q=&role=&status=&limit=&offset=.
func (h *UserAdminHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	filter := domain.UserFilter{
		Query:  q.Get("q"),
		Role:   domain.Role(q.Get("role")),
		Status: domain.UserStatus(q.Get("status")),
		Limit:  handler.QueryLimit(r, 50, 200),
		Offset: max(offset, 0),
	}

	users, err := h.users.List(r.Context(), id, filter)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	handler.RespondJSON(w, http.StatusOK, users)
}

// GetUserDetail handles GET /admin/users/{id}.
func (h *UserAdminHandler) GetUserDetail(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	userID, err := handler.URLUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	u, err := h.users.Get(r.Context(), id, userID)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, u)
}

// UpdateUserStatus handles PATCH /admin/users/{id}/status.
func (h *UserAdminHandler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	userID, err := handler.URLUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var req struct {
		Status domain.UserStatus `json:"status"`
	}
	if err := handler.DecodeBody(r, &req); err != nil {
		handler.RespondError(w, err)
		return
	}

	u, err := h.users.SetStatus(r.Context(), id, userID, req.Status)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, u)
}

// UpdateUserRole handles PATCH /admin/users/{id}/role.
func (h *UserAdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	userID, err := handler.URLUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var req struct {
		Role domain.Role `json:"role"`
	}
	if err := handler.DecodeBody(r, &req); err != nil {
		handler.RespondError(w, err)
		return
	}

	u, err := h.users.SetRole(r.Context(), id, userID, req.Role)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, u)
}

// AdjustPoints handles POST /admin/users/{id}/points.
func (h *UserAdminHandler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	id, err := handler.Identity(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	userID, err := handler.URLUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var req struct {
		Delta  int64  `json:"delta"`
		Reason string `json:"reason"`
	}
	if err := handler.DecodeBody(r, &req); err != nil {
		handler.RespondError(w, err)
		return
	}

	result, err := h.users.AdjustPoints(r.Context(), id, userID, req.Delta, req.Reason)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"transaction": result.Transaction,
		"points":      result.User.Points,
	})
}
