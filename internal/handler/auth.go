package handler

import (
	"net/http"

	"github.com/bingoo/platform/internal/service"
)

// AuthHandler handles registration and login endpoints.
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := DecodeBody(r, &input); err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.authSvc.Register(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, result)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := DecodeBody(r, &input); err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.authSvc.Login(r.Context(), input, ClientIP(r))
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, result)
}

// AdminLogin handles POST /auth/admin/login and issues an admin-realm token.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := DecodeBody(r, &input); err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.authSvc.AdminLogin(r.Context(), input, ClientIP(r))
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, result)
}
