package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bingoo/platform/internal/auth"
	"github.com/bingoo/platform/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// RespondJSON writes a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// RespondError writes a JSON error response, detecting domain.AppError for status codes.
func RespondError(w http.ResponseWriter, err error) {
	if appErr := domain.AsAppError(err); appErr != nil {
		RespondJSON(w, appErr.Status, map[string]string{
			"code":    appErr.Code,
			"message": appErr.Message,
		})
		return
	}
	RespondJSON(w, http.StatusInternalServerError, map[string]string{
		"code":    domain.CodeInternal,
		"message": "internal server error",
	})
}

// DecodeJSON reads and decodes a JSON request body (at most 1 MiB) into dst.
func DecodeJSON(r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// DecodeBody is DecodeJSON with the error already mapped to VALIDATION_ERROR.
func DecodeBody(r *http.Request, dst interface{}) error {
	if err := DecodeJSON(r, dst); err != nil {
		return domain.ErrValidation("invalid request body")
	}
	return nil
}

// Identity returns the authenticated caller set by the auth middleware.
func Identity(r *http.Request) (domain.Identity, error) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return domain.Identity{}, domain.ErrUnauthorized("no auth context")
	}
	return id, nil
}

// URLUUID parses a UUID path parameter.
func URLUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid " + name)
	}
	return id, nil
}

// QueryLimit reads ?limit, falling back to def when missing or out of (0, max].
func QueryLimit(r *http.Request, def, max int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= max {
		return n
	}
	return def
}

// QueryUUID parses an optional UUID query parameter.
func QueryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.ErrValidation("invalid " + name)
	}
	return &id, nil
}
