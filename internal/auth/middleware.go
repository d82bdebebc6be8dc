package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/bingoo/platform/internal/domain"
)

type contextKey string

const (
	claimsKey   contextKey = "auth_claims"
	identityKey contextKey = "auth_identity"
)

// ClaimsFromContext extracts JWT claims from request context.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// IdentityFromContext returns the authenticated caller, if any.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	return id, ok
}

// WithIdentity stores id in ctx. Used by the middleware and by tests.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// AuthenticateUser returns middleware that validates user-realm JWT tokens.
func AuthenticateUser(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return authenticateRealm(jwtMgr, RealmUser)
}

// AuthenticateAdmin returns middleware that validates admin-realm JWT tokens.
func AuthenticateAdmin(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return authenticateRealm(jwtMgr, RealmAdmin)
}

// RequireRole returns middleware that checks the caller's role.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	roleSet := make(map[domain.Role]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeAuthError(w, domain.ErrUnauthorized("no auth context"))
				return
			}
			if !roleSet[id.Role] {
				writeAuthError(w, domain.ErrForbidden("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authenticateRealm(jwtMgr *JWTManager, realm Realm) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractAndValidate(r, jwtMgr, realm)
			if err != nil {
				writeAuthError(w, domain.ErrUnauthorized(err.Error()))
				return
			}
			id, err := claims.Identity()
			if err != nil {
				writeAuthError(w, domain.ErrUnauthorized(err.Error()))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = WithIdentity(ctx, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractAndValidate(r *http.Request, jwtMgr *JWTManager, realm Realm) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, fmt.Errorf("invalid Authorization format")
	}

	return jwtMgr.ValidateTokenForRealm(parts[1], realm)
}

func writeAuthError(w http.ResponseWriter, appErr *domain.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": appErr.Code, "message": appErr.Message})
}
