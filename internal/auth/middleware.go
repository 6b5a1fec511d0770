package auth

import (
	"net/http"
	"strings"

	"github.com/noah-isme/backend-orcamento/internal/common"
)

// Middleware guards the admin routes.
type Middleware struct {
	Service *Service
}

// RequireAuth accepts "Authorization: Bearer <jwt>" and puts the user id and
// roles on the request context. Anything else is a 401.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, _ := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
		if m.Service == nil || !strings.EqualFold(scheme, "bearer") {
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
			return
		}
		claims, err := m.Service.ParseAccessToken(token)
		if err != nil {
			common.WriteAppError(w, err)
			return
		}
		ctx := common.WithRoles(common.WithUserID(r.Context(), claims.UserID), claims.Roles)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole must run after RequireAuth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if common.HasRole(r.Context(), role) {
				next.ServeHTTP(w, r)
				return
			}
			common.JSONError(w, http.StatusForbidden, "FORBIDDEN", "insufficient role", nil)
		})
	}
}
