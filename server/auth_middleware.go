package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-backoffice-core/roles"
	"github.com/jrsteele09/go-backoffice-core/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClaims stores the verified token claims
	ContextKeyClaims ContextKey = "claims"
	// ContextKeyRawToken stores the bearer token as received
	ContextKeyRawToken ContextKey = "raw_token"
)

// ClaimsFromContext returns the claims stored by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*token.Claims)
	return claims, ok
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth validates the Bearer token and stores its claims in the request context.
func (s *Server) RequireAuth() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			claims, err := s.tokens.Verify(raw)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			ctx = context.WithValue(ctx, ContextKeyRawToken, raw)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireAdmin rejects callers whose first role is not ADMIN.
// Must be chained after RequireAuth.
func (s *Server) RequireAdmin() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
				return
			}
			role, err := roles.FirstRole(claims.Roles)
			if err != nil || role != roles.RoleAdmin {
				writeJSONError(w, http.StatusForbidden, "Forbidden", "Only administrators can modify "+r.PathValue("resource"))
				return
			}
			next(w, r)
		}
	}
}
