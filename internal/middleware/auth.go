package middleware

import (
	"context"
	"net/http"

	"github.com/vacancydesk/backend/internal/auth"
	"github.com/vacancydesk/backend/internal/models"
)

// contextKey is a private type so context values cannot collide with
// other packages.
type contextKey string

const claimsContextKey = contextKey("session_claims")

// TokenVerifier is the subset of the token codec the gate needs.
type TokenVerifier interface {
	Verify(token string) (*models.Claims, error)
}

// RequireAuth authenticates the request and enforces the required role.
// Missing and invalid tokens are indistinguishable to the caller: both
// get the same 401. A valid token with an insufficient role gets 403.
// Verified claims are attached to the request context.
func RequireAuth(codec TokenVerifier, requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.TokenFromRequest(r)
			if token == "" {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			claims, err := codec.Verify(token)
			if err != nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			if requiredRole == models.RoleAdmin && claims.Role != models.RoleAdmin {
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the verified session claims, or nil when the
// request did not pass through RequireAuth.
func ClaimsFromContext(ctx context.Context) *models.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*models.Claims)
	return claims
}

// ContextWithClaims injects claims into a context. Used by tests.
func ContextWithClaims(ctx context.Context, claims *models.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}
