package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	h "valentine/internal/delivery/http/helpers"
	"valentine/internal/domain"
)

type contextKey string

const claimsKey contextKey = "claims"

// SetClaims returns a context with the verified token claims set. Used by auth middleware.
func SetClaims(ctx context.Context, claims *domain.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the verified token claims from the context, if present.
func ClaimsFromContext(ctx context.Context) (*domain.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*domain.TokenClaims)
	return claims, ok
}

// UserIDFromContext returns the authenticated user ID (the token subject)
// from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return "", false
	}
	return claims.Subject, true
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the
// verified claims in the request context. If the token is missing or invalid,
// it responds with 401 auth_required so clients can redirect to sign-in
// instead of showing a form error, and does not call next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := verifyBearer(w, r, verifier)
			if !ok {
				return
			}
			r = r.WithContext(SetClaims(r.Context(), claims))
			next(w, r)
		}
	}
}

// RequireAdmin returns a wrapper that validates the Bearer token and requires
// the admin role claim. A valid non-admin token gets 403; a missing or invalid
// token gets 401.
func RequireAdmin(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := verifyBearer(w, r, verifier)
			if !ok {
				return
			}
			if !slices.Contains(claims.Roles, domain.AdminRole) {
				h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "admin access required")
				return
			}
			r = r.WithContext(SetClaims(r.Context(), claims))
			next(w, r)
		}
	}
}

func verifyBearer(w http.ResponseWriter, r *http.Request, verifier domain.TokenVerifier) (*domain.TokenClaims, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeAuthRequired, "missing authorization header")
		return nil, false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeAuthRequired, "invalid authorization format")
		return nil, false
	}
	token := strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeAuthRequired, "missing token")
		return nil, false
	}
	claims, err := verifier.Verify(token)
	if err != nil {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeAuthRequired, "invalid or expired token")
		return nil, false
	}
	return claims, true
}
