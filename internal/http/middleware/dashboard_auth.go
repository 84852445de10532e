package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rafaleads/rafaleads/internal/api/respond"
	"github.com/rafaleads/rafaleads/internal/tenancy"
	"github.com/rafaleads/rafaleads/internal/tokens"
)

// TokenValidator checks a dashboard bearer token.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*tokens.Validation, error)
}

// RequireDashboardToken gates the dashboard API. A valid bearer token scopes
// the request to its clinic via the tenancy context; everything downstream
// sees only that clinic's data.
func RequireDashboardToken(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				respond.Error(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}
			bearer := strings.TrimPrefix(auth, "Bearer ")

			result, err := validator.Validate(r.Context(), bearer)
			if err != nil {
				respond.Error(w, http.StatusInternalServerError, "Failed to validate token")
				return
			}
			if !result.Valid {
				respond.Error(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := tenancy.WithClinicID(r.Context(), result.ClinicID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
