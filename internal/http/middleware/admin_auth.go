package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rafaleads/rafaleads/internal/api/respond"
)

// AdminAuth gates operator endpoints. The bearer value may be the shared
// admin secret itself or an HMAC-signed JWT issued with that secret, so
// humans with the secret and provisioning scripts minting short-lived JWTs
// both work.
func AdminAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				respond.Error(w, http.StatusUnauthorized, "Admin access disabled")
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				respond.Error(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}
			bearer := strings.TrimPrefix(auth, "Bearer ")

			if subtle.ConstantTimeCompare([]byte(bearer), []byte(secret)) == 1 {
				next.ServeHTTP(w, r)
				return
			}
			if !validAdminJWT(bearer, secret) {
				respond.Error(w, http.StatusUnauthorized, "Invalid admin credentials")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func validAdminJWT(tokenString, secret string) bool {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	return err == nil && token.Valid
}
