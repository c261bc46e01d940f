package middleware

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/sampleapp/pkg/auth"
	"github.com/shashiranjanraj/sampleapp/pkg/fault"
)

// Auth requires a valid bearer token and exposes its claims through
// auth.ClaimsFromCtx.
func Auth(signer *auth.Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			if token == "" {
				fault.Pass(w, r, fault.Unauthorized("Unauthorized"))
				return
			}

			claims, err := signer.ValidateToken(token)
			if err != nil {
				fault.Pass(w, r, fault.Wrap(http.StatusUnauthorized, "Invalid token", err))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}
