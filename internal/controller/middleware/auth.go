// Package middleware contains HTTP middleware for the controller.
package middleware

import (
	"net/http"
	"strings"

	"shieldhive/internal/auth"
)

// RequireServerKey ensures agent-facing requests carry the shared server key
// as a bearer token. An empty configured key disables the check.
func RequireServerKey(serverKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if serverKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}

			if !auth.VerifyKey(parts[1], serverKey) {
				http.Error(w, "Invalid authorization token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
