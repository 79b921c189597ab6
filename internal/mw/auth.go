package mw

import (
	"context"
	"net/http"
	"strings"

	"orderwarden/internal/identity"
)

type contextKey string

const UserCtxKey contextKey = "user_id"

// UserID returns the caller set by IdentityMiddleware.
func UserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserCtxKey).(string)
	return userID, ok && userID != ""
}

// IdentityMiddleware requires the identity header on every request. With a
// non-empty secret the request must also carry a valid bearer token whose
// subject matches the header.
func IdentityMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(identity.Header))
			if userID == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if jwtSecret != "" {
				authHeader := r.Header.Get("Authorization")
				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || parts[0] != "Bearer" {
					http.Error(w, "invalid token format", http.StatusUnauthorized)
					return
				}

				subject, err := identity.ParseToken(parts[1], jwtSecret)
				if err != nil {
					http.Error(w, "invalid or expired token", http.StatusUnauthorized)
					return
				}
				if subject != userID {
					http.Error(w, "token does not match user", http.StatusForbidden)
					return
				}
			}

			ctx := context.WithValue(r.Context(), UserCtxKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
