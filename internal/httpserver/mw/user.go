package mw

import (
	"context"
	"net/http"
	"strings"
)

// UserHeader carries the authenticated user identity. Authentication itself
// happens upstream (reverse proxy or API gateway); the service trusts this
// header and scopes every query by it.
const UserHeader = "X-Linkmark-User"

type ctxKey int

const userKey ctxKey = 0

// RequireUser rejects requests that carry no user identity and stores the
// identity in the request context for handlers.
func RequireUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := strings.TrimSpace(r.Header.Get(UserHeader))
			if user == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"missing user identity"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
		})
	}
}

// UserID returns the identity stored by RequireUser, or "" outside it.
func UserID(ctx context.Context) string {
	user, _ := ctx.Value(userKey).(string)
	return user
}
