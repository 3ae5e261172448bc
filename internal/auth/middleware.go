package auth

import (
	"context"
	"errors"
	"net/http"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// UserID returns the id Middleware stored in ctx.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

// Middleware authenticates plain chi routes. Browsers cannot set headers on
// an EventSource, so the cookie is accepted alongside the headers.
func (h *AuthHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cookie string
		if c, err := r.Cookie(CookieName); err == nil {
			cookie = c.Value
		}

		userID, err := h.Identify(r.Context(), r.Header.Get(APIKeyHeader), bearer(r.Header.Get("Authorization")), cookie)
		if err != nil {
			if errors.Is(err, ErrAPIKeyExpired) {
				http.Error(w, "Unauthorized: API Key expired", http.StatusUnauthorized)
				return
			}
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
