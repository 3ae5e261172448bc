package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	h, _ := newTestHandler(t)
	token, err := h.GenerateToken("user-42")
	require.NoError(t, err)

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	mw := h.Middleware(next)

	t.Run("Cookie", func(t *testing.T) {
		seen = ""
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		rr := httptest.NewRecorder()
		mw.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "user-42", seen)
	})

	t.Run("Bearer", func(t *testing.T) {
		seen = ""
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		mw.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "user-42", seen)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		seen = ""
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		rr := httptest.NewRecorder()
		mw.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Empty(t, seen, "next handler must not run")
	})
}
