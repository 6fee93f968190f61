package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

func TestBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
	})
	handler := BasicAuth("admin", string(hash), zaptest.NewLogger(t))(next)

	t.Run("no credentials", func(t *testing.T) {
		nextCalled = false
		req := httptest.NewRequest(http.MethodGet, "/admin/media", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, `Basic realm="Login Required"`, rec.Header().Get("WWW-Authenticate"))
		assert.JSONEq(t, `{"message":"Authorization Required"}`, rec.Body.String())
		assert.False(t, nextCalled)
	})

	t.Run("wrong password", func(t *testing.T) {
		nextCalled = false
		req := httptest.NewRequest(http.MethodGet, "/admin/media", nil)
		req.SetBasicAuth("admin", "wrong")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"Authorization Failed"}`, rec.Body.String())
		assert.False(t, nextCalled)
	})

	t.Run("wrong username", func(t *testing.T) {
		nextCalled = false
		req := httptest.NewRequest(http.MethodGet, "/admin/media", nil)
		req.SetBasicAuth("intruder", "s3cret")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, nextCalled)
	})

	t.Run("valid credentials", func(t *testing.T) {
		nextCalled = false
		req := httptest.NewRequest(http.MethodGet, "/admin/media", nil)
		req.SetBasicAuth("admin", "s3cret")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, nextCalled)
	})
}
