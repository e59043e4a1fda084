package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"toolpool-backend/internal/middleware"
	"toolpool-backend/internal/security"

	"github.com/stretchr/testify/assert"
)

// recordingStore captures the keys the limiter asks about and always allows.
type recordingStore struct {
	keys []string
}

func (s *recordingStore) Allow(key string, _ time.Time) (bool, time.Duration) {
	s.keys = append(s.keys, key)
	return true, 0
}

func (s *recordingStore) Cleanup(_ time.Time, _ time.Duration) {}

func TestRouterRateLimitKeying(t *testing.T) {
	tokens := security.NewTokenManager("router-test-secret-router-test-secret", 15, 1440)
	store := &recordingStore{}
	router := NewRouter(
		NewHandlers(nil, nil, nil, nil, nil, nil, "whsec_test"),
		middleware.NewAuthenticator(tokens),
		middleware.NewRateLimiter(store, middleware.RealClock()),
	)

	t.Run("Authenticated requests are keyed by user id", func(t *testing.T) {
		access, err := tokens.GenerateAccessToken(42, "alice@example.com", true, false)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "203.0.113.9:51000"
		req.Header.Set("Authorization", "Bearer "+access)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"user:42"}, store.keys)
	})

	t.Run("Anonymous requests fall back to the remote IP", func(t *testing.T) {
		store.keys = nil

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "203.0.113.9:51000"
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"ip:203.0.113.9"}, store.keys)
	})
}
