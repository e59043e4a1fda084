package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestMemoryCounterStore_BurstThenReject(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryCounterStore(60, 3)

	for i := 0; i < 3; i++ {
		allowed, _ := store.Allow("ip:1.2.3.4", clock.Now())
		assert.True(t, allowed, "request %d within burst", i)
	}

	allowed, retryAfter := store.Allow("ip:1.2.3.4", clock.Now())
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))

	// A different key is unaffected.
	allowed, _ = store.Allow("ip:5.6.7.8", clock.Now())
	assert.True(t, allowed)

	// Tokens refill with time.
	clock.Advance(2 * time.Second)
	allowed, _ = store.Allow("ip:1.2.3.4", clock.Now())
	assert.True(t, allowed)
}

func TestMemoryCounterStore_Cleanup(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryCounterStore(60, 1)

	store.Allow("ip:1.2.3.4", clock.Now())
	clock.Advance(time.Hour)
	store.Allow("ip:5.6.7.8", clock.Now())

	store.Cleanup(clock.Now(), 30*time.Minute)

	store.mu.Lock()
	_, stale := store.entries["ip:1.2.3.4"]
	_, fresh := store.entries["ip:5.6.7.8"]
	store.mu.Unlock()
	assert.False(t, stale)
	assert.True(t, fresh)
}

func TestRateLimiter_Handler(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(NewMemoryCounterStore(60, 1), clock)

	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tools", nil)
	req.RemoteAddr = "10.0.0.1:54321"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
