// Package middleware provides HTTP middleware shared by the API routes.
package middleware

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"toolpool-backend/internal/logger"

	"golang.org/x/time/rate"
)

// Clock abstracts time for the limiter so tests can inject a fake.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

// CounterStore hands out per-key limiters. Deployments with a single
// instance use the in-memory store; a multi-instance deployment can swap in
// a shared implementation without touching the middleware.
type CounterStore interface {
	// Allow reports whether the key may proceed now, and if not, how long
	// until it should retry.
	Allow(key string, now time.Time) (bool, time.Duration)
	// Cleanup drops entries idle longer than maxIdle.
	Cleanup(now time.Time, maxIdle time.Duration)
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryCounterStore keeps per-key token buckets in a process-wide map.
// State is lost on restart, which is acceptable for a best-effort abuse
// guard.
type MemoryCounterStore struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rate    rate.Limit
	burst   int
}

func NewMemoryCounterStore(requestsPerMinute, burst int) *MemoryCounterStore {
	return &MemoryCounterStore{
		entries: make(map[string]*limiterEntry),
		rate:    rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:   burst,
	}
}

func (s *MemoryCounterStore) Allow(key string, now time.Time) (bool, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.entries[key] = entry
	}
	entry.lastSeen = now

	reservation := entry.limiter.ReserveN(now, 1)
	delay := reservation.DelayFrom(now)
	if delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (s *MemoryCounterStore) Cleanup(now time.Time, maxIdle time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.entries {
		if now.Sub(entry.lastSeen) > maxIdle {
			delete(s.entries, key)
		}
	}
}

// RateLimiter enforces per-caller request rates. Keys are the authenticated
// user id when present, otherwise the remote IP.
type RateLimiter struct {
	store CounterStore
	clock Clock
}

func NewRateLimiter(store CounterStore, clock Clock) *RateLimiter {
	return &RateLimiter{store: store, clock: clock}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ""
		if claims := ClaimsFromContext(r.Context()); claims != nil {
			key = fmt.Sprintf("user:%d", claims.UserID)
		} else {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			key = "ip:" + host
		}

		allowed, retryAfter := rl.store.Allow(key, rl.clock.Now())
		if !allowed {
			logger.Warn("Rate limit exceeded", "key", key, "path", r.URL.Path, "method", r.Method)
			seconds := int(retryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintf(w, `{"error":"rate limited","retry_after_seconds":%d}`, seconds)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Cleanup is invoked by the scheduler to drop idle counters.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.store.Cleanup(rl.clock.Now(), maxIdle)
}
