package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllow_WithinBurst(t *testing.T) {
	rl := New(Config{Rate: 10, Burst: 5})
	defer rl.Stop()

	for i := 0; i < 5; i++ {
		allowed, _, _ := rl.Allow("10.0.0.1")
		assert.True(t, allowed, "request %d should be allowed", i)
	}
}

func TestAllow_ExceedsBurst(t *testing.T) {
	rl := New(Config{Rate: 0.001, Burst: 2})
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.1")
	allowed, remaining, retry := rl.Allow("10.0.0.1")

	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.GreaterOrEqual(t, retry, int64(1))
}

func TestAllow_IndependentPerIP(t *testing.T) {
	rl := New(Config{Rate: 0.001, Burst: 1})
	defer rl.Stop()

	allowed, _, _ := rl.Allow("10.0.0.1")
	assert.True(t, allowed)
	allowed, _, _ = rl.Allow("10.0.0.1")
	assert.False(t, allowed)

	allowed, _, _ = rl.Allow("10.0.0.2")
	assert.True(t, allowed, "second IP has its own bucket")
}

func TestAllow_Refills(t *testing.T) {
	rl := New(Config{Rate: 50, Burst: 1})
	defer rl.Stop()

	allowed, _, _ := rl.Allow("10.0.0.1")
	assert.True(t, allowed)
	allowed, _, _ = rl.Allow("10.0.0.1")
	assert.False(t, allowed)

	time.Sleep(50 * time.Millisecond)
	allowed, _, _ = rl.Allow("10.0.0.1")
	assert.True(t, allowed, "bucket should refill over time")
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:54321"
	assert.Equal(t, "192.0.2.7", ClientIP(r))

	r.RemoteAddr = "192.0.2.7"
	assert.Equal(t, "192.0.2.7", ClientIP(r))
}

func TestClientIP_ForwardedHeaders(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"

	r.Header.Set("X-Forwarded-For", "203.0.113.50")
	assert.Equal(t, "203.0.113.50", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.1, 203.0.113.2, 203.0.113.3")
	assert.Equal(t, "203.0.113.1", ClientIP(r), "first hop in the chain is the client")

	r.Header.Del("X-Forwarded-For")
	r.Header.Set("X-Real-IP", "198.51.100.42")
	assert.Equal(t, "198.51.100.42", ClientIP(r))
}

func TestMiddleware_PassThrough(t *testing.T) {
	rl := New(Config{Rate: 100, Burst: 10})
	defer rl.Stop()

	handler := Middleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Remaining"))
}

func TestMiddleware_Rejects(t *testing.T) {
	rl := New(Config{Rate: 0.001, Burst: 1})
	defer rl.Stop()

	handler := Middleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")
}

func TestMiddleware_NilLimiter(t *testing.T) {
	handler := Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRemoveStale(t *testing.T) {
	rl := New(Config{Rate: 10, Burst: 5, EntryTTL: time.Millisecond, CleanupInterval: time.Hour})
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	time.Sleep(5 * time.Millisecond)
	rl.removeStale()

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	assert.Empty(t, rl.buckets)
}
