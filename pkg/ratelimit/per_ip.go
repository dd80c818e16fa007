// Package ratelimit provides token-bucket rate limiting for the agent's
// HTTP endpoints. A PerIPLimiter tracks one bucket per client IP with
// automatic cleanup of stale entries.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Default limiter values.
const (
	DefaultRate            = 100.0 // requests per second
	DefaultBurst           = 200
	DefaultCleanupInterval = 1 * time.Minute
	DefaultEntryTTL        = 1 * time.Minute
)

// ipBucket is the token bucket for a single client IP.
type ipBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastUpdate time.Time
}

// Config configures a PerIPLimiter. Zero values fall back to defaults.
type Config struct {
	Rate            float64       // tokens per second
	Burst           int           // maximum bucket capacity
	CleanupInterval time.Duration // how often stale buckets are removed
	EntryTTL        time.Duration // how long an idle bucket lives
}

// PerIPLimiter enforces a per-client-IP request rate. It starts a
// background cleanup goroutine; call Stop when done.
type PerIPLimiter struct {
	rate      float64
	burst     int
	mu        sync.RWMutex
	buckets   map[string]*ipBucket
	ttl       time.Duration
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// New creates a per-IP rate limiter.
func New(cfg Config) *PerIPLimiter {
	rate := cfg.Rate
	if rate <= 0 {
		rate = DefaultRate
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultBurst
	}
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	ttl := cfg.EntryTTL
	if ttl <= 0 {
		ttl = DefaultEntryTTL
	}

	rl := &PerIPLimiter{
		rate:      rate,
		burst:     burst,
		buckets:   make(map[string]*ipBucket),
		ttl:       ttl,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
	go rl.cleanup(interval)
	return rl
}

// Burst returns the maximum bucket capacity.
func (rl *PerIPLimiter) Burst() int {
	return rl.burst
}

// Allow reports whether a request from the given IP may proceed, along
// with the remaining tokens and, on rejection, how many seconds to wait.
func (rl *PerIPLimiter) Allow(ip string) (allowed bool, remaining int, retryAfterSec int64) {
	now := time.Now()

	rl.mu.RLock()
	bucket, ok := rl.buckets[ip]
	rl.mu.RUnlock()

	if !ok {
		rl.mu.Lock()
		bucket, ok = rl.buckets[ip]
		if !ok {
			bucket = &ipBucket{tokens: float64(rl.burst), lastUpdate: now}
			rl.buckets[ip] = bucket
		}
		rl.mu.Unlock()
	}

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	elapsed := now.Sub(bucket.lastUpdate).Seconds()
	bucket.tokens += elapsed * rl.rate
	if bucket.tokens > float64(rl.burst) {
		bucket.tokens = float64(rl.burst)
	}
	bucket.lastUpdate = now

	if bucket.tokens >= 1 {
		bucket.tokens--
		return true, int(bucket.tokens), 0
	}

	retry := int64((1 - bucket.tokens) / rl.rate)
	if retry < 1 {
		retry = 1
	}
	return false, 0, retry
}

// ClientIP extracts the client IP from a request. Forwarding headers
// win over RemoteAddr: the agent deploys behind a platform ingress that
// sets them. X-Forwarded-For may hold a chain; the first hop is the
// client.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// Stop shuts down the cleanup goroutine.
func (rl *PerIPLimiter) Stop() {
	close(rl.stopCh)
	<-rl.stoppedCh
}

func (rl *PerIPLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(rl.stoppedCh)

	for {
		select {
		case <-ticker.C:
			rl.removeStale()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *PerIPLimiter) removeStale() {
	cutoff := time.Now().Add(-rl.ttl)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, bucket := range rl.buckets {
		bucket.mu.Lock()
		if bucket.lastUpdate.Before(cutoff) {
			delete(rl.buckets, ip)
		}
		bucket.mu.Unlock()
	}
}
