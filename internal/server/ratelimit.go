package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultRateLimitCleanup is how often idle client buckets are dropped.
	DefaultRateLimitCleanup = 5 * time.Minute

	// rateLimitIdleAfter is how long a bucket may go unused before cleanup.
	rateLimitIdleAfter = 10 * time.Minute
)

// RateLimiter is a per-client token bucket limiter for the MCP endpoint.
type RateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	rate       float64 // tokens per second
	burst      float64
	trustProxy bool

	stopOnce sync.Once
	stop     chan struct{}
}

type bucket struct {
	tokens     float64
	lastUpdate time.Time
}

// NewRateLimiter allows rate requests per second per client with bursts of
// up to burst requests. With trustProxy the client is taken from
// X-Forwarded-For or X-Real-IP. Call Stop to end the cleanup goroutine.
func NewRateLimiter(rate, burst int, trustProxy bool) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	rl := &RateLimiter{
		buckets:    make(map[string]*bucket),
		rate:       float64(rate),
		burst:      float64(burst),
		trustProxy: trustProxy,
		stop:       make(chan struct{}),
	}
	go rl.cleanupLoop(DefaultRateLimitCleanup)
	return rl
}

// Allow reports whether client may make a request now, consuming a token.
func (rl *RateLimiter) Allow(client string) bool {
	return rl.allowAt(client, time.Now())
}

func (rl *RateLimiter) allowAt(client string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[client]
	if !ok {
		b = &bucket{tokens: rl.burst, lastUpdate: now}
		rl.buckets[client] = b
	}

	b.tokens += now.Sub(b.lastUpdate).Seconds() * rl.rate
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.lastUpdate = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Middleware rejects requests over the limit with 429 Too Many Requests.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r, rl.trustProxy)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded, please try again later", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.cleanup(now)
		}
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for client, b := range rl.buckets {
		if now.Sub(b.lastUpdate) > rateLimitIdleAfter {
			delete(rl.buckets, client)
		}
	}
}

// clientIP returns the requesting client. Proxy headers are only honored
// when trustProxy is set.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
