package httpx

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter is an in-process fixed-window limiter keyed by client IP.
// Suitable for single-instance deployments; multi-instance setups should use
// the Redis variant so all replicas share one budget.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*clientWindow
	sweepAt time.Time
}

type clientWindow struct {
	hits    int
	expires time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		limit:   limit,
		window:  window,
		windows: make(map[string]*clientWindow),
		sweepAt: time.Now().Add(window),
	}
}

func (rl *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.take(clientKey(r)) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) take(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.After(rl.sweepAt) {
		for k, cw := range rl.windows {
			if now.After(cw.expires) {
				delete(rl.windows, k)
			}
		}
		rl.sweepAt = now.Add(rl.window)
	}

	cw, ok := rl.windows[key]
	if !ok || now.After(cw.expires) {
		rl.windows[key] = &clientWindow{hits: 1, expires: now.Add(rl.window)}
		return true
	}
	if cw.hits >= rl.limit {
		return false
	}
	cw.hits++
	return true
}

// clientKey prefers the first X-Forwarded-For hop so limits survive a
// reverse proxy, falling back to the socket peer address.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
