package httpx

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter shares a fixed-window budget across replicas. The window
// lives entirely in Redis, so any instance can serve any client.
type RedisRateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// INCR-then-PEXPIRE must be atomic or a crashed client leaks a counter with
// no TTL that blocks its key forever.
var fixedWindowIncr = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

func NewRedisRateLimiter(rdb *redis.Client, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	if prefix = strings.TrimSpace(prefix); prefix == "" {
		prefix = "rl"
	}
	return &RedisRateLimiter{rdb: rdb, limit: limit, window: window, prefix: prefix}
}

// Middleware enforces the limit per client key. When Redis is unreachable the
// failOpen flag decides between letting traffic through and shedding it.
func (rl *RedisRateLimiter) Middleware(logger *slog.Logger, failOpen bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n, err := rl.hit(r.Context(), rl.prefix+":"+clientKey(r))
			switch {
			case err != nil:
				if logger != nil {
					logger.Warn("redis rate limiter error", "err", err)
				}
				if !failOpen {
					http.Error(w, "rate limiter unavailable", http.StatusServiceUnavailable)
					return
				}
			case n > int64(rl.limit):
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RedisRateLimiter) hit(ctx context.Context, key string) (int64, error) {
	res, err := fixedWindowIncr.Run(ctx, rl.rdb, []string{key}, rl.window.Milliseconds()).Result()
	if err != nil {
		return 0, err
	}
	// The driver hands script results back as int64 in practice, but Lua
	// number conversions have surprised us before.
	switch v := res.(type) {
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected script result %T", res)
	}
}
