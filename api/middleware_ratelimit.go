package api

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LoginRateLimiter throttles login attempts per client IP with a Redis
// counter. A nil limiter (Redis unconfigured) passes everything through.
type LoginRateLimiter struct {
	Client *redis.Client
	Limit  int64
	Window time.Duration
}

// NewLoginRateLimiter returns a limiter allowing limit attempts per
// window per client IP
func NewLoginRateLimiter(client *redis.Client, limit int64, window time.Duration) *LoginRateLimiter {
	return &LoginRateLimiter{Client: client, Limit: limit, Window: window}
}

// Middleware applies the limit to the wrapped handler
func (l *LoginRateLimiter) Middleware(next http.Handler) http.Handler {
	if l == nil || l.Client == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		key := "login-attempts:" + ip

		ctx := r.Context()
		count, err := l.Client.Incr(ctx, key).Result()
		if err != nil {
			// rate limiting is best-effort; a Redis outage must not lock officials out
			zap.S().Warnw("rate limiter unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			if err := l.Client.Expire(ctx, key, l.Window).Err(); err != nil {
				zap.S().Warnw("rate limiter expire failed", "key", key, "error", err)
			}
		}
		if count > l.Limit {
			retryAfter, _ := l.Client.TTL(ctx, key).Result()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(fmt.Sprintf(`{"success": false, "message": "Too many login attempts. Try again later.", "retry_after": %.0f}`, retryAfter.Seconds())))
			return
		}

		next.ServeHTTP(w, r)
	})
}
