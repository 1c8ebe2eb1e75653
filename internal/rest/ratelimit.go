package rest

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisRateLimit implements a fixed-window rate limiter using Redis
// INCR/EXPIRE, keyed by client IP. When Redis is unreachable the middleware
// fails open so the API stays available.
func RedisRateLimit(client *redis.Client, maxRequests int, window time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil {
				next.ServeHTTP(w, r)
				return
			}

			ident, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ident = r.RemoteAddr
			}

			key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + ident

			val, err := client.Incr(r.Context(), key).Result()
			if err != nil {
				w.Header().Set("X-RateLimit-Error", "redis-error")
				next.ServeHTTP(w, r)
				return
			}

			if val == 1 {
				client.Expire(r.Context(), key, window)
			}

			if val > int64(maxRequests) {
				renderResponse(w, ErrorResponse{Error: "rate limit exceeded"}, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
