package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/aura-backend/internal/logger"
	"github.com/AnshRaj112/aura-backend/pkg/clientip"
)

const (
	// RateLimitWindow is 120 seconds
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed in the window
	RateLimitMaxRequests = 120
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked
	BlockedIPDuration = 15 * time.Minute
)

// RedisRateLimit counts requests per IP in a fixed Redis window shared by all
// instances and blocks an IP for BlockedIPDuration once it exceeds the window
// budget. Redis failures let the request through.
func RedisRateLimit(rdb *redis.Client, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := clientip.RealClientIP(r)

			blockedKey := BlockedIPKeyPrefix + ip
			isBlocked, err := rdb.Exists(ctx, blockedKey).Result()
			if err == nil && isBlocked > 0 {
				tooManyRequests(w, "Your IP has been temporarily blocked due to excessive requests. Please try again later.")
				return
			}

			rateLimitKey := RateLimitKeyPrefix + ip
			n, err := rdb.Incr(ctx, rateLimitKey).Result()
			if err == nil && n == 1 {
				// First request in this window
				err = rdb.Expire(ctx, rateLimitKey, RateLimitWindow).Err()
			}
			if err != nil {
				log.Warn("rate limit check failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			count := int(n)
			if count > RateLimitMaxRequests {
				if err := rdb.Set(ctx, blockedKey, "1", BlockedIPDuration).Err(); err != nil {
					log.Warn("failed to block ip", "ip", ip, "error", err)
				} else {
					log.Info("ip blocked", "ip", ip, "requests", count)
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(fmt.Sprintf(`{"success":false,"message":"Rate limit exceeded. Your IP has been temporarily blocked. Please try again later.","retry_after":%d}`, int(BlockedIPDuration.Seconds()))))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(RateLimitMaxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(RateLimitMaxRequests-count))

			next.ServeHTTP(w, r)
		})
	}
}
