package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"clinic-booking-server/internal/utils"
)

// RateLimiter is a fixed-window request limiter backed by Redis, applied to
// the credential endpoints (register, login). It fails open when Redis is
// unreachable so an outage of the limiter does not lock everyone out.
type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// NewRateLimiter creates a limiter allowing limit requests per window per
// client IP.
func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 30
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{rdb: rdb, limit: limit, window: window, prefix: "rl:auth"}
}

// Middleware returns the gin handler enforcing the limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.prefix + ":" + c.ClientIP()
		count, err := fixedWindowScript.Run(c.Request.Context(), rl.rdb, []string{key}, rl.window.Milliseconds()).Int64()
		if err != nil {
			log.Printf("rate limiter error: %v", err)
			c.Next()
			return
		}
		if count > int64(rl.limit) {
			utils.Error(c, http.StatusTooManyRequests, "Too many requests, slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}
