package middleware

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter is a fixed-window counter. A nil limiter allows everything, so
// deployments without redis keep working.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
}

var limiter *RedisLimiter

// InitRateLimiter wires the shared limiter from REDIS_ADDR. Rate limiting is
// optional; without the env var every request is allowed.
func InitRateLimiter() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("REDIS_ADDR not set, rate limiting disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	limiter = NewRedisLimiter(client)
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(rateLimitScript),
	}
}

// Allow fails open: redis errors never block a request.
func (l *RedisLimiter) Allow(key string, limit int, window time.Duration) bool {
	if l == nil || l.client == nil {
		return true
	}
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}

	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	allowed, err := l.script.Run(ctx, l.client, []string{key}, ttl, limit).Int64()
	if err != nil {
		return true
	}

	return allowed == 1
}

// RateLimit caps requests per client IP within the window for one route scope.
func RateLimit(scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := "ratelimit:" + scope + ":" + ctx.ClientIP()

		if !limiter.Allow(key, limit, window) {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, slow down"})
			return
		}

		ctx.Next()
	}
}
