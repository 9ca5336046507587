package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"hamsterhub/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter connects the limiter backend. Without it RateLimit is
// a no-op, which keeps local development free of a Redis dependency.
func InitRedisRateLimiter(redisURL string) error {
	if redisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("redis url: %w", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	redisClient = client
	logger.Info("rate limiter connected to redis")
	return nil
}

// RateLimit caps requests per member within a fixed window
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		memberID, ok := MemberID(c)
		key := fmt.Sprintf("ratelimit:%s:%d", c.FullPath(), memberID)
		if !ok {
			key = fmt.Sprintf("ratelimit:%s:ip:%s", c.FullPath(), c.ClientIP())
		}

		count, err := redisClient.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// limiter outage must not take the API down
			logger.Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			redisClient.Expire(c.Request.Context(), key, window)
		}

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
