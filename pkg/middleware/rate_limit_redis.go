package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/logger"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

var rlLog = logger.Named("ratelimit")

// RedisRateLimitMiddleware is a fixed-window limiter shared by all replicas.
// Each client gets floor(rps*window)+burst requests per window. Redis errors
// fail open.
func RedisRateLimitMiddleware(client *redis.Client, rps float64, burst int, window time.Duration) gin.HandlerFunc {
	if client == nil {
		return RateLimitMiddleware(rps, burst)
	}
	if window < time.Second {
		window = time.Second
	}
	secs := int64(window / time.Second)
	allowed := int64(rps*float64(secs)) + int64(burst)

	return func(c *gin.Context) {
		n, err := hit(c.Request.Context(), client, windowKey(limitKey(c), secs), window+time.Second)
		if err != nil {
			rlLog.Warnf("redis unavailable, allowing request: %v", err)
			c.Next()
			return
		}
		if n > allowed {
			tooManyRequests(c, "redis", int(secs))
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
		c.Next()
	}
}

func windowKey(client string, secs int64) string {
	return "ratelimit:" + client + ":" + time.Unix(time.Now().Unix()/secs*secs, 0).UTC().Format("150405")
}

// hit counts one request in the window and returns the running total.
func hit(ctx context.Context, client *redis.Client, key string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
