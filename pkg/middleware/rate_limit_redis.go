package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/folio/portfolio/backend/go-services/pkg/logger"
	"github.com/folio/portfolio/backend/go-services/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimitMiddleware is a fixed-window limiter shared by every replica.
// Each (client, window) pair gets one counter; a request is admitted while the
// counter stays within rps*window+burst. When Redis is unreachable requests are
// let through and the failure is logged.
func RedisRateLimitMiddleware(client *redis.Client, rps float64, burst int, window time.Duration) gin.HandlerFunc {
	if client == nil {
		return RateLimitMiddleware(rps, burst)
	}
	secs := int64(window / time.Second)
	if secs <= 0 {
		secs = 1
	}
	limit := int64(rps*float64(secs)) + int64(burst)
	ttl := time.Duration(secs+1) * time.Second
	retryAfter := strconv.FormatInt(secs, 10)

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("rl:%s:%d", clientKey(c), time.Now().Unix()/secs)

		var incr *redis.IntCmd
		_, err := client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			incr = p.Incr(ctx, key)
			p.Expire(ctx, key, ttl)
			return nil
		})
		if err != nil {
			logger.Warnf("rate limit: redis unavailable, admitting request: %v", err)
			c.Next()
			return
		}
		if incr.Val() > limit {
			c.Header("Retry-After", retryAfter)
			metrics.RateLimitRejected.WithLabelValues("redis").Inc()
			rejectRateLimited(c)
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
		c.Next()
	}
}
