// middleware/rate_limit.go
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/Payphone-Digital/taskflow/internal/constants"
	"github.com/Payphone-Digital/taskflow/pkg/logger"
	"github.com/Payphone-Digital/taskflow/pkg/metrics"
	"github.com/Payphone-Digital/taskflow/pkg/ratelimit"
	"github.com/gin-gonic/gin"
)

// RateLimiter caps requests per client IP within a window on top of a ratelimit.Store.
type RateLimiter struct {
	store      ratelimit.Store
	scope      string
	keyPrefix  string
	maxRequest int
	duration   time.Duration
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewRateLimiter(store ratelimit.Store, scope, keyPrefix string, maxRequest int, duration time.Duration, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		store:      store,
		scope:      scope,
		keyPrefix:  keyPrefix,
		maxRequest: maxRequest,
		duration:   duration,
		metrics:    m,
		now:        time.Now,
	}
}

// Handler rejects over-limit clients with 429. A store failure lets the request through.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ip := c.ClientIP()

		result, err := rl.store.Allow(ctx, rl.keyPrefix+ip, rl.maxRequest, rl.duration)
		if err != nil {
			logger.ErrorWithContext(ctx, "Rate limit store failed, allowing request").
				String("scope", rl.scope).
				Err(err).
				Log()
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(math.Ceil(result.RetryAfter(rl.now()).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}

			rl.metrics.IncRateLimited(rl.scope)
			logger.WarnWithContext(ctx, "Rate limit exceeded").
				String("scope", rl.scope).
				String("client_ip", ip).
				Method(c.Request.Method).
				Path(c.Request.URL.Path).
				Int("max_requests", rl.maxRequest).
				Duration(rl.duration).
				Log()

			c.Header(constants.HeaderRetryAfter, strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				constants.ResponseFieldError: constants.MsgRateLimited,
				"retryAfter":                 retryAfter,
			})
			return
		}

		c.Next()
	}
}
