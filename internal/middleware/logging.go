package middleware

import (
	"net/http"
	"time"

	"github.com/Payphone-Digital/taskflow/internal/constants"
	ctxutil "github.com/Payphone-Digital/taskflow/pkg/context"
	"github.com/Payphone-Digital/taskflow/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const slowRequestThreshold = 2 * time.Second

// LoggingMiddleware logs one structured line per request, levelled by status code.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		ctx := c.Request.Context()

		logger.LogRequest(
			c.Request.Method,
			path,
			c.Writer.Status(),
			latency.Milliseconds(),
			c.ClientIP(),
			c.Request.UserAgent(),
			ctxutil.GetRequestID(ctx),
		)

		if len(c.Errors) > 0 {
			logger.ErrorWithContext(ctx, "Request error").
				String("error", c.Errors.String()).
				Method(c.Request.Method).
				Path(path).
				StatusCode(c.Writer.Status()).
				Log()
		}

		if latency > slowRequestThreshold {
			logger.GetLogger().Warn("Slow request detected",
				zap.String("method", c.Request.Method),
				zap.String("path", path),
				zap.Duration("latency", latency),
				zap.String("client_ip", c.ClientIP()),
			)
		}
	}
}

// RecoveryMiddleware recovers from panics and logs them
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.LogPanic(recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, constants.BuildErrorResponse(constants.MsgInternalError))
	})
}
