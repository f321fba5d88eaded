package middleware

import (
	"context"
	"time"

	"github.com/Payphone-Digital/taskflow/internal/constants"
	ctxutil "github.com/Payphone-Digital/taskflow/pkg/context"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDMiddleware takes X-Request-ID from the client or generates one, and echoes it back.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := ctxutil.WithRequestID(c.Request.Context(), requestID)
		ctx = ctxutil.WithRequestInfo(ctx, c.ClientIP(), c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)

		c.Header(constants.HeaderXRequestID, requestID)
		c.Next()
	}
}

// RequestTimeoutMiddleware bounds the request context; store calls observe the deadline.
func RequestTimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// DefaultContextMiddleware is the context chain applied to every route.
func DefaultContextMiddleware(timeout time.Duration) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		RequestIDMiddleware(),
		RequestTimeoutMiddleware(timeout),
	}
}
