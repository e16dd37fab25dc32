package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/timmy/socialkit/internal/logger"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Logger injects a request-scoped logger into the request context and logs
// one line per completed request. An incoming X-Request-ID is reused.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := logger.SetComponent(logger.SetRequestID(c.Request.Context(), requestID), "api")
		if sid := c.Param("id"); sid != "" {
			ctx = logger.SetSessionID(ctx, sid)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		entry := logger.With(logger.Fields{
			logger.FieldStatus: c.Writer.Status(),
			logger.FieldSize:   c.Writer.Size(),
		}).WithDuration(start)

		switch {
		case c.Writer.Status() >= 500:
			entry.Error(ctx, "%s %s failed: %s", c.Request.Method, path, c.Errors.String())
		case c.Writer.Status() >= 400:
			entry.Warn(ctx, "%s %s rejected", c.Request.Method, path)
		default:
			entry.Info(ctx, "%s %s", c.Request.Method, path)
		}
	}
}
