// Package middleware carries the gin middleware shared by all routes.
package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harshad-lohande/agentic-sales-copilot/common/logger"
)

// Correlation reads the correlation ID header, minting one when absent, and
// echoes it back on the response. Every log line for the request carries it.
func Correlation(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(header)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
			CorrelationID: logger.Ptr(correlationID),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set("correlation_id", correlationID)
		c.Header(header, correlationID)

		c.Next()
	}
}

// CorrelationID returns the request's correlation ID set by Correlation.
func CorrelationID(c *gin.Context) string {
	return c.GetString("correlation_id")
}

// Recovery turns panics into 500 responses instead of dropped connections.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				slog.ErrorContext(c.Request.Context(), "panic recovered in http handler",
					"panic", r,
					"path", c.Request.URL.Path)
				c.AbortWithStatusJSON(500, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

// Logger emits one access log line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}
