package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	logx "github.com/toolscout-core/server/pkg/logger"
)

const (
	// TraceHeader carries the trace id on every response.
	TraceHeader = "X-Trace-Id"
	traceKey    = "trace_id"
)

// TraceMiddleware assigns a trace id to each request and echoes it in the response header.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := uuid.NewString()
		c.Set(traceKey, traceID)
		c.Header(TraceHeader, traceID)
		c.Next()
	}
}

// LoggingMiddleware logs request start and completion with latency.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		log := logx.With(c.GetString(traceKey))

		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request started")

		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Msg("Request completed")
	}
}

// TraceID returns the id assigned by TraceMiddleware.
func TraceID(c *gin.Context) string {
	return c.GetString(traceKey)
}
