package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Middleware returns a Gin middleware that attaches a request-scoped logger
// to the context and logs each completed request.
func Middleware(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)

		reqLogger := logger.WithRequestID(requestID)
		c.Set("logger", reqLogger)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		reqLogger.LogRequest(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), latency)

		// Server faults get their error-level entry from the error handler
		// middleware; client faults are the caller's problem and never reach
		// the error log.
		if len(c.Errors) > 0 && c.Writer.Status() < http.StatusInternalServerError {
			reqLogger.Debug("request rejected",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"errors", c.Errors.String(),
			)
		}
	}
}

// FromContext returns the request-scoped logger, falling back to the global
// logger when middleware did not run (e.g. in tests).
func FromContext(c *gin.Context) *Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*Logger); ok {
			return logger
		}
	}
	return GetGlobal()
}
