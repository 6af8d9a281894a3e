package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the correlation id in and out of the API
const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or issues a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// AccessLog logs one line per request with a logger that carries the
// request id, and hands that logger to the services through the request
// context. Successful requests to quiet paths (health checks) log at debug.
func AccessLog(logger *zap.Logger, quiet ...string) gin.HandlerFunc {
	quietPaths := make(map[string]bool, len(quiet))
	for _, p := range quiet {
		quietPaths[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		ctx, reqLogger := WithRequestID(c.Request.Context(), logger, c.GetString("request_id"))
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		// Route template groups /lots/:id requests in log queries
		if route := c.FullPath(); route != "" {
			fields = append(fields, zap.String("route", route))
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		const msg = "HTTP Request"
		switch {
		case status >= http.StatusInternalServerError:
			reqLogger.Error(msg, fields...)
		case status >= http.StatusBadRequest:
			reqLogger.Warn(msg, fields...)
		case quietPaths[c.Request.URL.Path]:
			reqLogger.Debug(msg, fields...)
		default:
			reqLogger.Info(msg, fields...)
		}
	}
}

// Recovery turns a panic into the API's 500 error envelope and logs the stack
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.String("request_id", c.GetString("request_id")),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", err),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":       "ERR_INTERNAL",
						"message":    "An unexpected error occurred",
						"request_id": c.GetString("request_id"),
					},
				})
			}
		}()
		c.Next()
	}
}
