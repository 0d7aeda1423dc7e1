package app

import (
	"log/slog"
	"strconv"
	"time"

	"tasktracker/internal/metrics"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs HTTP request/response metadata and counts the request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()

		if logger != nil {
			logger.Info("http request",
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.Int("status", status),
				slog.String("client_ip", c.ClientIP()),
				slog.String("latency", time.Since(start).String()),
			)
		}
	}
}
