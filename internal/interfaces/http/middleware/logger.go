package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"observer-console.backend/internal/infrastructure/metrics"
	"observer-console.backend/pkg/logger"
)

// LoggerMiddleware logs HTTP requests using the structured logger and records their duration
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(latency.Seconds())

		if raw != "" {
			path = path + "?" + raw
		}
		logger.LogRequest(c.Request.Context(), c.Request.Method, path, c.Writer.Status(), latency, c.ClientIP())
	}
}
