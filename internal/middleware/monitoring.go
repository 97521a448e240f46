package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"msgapi/backend/internal/monitoring"
)

// HTTPMetrics HTTP 指标中间件
func HTTPMetrics(metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestSize := c.Request.ContentLength
		if requestSize < 0 {
			requestSize = 0
		}

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		statusCode := strconv.Itoa(status)
		responseSize := int64(c.Writer.Size())

		metrics.RecordHTTPRequest(
			c.Request.Method,
			c.FullPath(),
			statusCode,
			duration,
			requestSize,
			responseSize,
		)

		switch status {
		case 401:
			metrics.RecordAuthDenial("unauthenticated")
		case 403:
			metrics.RecordAuthDenial("forbidden")
		case 429:
			metrics.RateLimitBlocks.Inc()
		}

		if status >= 500 {
			metrics.RecordError("http_error", "http")
		}
	}
}
