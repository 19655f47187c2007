package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/metrics"
)

// HTTPMetrics records request count, latency and response size by route
// pattern. A nil collector disables it.
func HTTPMetrics(collector *metrics.Collector) gin.HandlerFunc {
	if collector == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		collector.HTTPStarted()

		c.Next()

		collector.ObserveHTTPRequest(
			c.Request.Method,
			routePattern(c),
			c.Writer.Status(),
			time.Since(start),
			c.Writer.Size(),
		)
	}
}

// routePattern returns the matched route (e.g. "/api/v1/crm/leads/:name")
// so raw paths never become label values.
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
