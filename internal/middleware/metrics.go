// Package middleware provides the Gin middleware shared by every route of the audit log API.
//
// router.go registers it in this order:
//
//	Recovery → RequestID → Metrics → Logger → CORS → SecurityHeaders → RateLimit → JWT (optional)
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/publink/publink-logs/internal/telemetry"
)

// MetricsMiddleware records http_requests_total and http_request_duration_seconds for
// every request.
//
// The path label comes from c.FullPath(), the matched route template, so query strings
// such as organizationId never reach label values. Unmatched requests (404/405) are
// recorded under "<no-route>".
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "<no-route>"
		}

		method := c.Request.Method
		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
