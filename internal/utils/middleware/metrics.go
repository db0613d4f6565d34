package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/calshare/server/internal/utils/metrics"
)

// Metrics returns a middleware recording request counts and latency.
// Requests are labelled by route template so path ids do not explode
// cardinality.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
