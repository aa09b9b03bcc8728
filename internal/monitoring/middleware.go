package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// route template keeps label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
