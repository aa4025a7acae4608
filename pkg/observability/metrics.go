package observability

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PrometheusHandler adapts the exporter's scrape handler to a Gin route. A nil
// handler means telemetry never initialized, which the scrape should surface
// rather than silently return an empty page.
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	if handler == nil {
		return func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "metrics exporter not initialized",
			})
		}
	}
	return gin.WrapH(handler)
}
