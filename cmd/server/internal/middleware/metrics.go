package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/houzhh15/taskable/pkg/metrics"
)

// Metrics 按路由模板记录请求数，未匹配的路由统一记为 unmatched
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordGatewayRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()))
	}
}
