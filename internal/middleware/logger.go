package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request. Token and password values never
// appear here; only method, path and outcome do.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Printf("request method=%s path=%s status=%d client_ip=%s user_id=%d latency=%s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			c.ClientIP(),
			c.GetInt64("user_id"),
			time.Since(start),
		)
	}
}
