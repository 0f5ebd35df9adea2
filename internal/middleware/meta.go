package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const requestStartKey = "request_start"

// WithResponseMeta stamps the request start so handlers can report
// processing time in the response envelope.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Next()
	}
}

// ResponseMeta builds the envelope meta for the current request. extra
// entries are merged on top.
func ResponseMeta(c *gin.Context, extra map[string]interface{}) map[string]interface{} {
	meta := make(map[string]interface{}, len(extra)+1)
	if c != nil {
		if value, ok := c.Get(requestStartKey); ok {
			if start, ok := value.(time.Time); ok {
				meta["processing_time_ms"] = time.Since(start).Milliseconds()
			}
		}
	}
	for k, v := range extra {
		meta[k] = v
	}
	return meta
}
