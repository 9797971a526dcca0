package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an id for log correlation. An
// incoming header wins so ids survive proxies.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = xid.New().String()
		}

		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)

		c.Next()
	}
}
