package middleware

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

// RequestIDHeader 请求ID响应头
const RequestIDHeader = "X-Request-ID"

// RequestID 为每个请求生成雪花ID，客户端传入的ID会被沿用
func RequestID(node *snowflake.Node) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = node.Generate().String()
		}
		c.Set("requestID", requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}
