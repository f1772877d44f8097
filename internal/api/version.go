package api

import (
	"github.com/gin-gonic/gin"
)

// Version 服务版本,构建时通过 -ldflags 注入
var Version = "dev"

// VersionMiddleware 在响应头中携带服务版本
func VersionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Service-Version", Version)
		c.Next()
	}
}
