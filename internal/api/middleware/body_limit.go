package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajib3777/academia-sub001/pkg/response"
)

// BodyLimit 请求体大小限制
// Content-Length 已超限的请求直接返回 413；未声明长度的请求体由 MaxBytesReader 截断，
// 超出部分在绑定阶段以参数错误返回。
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
