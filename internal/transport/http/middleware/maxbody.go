package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	resp "person-registry/internal/transport/http/response"
)

// MaxBodyBytes 请求体上限；Content-Length 已超限的直接拒绝，
// 其余交给 MaxBytesReader 在读取时截断（绑定失败由 ez 层返回 400）
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodePayloadTooLarge, ""))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

// IsBodyTooLarge 绑定错误是否由 MaxBodyBytes 截断引起
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
