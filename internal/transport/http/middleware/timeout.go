package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	resp "person-registry/internal/transport/http/response"
)

// Timeout 给请求 ctx 加截止时间。存储读写都带这个 ctx（redis / gorm），
// 超时的写入会被存储层放弃，处理函数照常返回。
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if c.Writer.Written() {
			return
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			timeoutsTotal.Inc()
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeTimeout, "timeout"))
		}
	}
}
