package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "person-registry/internal/transport/http/response"
)

// ConcurrencyLimit 同时处理的请求数上限（每个写请求都会落一次存储）。
// 名额满时最多排队 wait，超时返回 busy。
func ConcurrencyLimit(limit int64, wait time.Duration) gin.HandlerFunc {
	sem := semaphore.NewWeighted(limit)
	return func(c *gin.Context) {
		if !sem.TryAcquire(1) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), wait)
			err := sem.Acquire(ctx, 1)
			cancel()
			if err != nil {
				c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnavailable, "server busy"))
				return
			}
		}
		defer sem.Release(1)
		c.Next()
	}
}
