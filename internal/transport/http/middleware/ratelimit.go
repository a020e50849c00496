package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "person-registry/internal/transport/http/response"
)

// RateLimit 全局令牌桶限速
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeTooManyRequests, "too many requests"))
	}
}

// RateLimitPerKey 按 key 限速（key 为空时退回客户端 IP）
func RateLimitPerKey(rps rate.Limit, burst int, keyOf func(*gin.Context) string) gin.HandlerFunc {
	var mu sync.Mutex
	buckets := make(map[string]*rate.Limiter)
	return func(c *gin.Context) {
		key := ""
		if keyOf != nil {
			key = keyOf(c)
		}
		if key == "" {
			key = c.ClientIP()
		}
		mu.Lock()
		lim, ok := buckets[key]
		if !ok {
			lim = rate.NewLimiter(rps, burst)
			buckets[key] = lim
		}
		mu.Unlock()
		if lim.Allow() {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeTooManyRequests, "too many requests"))
	}
}
