package middleware

import (
	"github.com/gin-gonic/gin"

	"person-registry/pkg/utils"
)

const KeyRequestID = "X-Request-ID"

// 上游传入的 ID 超长或带奇怪字符时不信任，重新生成
func validRequestID(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}
	for _, r := range s {
		ok := r == '-' || r == '_' || r == '.' ||
			(r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !ok {
			return false
		}
	}
	return true
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(KeyRequestID)
		if !validRequestID(rid) {
			rid = utils.NewID()
		}
		c.Header(KeyRequestID, rid)
		c.Set(KeyRequestID, rid)
		c.Next()
	}
}
