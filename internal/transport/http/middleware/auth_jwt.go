package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"person-registry/internal/core/auth"
	resp "person-registry/internal/transport/http/response"
)

const (
	KeyClaims    = "claims"
	KeyWorkspace = "workspace"
	KeyRole      = "role"
)

func deny(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(http.StatusOK, resp.Error(code, msg))
}

// AuthJWT 校验 Bearer token，把工作区和角色放进上下文。
// requireRole 为空时任意角色可通过。
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			deny(c, resp.CodeUnauthorized, "missing token")
			return
		}
		claims, err := j.Parse(raw)
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			// 前端据此重新领取 session
			deny(c, resp.CodeUnauthorized, "token expired")
			return
		case err != nil:
			deny(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			deny(c, resp.CodeForbidden, "")
			return
		}
		c.Set(KeyClaims, claims)
		c.Set(KeyWorkspace, claims.Workspace)
		c.Set(KeyRole, claims.Role)
		c.Next()
	}
}
