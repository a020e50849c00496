package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"person-registry/internal/core/auth"
	"person-registry/internal/core/server"
	"person-registry/internal/transport/http/handler"
	mdw "person-registry/internal/transport/http/middleware"
)

func NewAdminEngine(l *zap.Logger, adminH *handler.AdminHandler, jwter *auth.JWTer) *gin.Engine {
	r := server.NewRouter(l, nil)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(50, 100),
		mdw.ConcurrencyLimit(20, time.Second),
		mdw.MaxBodyBytes(64<<10),
		mdw.Timeout(10*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(l, "/health"),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, auth.RoleAdmin))

	MountAllAdmin(admin, adminH)

	return r
}
