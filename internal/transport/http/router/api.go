package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"person-registry/internal/core/auth"
	"person-registry/internal/core/server"
	"person-registry/internal/transport/http/handler"
	mdw "person-registry/internal/transport/http/middleware"
)

func NewAPIEngine(l *zap.Logger, corsOrigins []string, personH *handler.PersonHandler, jwter *auth.JWTer) *gin.Engine {
	r := server.NewRouter(l, corsOrigins)

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300, 2*time.Second),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(l, "/health", "/metrics"),
	)

	// 健康检查 / 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 前缀
	api := r.Group("/api/v1")

	// 公共：领取工作区 token
	personH.MountPublic(api)

	// 鉴权分组：工作区来自 token
	authed := api.Group("")
	authed.Use(
		mdw.AuthJWT(jwter, ""),
		// 单个工作区限速，防止前端死循环刷写存储
		mdw.RateLimitPerKey(20, 40, func(c *gin.Context) string { return c.GetString(mdw.KeyWorkspace) }),
	)
	MountAllAPI(authed, personH)

	return r
}
