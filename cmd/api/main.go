package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"person-registry/internal/core/auth"
	"person-registry/internal/core/config"
	"person-registry/internal/core/logger"
	"person-registry/internal/core/server"
	"person-registry/internal/core/storage"
	"person-registry/internal/feature/person"
	"person-registry/internal/transport/http/handler"
	"person-registry/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig("person-api", cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	// 存储（失败直接 Fatal；运行期失败只降级）
	kv, closeKV, err := storage.Open(cfg, log)
	if err != nil {
		log.Fatal("storage open", zap.Error(err))
	}
	defer closeKV()
	log.Info("storage ready", zap.String("driver", cfg.Storage.Driver))

	// JWT
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	ws := person.NewWorkspaces(kv, person.WorkspacesOptions{
		KeyPrefix: cfg.Storage.KeyPrefix,
		PageSize:  cfg.View.PageSize,
		Locale:    cfg.View.Locale,
		IdleTTL:   time.Duration(cfg.Storage.SessionIdleMin) * time.Minute,
	}, log)
	// 闲置工作区定期回收
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go ws.Janitor(janitorCtx, time.Minute)

	personH := handler.NewPersonHandler(ws, jwter)

	r := router.NewAPIEngine(log, cfg.App.HTTP.CORSOrigins, personH, jwter)

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("person api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("person api start FAILED", zap.Error(err))
		}
	}()
	log.Info("person api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("person api stopped gracefully", zap.Int("workspaces", ws.Len()))
}
