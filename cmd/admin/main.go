package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
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
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "admin",
		Short:         "person-registry admin tools",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "config file path")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "run the admin HTTP API",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(config.Load(configPath))
			},
		},
		newTokenCmd(&configPath),
	)
	return root
}

func newTokenCmd(configPath *string) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "print an admin bearer token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load(*configPath)
			j := &auth.JWTer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, TTL: ttl}
			tok, err := j.Issue("admin", auth.RoleAdmin)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}

func serve(cfg *config.Config) error {
	log, cleanup := logger.FromConfig("person-admin", cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	kv, closeKV, err := storage.Open(cfg, log)
	if err != nil {
		log.Error("storage open", zap.Error(err))
		return err
	}
	defer closeKV()

	// 依赖
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
	ws := person.NewWorkspaces(kv, person.WorkspacesOptions{
		KeyPrefix: cfg.Storage.KeyPrefix,
		PageSize:  cfg.View.PageSize,
		Locale:    cfg.View.Locale,
	}, log)
	adminH := handler.NewAdminHandler(ws)

	// 路由（后台端）
	r := router.NewAdminEngine(log, adminH, jwter)

	// HTTP Server
	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second)

	// 启动前打印可点击地址
	host4human := cfg.App.Admin.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	// 异步启动；失败立即标红退出
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()
	log.Info("admin api started SUCCESS")

	// 关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("admin api stopped gracefully")
	return nil
}
