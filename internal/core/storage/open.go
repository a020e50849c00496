package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"person-registry/internal/core/cache"
	"person-registry/internal/core/config"
	"person-registry/internal/core/database"
	"person-registry/internal/domain"
	"person-registry/internal/repo"
)

// Open 按 cfg.Storage.Driver 选择 KV 后端；返回的 cleanup 负责关闭连接
func Open(cfg *config.Config, l *zap.Logger) (domain.KVStore, func(), error) {
	switch cfg.Storage.Driver {
	case "", "memory":
		l.Warn("using in-memory storage, data is lost on restart")
		return repo.NewMemoryKV(cfg.Storage.MemoryMaxBytes), func() {}, nil

	case "redis":
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		// 连不上也继续：读写会降级为空集合 / 丢弃写入
		if err := c.Ping(ctx); err != nil {
			l.Warn("redis ping failed, storage degraded", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		return repo.NewRedisKV(c.RDB), func() { _ = c.Close() }, nil

	case "gorm":
		db, err := database.NewGorm(database.Opts{
			Driver:             cfg.DB.Driver,
			DSN:                cfg.DB.DSN,
			Username:           cfg.DB.Username,
			Password:           cfg.DB.Password,
			MaxOpenConns:       cfg.DB.MaxOpenConns,
			MaxIdleConns:       cfg.DB.MaxIdleConns,
			ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
			LogLevel:           cfg.DB.LogLevel,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("db open: %w", err)
		}
		l.Info("database connected", zap.String("driver", cfg.DB.Driver))
		kv := repo.NewGormKV(db)
		if cfg.DB.AutoMigrate {
			if err := kv.Migrate(); err != nil {
				return nil, nil, fmt.Errorf("automigrate: %w", err)
			}
			l.Info("automigrate done")
		}
		cleanup := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return kv, cleanup, nil
	}
	return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}
