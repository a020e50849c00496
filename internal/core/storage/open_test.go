package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"person-registry/internal/core/config"
	"person-registry/internal/repo"
)

func TestOpen_Memory(t *testing.T) {
	kv, cleanup, err := Open(&config.Config{Storage: config.Storage{Driver: "memory"}}, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &repo.MemoryKV{}, kv)
}

func TestOpen_GormSQLiteMigrates(t *testing.T) {
	cfg := &config.Config{
		Storage: config.Storage{Driver: "gorm"},
		DB: config.DB{
			Driver:       "sqlite",
			DSN:          "file:storage_open_test?mode=memory&cache=shared",
			MaxOpenConns: 1,
			AutoMigrate:  true,
			LogLevel:     "silent",
		},
	}
	kv, cleanup, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "k", "v"))
	v, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestOpen_RedisUnreachableStillOpens(t *testing.T) {
	cfg := &config.Config{
		Storage: config.Storage{Driver: "redis"},
		Redis:   config.Redis{Addr: "127.0.0.1:1"},
	}
	kv, cleanup, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &repo.RedisKV{}, kv)
}

func TestOpen_Unknown(t *testing.T) {
	_, _, err := Open(&config.Config{Storage: config.Storage{Driver: "s3"}}, zap.NewNop())
	assert.ErrorContains(t, err, "s3")
}
