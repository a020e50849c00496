package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	RDB *redis.Client
}

func New(addr, pass string, db int) *Cache {
	return &Cache{
		RDB: redis.NewClient(&redis.Options{
			Addr:        addr,
			Password:    pass,
			DB:          db,
			DialTimeout: 2 * time.Second,
			// 读写超时短一些：存储是尽力而为，宁可降级也不要卡住请求
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		}),
	}
}

// Ping 启动时探活；失败只告警，不阻止启动
func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }
