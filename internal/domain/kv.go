package domain

import (
	"context"
	"errors"
)

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrQuotaExceeded      = errors.New("storage quota exceeded")
)

// KVStore 持久化键值存储（相当于浏览器 localStorage）
// Get 查不到时返回 ok=false, err=nil
type KVStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
