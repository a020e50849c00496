package repo

import (
	"context"
	"sync"

	"person-registry/internal/domain"
)

// MemoryKV 进程内 KV，可选容量上限（模拟 localStorage 配额）
type MemoryKV struct {
	mu       sync.RWMutex
	data     map[string]string
	maxBytes int
}

// NewMemoryKV maxBytes<=0 表示不限
func NewMemoryKV(maxBytes int) *MemoryKV {
	return &MemoryKV{data: map[string]string{}, maxBytes: maxBytes}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxBytes > 0 {
		used := len(key) + len(value)
		for k, v := range m.data {
			if k != key {
				used += len(k) + len(v)
			}
		}
		if used > m.maxBytes {
			return domain.ErrQuotaExceeded
		}
	}
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
