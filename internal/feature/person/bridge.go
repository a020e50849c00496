package person

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"person-registry/internal/domain"
)

const (
	KeyPersons  = "persons"
	KeyLanguage = "language"
)

type Language string

const (
	LangTH Language = "th"
	LangEN Language = "en"
)

func (l Language) Valid() bool { return l == LangTH || l == LangEN }

var ErrMalformedPersons = errors.New("stored persons malformed")

// ParsePersons 解析存储内容。空串算空集合；非数组（包括 null）都算坏数据
func ParsePersons(raw string) ([]domain.Person, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []domain.Person{}, nil
	}
	var persons []domain.Person
	if err := json.Unmarshal([]byte(raw), &persons); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPersons, err)
	}
	if persons == nil {
		return nil, fmt.Errorf("%w: null", ErrMalformedPersons)
	}
	return persons, nil
}

// Bridge 把记录库同步到 KV 存储。
// 所有失败都在这里吞掉并记日志，最坏情况是丢数据，不会报错给调用方。
type Bridge struct {
	kv     domain.KVStore
	prefix string
	log    *zap.Logger
}

// NewBridge prefix 为空时直接使用固定 key（"persons" / "language"）
func NewBridge(kv domain.KVStore, prefix string, l *zap.Logger) *Bridge {
	if l == nil {
		l = zap.NewNop()
	}
	return &Bridge{kv: kv, prefix: prefix, log: l}
}

func (b *Bridge) key(name string) string {
	if b.prefix == "" {
		return name
	}
	return b.prefix + ":" + name
}

// Load 读取并解析集合；不存在/格式不对/存储不可用都返回空集合
func (b *Bridge) Load(ctx context.Context) []domain.Person {
	if b.kv == nil {
		return []domain.Person{}
	}
	key := b.key(KeyPersons)
	raw, ok, err := b.kv.Get(ctx, key)
	if err != nil {
		storageFailures.WithLabelValues("load").Inc()
		b.log.Warn("load persons failed, starting empty", zap.String("key", key), zap.Error(err))
		return []domain.Person{}
	}
	if !ok {
		return []domain.Person{}
	}
	persons, err := ParsePersons(raw)
	if err != nil {
		storageFailures.WithLabelValues("parse").Inc()
		b.log.Warn("stored persons malformed, starting empty", zap.String("key", key), zap.Error(err))
		return []domain.Person{}
	}
	return persons
}

// Save 整体覆盖写入
func (b *Bridge) Save(ctx context.Context, persons []domain.Person) {
	if b.kv == nil {
		return
	}
	if persons == nil {
		persons = []domain.Person{}
	}
	key := b.key(KeyPersons)
	buf, err := json.Marshal(persons)
	if err != nil {
		storageFailures.WithLabelValues("encode").Inc()
		b.log.Error("encode persons failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := b.kv.Set(ctx, key, string(buf)); err != nil {
		storageFailures.WithLabelValues("save").Inc()
		b.log.Warn("save persons failed", zap.String("key", key), zap.Int("bytes", len(buf)), zap.Error(err))
		return
	}
	persistedBytes.Observe(float64(len(buf)))
}

// Has key 存在且不是空数组
func (b *Bridge) Has(ctx context.Context) bool {
	if b.kv == nil {
		return false
	}
	raw, ok, err := b.kv.Get(ctx, b.key(KeyPersons))
	if err != nil {
		storageFailures.WithLabelValues("has").Inc()
		b.log.Warn("check persons failed", zap.Error(err))
		return false
	}
	return ok && strings.TrimSpace(raw) != "" && strings.TrimSpace(raw) != "[]"
}

// Raw 原样返回存储内容（管理端排查用）
func (b *Bridge) Raw(ctx context.Context) (string, bool) {
	if b.kv == nil {
		return "", false
	}
	raw, ok, err := b.kv.Get(ctx, b.key(KeyPersons))
	if err != nil {
		storageFailures.WithLabelValues("raw").Inc()
		b.log.Warn("read raw persons failed", zap.Error(err))
		return "", false
	}
	return raw, ok
}

func (b *Bridge) Clear(ctx context.Context) {
	if b.kv == nil {
		return
	}
	if err := b.kv.Delete(ctx, b.key(KeyPersons)); err != nil {
		storageFailures.WithLabelValues("clear").Inc()
		b.log.Warn("clear persons failed", zap.Error(err))
	}
}

// LoadLanguage 默认泰语
func (b *Bridge) LoadLanguage(ctx context.Context) Language {
	if b.kv == nil {
		return LangTH
	}
	raw, ok, err := b.kv.Get(ctx, b.key(KeyLanguage))
	if err != nil {
		storageFailures.WithLabelValues("load_language").Inc()
		b.log.Warn("load language failed", zap.Error(err))
		return LangTH
	}
	if l := Language(strings.TrimSpace(raw)); ok && l.Valid() {
		return l
	}
	return LangTH
}

func (b *Bridge) SaveLanguage(ctx context.Context, l Language) {
	if b.kv == nil {
		return
	}
	if err := b.kv.Set(ctx, b.key(KeyLanguage), string(l)); err != nil {
		storageFailures.WithLabelValues("save_language").Inc()
		b.log.Warn("save language failed", zap.Error(err))
	}
}
