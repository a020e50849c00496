package person

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"person-registry/internal/domain"
)

type WorkspacesOptions struct {
	KeyPrefix string
	PageSize  int
	Locale    string
	IdleTTL   time.Duration // 超过该时长无访问的 Session 被 Sweep 丢弃；0 不回收
}

type entry struct {
	s    *Session
	seen atomic.Int64 // 最近访问，UnixNano
}

// Workspaces 按客户端 ID 惰性创建 Session，每个工作区只从存储加载一次
type Workspaces struct {
	kv     domain.KVStore
	opt    WorkspacesOptions
	locale language.Tag
	log    *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*entry
	sf       singleflight.Group
	now      func() time.Time
}

func NewWorkspaces(kv domain.KVStore, opt WorkspacesOptions, l *zap.Logger) *Workspaces {
	if l == nil {
		l = zap.NewNop()
	}
	tag, err := language.Parse(opt.Locale)
	if err != nil {
		tag = language.Thai
	}
	return &Workspaces{kv: kv, opt: opt, locale: tag, log: l, sessions: map[string]*entry{}, now: time.Now}
}

func (w *Workspaces) bridgeFor(id string) *Bridge {
	prefix := id
	if w.opt.KeyPrefix != "" {
		prefix = w.opt.KeyPrefix + ":" + id
	}
	return NewBridge(w.kv, prefix, w.log.With(zap.String("workspace", id)))
}

// Get 取工作区；首次访问时从存储加载（并发首访合并为一次加载）
func (w *Workspaces) Get(ctx context.Context, id string) *Session {
	w.mu.RLock()
	e, ok := w.sessions[id]
	w.mu.RUnlock()
	if ok {
		e.seen.Store(w.now().UnixNano())
		return e.s
	}
	v, _, _ := w.sf.Do(id, func() (any, error) {
		w.mu.RLock()
		e, ok := w.sessions[id]
		w.mu.RUnlock()
		if ok {
			return e, nil
		}
		// 加载不跟随单个请求取消
		e = &entry{s: NewSession(context.WithoutCancel(ctx), w.bridgeFor(id), SessionOptions{
			PageSize: w.opt.PageSize,
			Locale:   w.locale,
			Logger:   w.log.With(zap.String("workspace", id)),
		})}
		e.seen.Store(w.now().UnixNano())
		w.mu.Lock()
		w.sessions[id] = e
		workspacesLoaded.Set(float64(len(w.sessions)))
		w.mu.Unlock()
		return e, nil
	})
	e = v.(*entry)
	e.seen.Store(w.now().UnixNano())
	return e.s
}

// Bridge 不加载 Session，直接访问某工作区的存储
func (w *Workspaces) Bridge(id string) *Bridge { return w.bridgeFor(id) }

// Evict 丢弃内存中的 Session，下次访问重新加载
func (w *Workspaces) Evict(id string) {
	w.mu.Lock()
	delete(w.sessions, id)
	workspacesLoaded.Set(float64(len(w.sessions)))
	w.mu.Unlock()
}

// Sweep 丢弃闲置超过 IdleTTL 的 Session，返回丢弃个数。
// 记录每次变更都已落盘，丢掉的只有分页/选择/编辑这些视图状态。
func (w *Workspaces) Sweep() int {
	if w.opt.IdleTTL <= 0 {
		return 0
	}
	cutoff := w.now().Add(-w.opt.IdleTTL).UnixNano()
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for id, e := range w.sessions {
		if e.seen.Load() < cutoff {
			delete(w.sessions, id)
			n++
		}
	}
	workspacesLoaded.Set(float64(len(w.sessions)))
	return n
}

// Janitor 每隔 every 执行一次 Sweep，ctx 取消后退出
func (w *Workspaces) Janitor(ctx context.Context, every time.Duration) {
	if w.opt.IdleTTL <= 0 || every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := w.Sweep(); n > 0 {
				w.log.Info("idle workspaces evicted", zap.Int("count", n), zap.Int("remaining", w.Len()))
			}
		}
	}
}

func (w *Workspaces) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.sessions)
}
