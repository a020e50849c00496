package person

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"person-registry/internal/domain"
)

type SessionOptions struct {
	PageSize int
	Locale   language.Tag
	Logger   *zap.Logger
}

// Session 一个工作区（相当于一个浏览器标签页）：记录库 + 持久化 + 视图状态。
// 所有操作串行执行，一次跑完再处理下一次。
type Session struct {
	mu     sync.Mutex
	store  *Store
	bridge *Bridge
	view   *ViewState
	lang   Language
	log    *zap.Logger

	// 当前操作的 ctx，供 onChange 写存储时使用（只在持锁期间有效）
	opCtx context.Context
}

// NewSession 启动时从 bridge 读出快照作为初始集合
func NewSession(ctx context.Context, bridge *Bridge, opt SessionOptions) *Session {
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	s := &Session{
		bridge: bridge,
		view:   NewViewState(opt.PageSize, opt.Locale),
		log:    opt.Logger,
	}
	s.store = NewStore(bridge.Load(ctx), NewIDGen(), s.persist)
	s.lang = bridge.LoadLanguage(ctx)
	return s
}

func (s *Session) persist(all []domain.Person) {
	ctx := s.opCtx
	if ctx == nil {
		ctx = context.Background()
	}
	s.bridge.Save(ctx, all)
}

// run 持锁执行 fn，并把 ctx 交给持久化回调
func (s *Session) run(ctx context.Context, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opCtx = ctx
	defer func() { s.opCtx = nil }()
	fn()
}

func (s *Session) View(ctx context.Context) PageView {
	var pv PageView
	s.run(ctx, func() { pv = s.view.Project(s.store.List()) })
	return pv
}

func (s *Session) List(ctx context.Context) []domain.Person {
	var out []domain.Person
	s.run(ctx, func() { out = s.store.List() })
	return out
}

func (s *Session) Get(ctx context.Context, id string) (domain.Person, bool) {
	var (
		p  domain.Person
		ok bool
	)
	s.run(ctx, func() { p, ok = s.store.Get(id) })
	return p, ok
}

func (s *Session) SetPage(ctx context.Context, page int) PageView {
	var pv PageView
	s.run(ctx, func() {
		s.view.SetPage(page, s.store.Len())
		pv = s.view.Project(s.store.List())
	})
	return pv
}

func (s *Session) SetPageSize(ctx context.Context, size int) PageView {
	var pv PageView
	s.run(ctx, func() {
		s.view.SetPageSize(size, s.store.Len())
		pv = s.view.Project(s.store.List())
	})
	return pv
}

func (s *Session) SetSort(ctx context.Context, field SortField, order SortOrder) PageView {
	var pv PageView
	s.run(ctx, func() {
		s.view.SetSort(field, order)
		pv = s.view.Project(s.store.List())
	})
	return pv
}

// Add 直接新增（不看编辑态）
func (s *Session) Add(ctx context.Context, p domain.Person) domain.Person {
	var out domain.Person
	s.run(ctx, func() {
		out = s.store.Add(p)
		observeOp("add", true)
	})
	return out
}

// ErrEditTargetGone 提交时被编辑的记录已被删除
var ErrEditTargetGone = errors.New("edited person no longer exists")

// Submit 编辑态下更新被编辑的记录，否则新增；提交后退出编辑态
func (s *Session) Submit(ctx context.Context, f Form) (p domain.Person, updated bool, err error) {
	if err = f.Validate(); err != nil {
		return domain.Person{}, false, err
	}
	s.run(ctx, func() {
		if s.view.Editing == nil {
			p = s.store.Add(f.Person())
			observeOp("add", true)
			return
		}
		id := s.view.Editing.ID
		s.view.CancelEdit()
		var ok bool
		p, ok = s.store.Update(id, f.Patch())
		observeOp("update", ok)
		if !ok {
			// 不落库也不新增，交给调用方决定怎么提示
			s.log.Debug("submit on vanished record", zap.String("id", id))
			err = ErrEditTargetGone
			return
		}
		updated = true
		s.view.RecentlyUpdated = id
	})
	return p, updated, err
}

// Update 按 id 更新；找不到返回 false
func (s *Session) Update(ctx context.Context, id string, patch domain.PersonPatch) (domain.Person, bool) {
	var (
		p  domain.Person
		ok bool
	)
	s.run(ctx, func() {
		p, ok = s.store.Update(id, patch)
		observeOp("update", ok)
		if ok {
			s.view.RecentlyUpdated = id
			if s.view.Editing != nil && s.view.Editing.ID == id {
				s.view.BeginEdit(p)
			}
		}
	})
	return p, ok
}

func (s *Session) Delete(ctx context.Context, id string) bool {
	var ok bool
	s.run(ctx, func() {
		ok = s.store.Delete(id)
		observeOp("delete", ok)
		s.view.Forget(id)
		s.view.Clamp(s.store.Len())
	})
	return ok
}

func (s *Session) DeleteMany(ctx context.Context, ids []string) int {
	var n int
	s.run(ctx, func() {
		n = s.store.DeleteMany(ids)
		observeOp("delete_many", n > 0)
		s.view.Forget(ids...)
		s.view.Clamp(s.store.Len())
	})
	return n
}

// DeleteSelected 删除选中的记录并清空选择
func (s *Session) DeleteSelected(ctx context.Context) int {
	var n int
	s.run(ctx, func() {
		ids := s.view.SelectedIDs(s.store.List())
		n = s.store.DeleteMany(ids)
		observeOp("delete_selected", n > 0)
		s.view.Forget(ids...)
		s.view.ClearSelection()
		s.view.Clamp(s.store.Len())
	})
	return n
}

func (s *Session) ToggleSelect(ctx context.Context, id string) (selected bool, found bool) {
	s.run(ctx, func() {
		if _, found = s.store.Get(id); !found {
			return
		}
		selected = s.view.Toggle(id)
	})
	return selected, found
}

func (s *Session) SelectAll(ctx context.Context) []string {
	var ids []string
	s.run(ctx, func() {
		all := s.store.List()
		s.view.SelectAll(all)
		ids = s.view.SelectedIDs(all)
	})
	return ids
}

func (s *Session) ClearSelection(ctx context.Context) {
	s.run(ctx, func() { s.view.ClearSelection() })
}

// BeginEdit 进入编辑态，返回用于回填表单的快照
func (s *Session) BeginEdit(ctx context.Context, id string) (Form, bool) {
	var (
		f  Form
		ok bool
	)
	s.run(ctx, func() {
		var p domain.Person
		if p, ok = s.store.Get(id); !ok {
			return
		}
		s.view.BeginEdit(p)
		f = FormFrom(p)
	})
	return f, ok
}

// Editing 当前编辑中的记录快照
func (s *Session) Editing(ctx context.Context) (domain.Person, bool) {
	var (
		p  domain.Person
		ok bool
	)
	s.run(ctx, func() {
		if s.view.Editing != nil {
			p, ok = *s.view.Editing, true
		}
	})
	return p, ok
}

func (s *Session) CancelEdit(ctx context.Context) {
	s.run(ctx, func() { s.view.CancelEdit() })
}

func (s *Session) Language(ctx context.Context) Language {
	var l Language
	s.run(ctx, func() { l = s.lang })
	return l
}

func (s *Session) SetLanguage(ctx context.Context, l Language) bool {
	if !l.Valid() {
		return false
	}
	s.run(ctx, func() {
		s.lang = l
		s.bridge.SaveLanguage(ctx, l)
	})
	return true
}

// Reload 丢弃内存集合，用存储里的快照整体替换（视图状态回到默认）
func (s *Session) Reload(ctx context.Context) {
	s.run(ctx, func() {
		s.store.ReplaceAll(s.bridge.Load(ctx))
		s.view = NewViewState(s.view.PageSize, s.view.locale)
		s.lang = s.bridge.LoadLanguage(ctx)
	})
}
