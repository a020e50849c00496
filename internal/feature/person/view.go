package person

import (
	"golang.org/x/text/language"

	"person-registry/internal/domain"
)

const DefaultPageSize = 10

// ViewState 纯 UI 状态，不持久化；重启后回到默认值
type ViewState struct {
	Page      int
	PageSize  int
	SortField SortField
	SortOrder SortOrder
	Selected  map[string]struct{}
	Editing   *domain.Person
	// 最近一次更新的记录（前端高亮用）
	RecentlyUpdated string

	locale language.Tag
}

func NewViewState(pageSize int, locale language.Tag) *ViewState {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ViewState{Page: 1, PageSize: pageSize, Selected: map[string]struct{}{}, locale: locale}
}

// PageView 一页的投影结果
type PageView struct {
	Items     []domain.Person `json:"items"`
	Total     int             `json:"total"`
	Page      int             `json:"page"`
	PageSize  int             `json:"pageSize"`
	Pages     int             `json:"pages"`
	SortField SortField       `json:"sortField"`
	SortOrder SortOrder       `json:"sortOrder"`
	Selected  []string        `json:"selected"`
	Editing   string          `json:"editing,omitempty"`
	Recent    string          `json:"recentlyUpdated,omitempty"`
}

// PageCount ceil(n/size)
func PageCount(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Slice 取第 page 页 [(page-1)*size, page*size)，越界截断
func Slice(sorted []domain.Person, page, size int) []domain.Person {
	if page < 1 || size <= 0 {
		return []domain.Person{}
	}
	start := (page - 1) * size
	if start >= len(sorted) {
		return []domain.Person{}
	}
	end := min(start+size, len(sorted))
	return append([]domain.Person(nil), sorted[start:end]...)
}

// Clamp 集合缩小后把当前页拉回最后一页；空集合回到第 1 页
func (v *ViewState) Clamp(total int) {
	pages := PageCount(total, v.PageSize)
	if pages == 0 {
		v.Page = 1
		return
	}
	if v.Page > pages {
		v.Page = pages
	}
	if v.Page < 1 {
		v.Page = 1
	}
}

func (v *ViewState) SetPage(page int, total int) {
	v.Page = page
	v.Clamp(total)
}

func (v *ViewState) SetPageSize(size int, total int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	v.PageSize = size
	v.Clamp(total)
}

// SetSort 方向为空表示取消排序（回到默认顺序）
func (v *ViewState) SetSort(field SortField, order SortOrder) {
	if field == SortNone {
		order = OrderNone
	}
	v.SortField, v.SortOrder = field, order
}

// Visible 当前页（每次从完整集合重新计算）
func (v *ViewState) Visible(all []domain.Person) []domain.Person {
	sorted := Sorted(all, v.SortField, v.SortOrder, v.locale)
	return Slice(sorted, v.Page, v.PageSize)
}

func (v *ViewState) Project(all []domain.Person) PageView {
	v.Clamp(len(all))
	pv := PageView{
		Items:     v.Visible(all),
		Total:     len(all),
		Page:      v.Page,
		PageSize:  v.PageSize,
		Pages:     PageCount(len(all), v.PageSize),
		SortField: v.SortField,
		SortOrder: v.SortOrder,
		Selected:  v.SelectedIDs(all),
		Recent:    v.RecentlyUpdated,
	}
	if v.Editing != nil {
		pv.Editing = v.Editing.ID
	}
	return pv
}

// ---------- 选择 ----------

func (v *ViewState) Toggle(id string) bool {
	if _, ok := v.Selected[id]; ok {
		delete(v.Selected, id)
		return false
	}
	v.Selected[id] = struct{}{}
	return true
}

// SelectAll 选中当前可见页的全部记录
func (v *ViewState) SelectAll(all []domain.Person) {
	v.Selected = map[string]struct{}{}
	for _, p := range v.Visible(all) {
		v.Selected[p.ID] = struct{}{}
	}
}

func (v *ViewState) ClearSelection() { v.Selected = map[string]struct{}{} }

// Forget 删除后的副作用：从选择集/编辑态里移除
func (v *ViewState) Forget(ids ...string) {
	for _, id := range ids {
		delete(v.Selected, id)
		if v.Editing != nil && v.Editing.ID == id {
			v.Editing = nil
		}
		if v.RecentlyUpdated == id {
			v.RecentlyUpdated = ""
		}
	}
}

// SelectedIDs 按集合顺序输出，保证结果稳定
func (v *ViewState) SelectedIDs(all []domain.Person) []string {
	out := make([]string, 0, len(v.Selected))
	for _, p := range all {
		if _, ok := v.Selected[p.ID]; ok {
			out = append(out, p.ID)
		}
	}
	return out
}

// ---------- 编辑态 ----------

func (v *ViewState) BeginEdit(p domain.Person) { snap := p; v.Editing = &snap }

func (v *ViewState) CancelEdit() { v.Editing = nil }
