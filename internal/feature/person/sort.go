package person

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"person-registry/internal/domain"
)

type SortField string

const (
	SortNone        SortField = ""
	SortName        SortField = "name"
	SortGender      SortField = "gender"
	SortPhone       SortField = "phone"
	SortNationality SortField = "nationality"
)

func (f SortField) Valid() bool {
	switch f {
	case SortNone, SortName, SortGender, SortPhone, SortNationality:
		return true
	}
	return false
}

type SortOrder string

const (
	OrderNone SortOrder = ""
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

func (o SortOrder) Valid() bool { return o == OrderNone || o == OrderAsc || o == OrderDesc }

func sortKey(f SortField, p domain.Person) string {
	switch f {
	case SortName:
		return p.FullName()
	case SortGender:
		return string(p.Gender)
	case SortPhone:
		return p.Phone
	case SortNationality:
		return p.Nationality
	}
	return ""
}

// compareIDs 时间戳 ID 按数值比较：先比长度再比字典序
func compareIDs(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Sorted 返回排序后的副本（稳定排序）。
// 未指定字段或方向时默认最新创建的在前。
func Sorted(persons []domain.Person, field SortField, order SortOrder, tag language.Tag) []domain.Person {
	out := append([]domain.Person(nil), persons...)
	if field == SortNone || order == OrderNone {
		slices.SortStableFunc(out, func(a, b domain.Person) int { return compareIDs(b.ID, a.ID) })
		return out
	}
	// Collator 非并发安全，每次排序单独建
	col := collate.New(tag)
	slices.SortStableFunc(out, func(a, b domain.Person) int {
		c := col.CompareString(sortKey(field, a), sortKey(field, b))
		if order == OrderDesc {
			return -c
		}
		return c
	})
	return out
}
