package person

import "person-registry/internal/domain"

// ---------- reducers：纯函数，输入旧集合返回新集合 ----------

func addPerson(state []domain.Person, p domain.Person) []domain.Person {
	out := make([]domain.Person, 0, len(state)+1)
	out = append(out, state...)
	return append(out, p)
}

func updatePerson(state []domain.Person, id string, patch domain.PersonPatch) ([]domain.Person, bool) {
	for i := range state {
		if state[i].ID != id {
			continue
		}
		out := append([]domain.Person(nil), state...)
		out[i] = patch.Apply(state[i])
		return out, true
	}
	return state, false
}

func deletePersons(state []domain.Person, ids map[string]struct{}) ([]domain.Person, int) {
	out := make([]domain.Person, 0, len(state))
	for _, p := range state {
		if _, ok := ids[p.ID]; ok {
			continue
		}
		out = append(out, p)
	}
	return out, len(state) - len(out)
}

// Store 记录库：唯一数据源，只能通过下面的方法修改。
// 本身不加锁，调用方（Session）负责串行化。
type Store struct {
	persons  []domain.Person
	ids      *IDGen
	onChange func([]domain.Person)
}

// NewStore 以初始快照构造；onChange 在每次实际修改后收到完整集合
func NewStore(initial []domain.Person, ids *IDGen, onChange func([]domain.Person)) *Store {
	if ids == nil {
		ids = NewIDGen()
	}
	s := &Store{ids: ids, onChange: onChange}
	s.replace(initial)
	return s
}

func (s *Store) replace(persons []domain.Person) {
	s.persons = append([]domain.Person(nil), persons...)
	for _, p := range s.persons {
		s.ids.Observe(p.ID)
	}
}

func (s *Store) commit(next []domain.Person) {
	s.persons = next
	if s.onChange != nil {
		s.onChange(s.List())
	}
}

// Add 追加一条新记录，ID 由生成器分配（入参里的 ID 被忽略）
func (s *Store) Add(p domain.Person) domain.Person {
	p.ID = s.ids.Next()
	p = p.WithDerived()
	s.commit(addPerson(s.persons, p))
	return p
}

// Update 找不到 id 时不做任何事，返回 false
func (s *Store) Update(id string, patch domain.PersonPatch) (domain.Person, bool) {
	next, ok := updatePerson(s.persons, id, patch)
	if !ok {
		return domain.Person{}, false
	}
	s.commit(next)
	p, _ := s.Get(id)
	return p, true
}

func (s *Store) Delete(id string) bool {
	return s.DeleteMany([]string{id}) == 1
}

// DeleteMany 返回实际删除的条数；为 0 时不触发持久化
func (s *Store) DeleteMany(ids []string) int {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	next, n := deletePersons(s.persons, set)
	if n > 0 {
		s.commit(next)
	}
	return n
}

func (s *Store) ReplaceAll(persons []domain.Person) {
	s.replace(persons)
	if s.onChange != nil {
		s.onChange(s.List())
	}
}

// List 返回按插入顺序的副本
func (s *Store) List() []domain.Person {
	return append([]domain.Person(nil), s.persons...)
}

func (s *Store) Get(id string) (domain.Person, bool) {
	for _, p := range s.persons {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Person{}, false
}

func (s *Store) Len() int { return len(s.persons) }
