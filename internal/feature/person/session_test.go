package person

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"person-registry/internal/domain"
	"person-registry/internal/repo"
)

func newTestSession(t *testing.T, kv domain.KVStore) *Session {
	t.Helper()
	return NewSession(context.Background(), NewBridge(kv, "", nil), SessionOptions{
		PageSize: 10,
		Locale:   language.English,
	})
}

func validForm(first string) Form {
	sal := decimal.NewFromInt(45000)
	return Form{
		Title:          domain.TitleMrs,
		FirstName:      first,
		LastName:       "Wongsa",
		Birthday:       "1988-05-17",
		Nationality:    "Thai",
		CitizenID1:     "1",
		CitizenID2:     "1037",
		CitizenID3:     "02071",
		CitizenID4:     "81",
		CitizenID5:     "1",
		Gender:         domain.GenderFemale,
		CountryCode:    "+66",
		MobilePhone:    "0812345678",
		ExpectedSalary: &sal,
	}
}

func storedIDs(t *testing.T, kv domain.KVStore) []string {
	t.Helper()
	raw, ok, err := kv.Get(context.Background(), KeyPersons)
	require.NoError(t, err)
	require.True(t, ok)
	var ps []domain.Person
	require.NoError(t, json.Unmarshal([]byte(raw), &ps))
	return ids(ps)
}

func TestSession_AddThenReloadRestores(t *testing.T) {
	ctx := context.Background()
	kv := repo.NewMemoryKV(0)

	s := newTestSession(t, kv)
	p, updated, err := s.Submit(ctx, validForm("Anong"))
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, "Mrs Anong Wongsa", p.Name)
	assert.Equal(t, "+660812345678", p.Phone)

	// 模拟刷新页面
	s2 := newTestSession(t, kv)
	got := s2.List(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, p.ID, got[0].ID)
	assert.Equal(t, "1-1037-02071-81-1", got[0].CitizenID.String())
}

func TestSession_EveryMutationPersists(t *testing.T) {
	ctx := context.Background()
	kv := repo.NewMemoryKV(0)
	s := newTestSession(t, kv)

	a := s.Add(ctx, samplePerson("Aa", "X"))
	b := s.Add(ctx, samplePerson("Bb", "X"))
	assert.ElementsMatch(t, []string{a.ID, b.ID}, storedIDs(t, kv))

	s.Delete(ctx, a.ID)
	assert.Equal(t, []string{b.ID}, storedIDs(t, kv))

	s.Delete(ctx, b.ID)
	assert.Empty(t, storedIDs(t, kv))
}

func TestSession_DeleteLastPageClampsToFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, repo.NewMemoryKV(0))
	for i := 0; i < 15; i++ {
		s.Add(ctx, samplePerson(fmt.Sprintf("Name%c", 'A'+i), "X"))
	}

	first := s.SetPage(ctx, 1).Items
	pv := s.SetPage(ctx, 2)
	require.Equal(t, 2, pv.Page)
	require.Len(t, pv.Items, 5)

	// 停在第 2 页时删除第 1 页的 10 条
	n := s.DeleteMany(ctx, ids(first))
	assert.Equal(t, 10, n)

	pv = s.View(ctx)
	assert.Equal(t, 1, pv.Page)
	assert.Equal(t, 5, pv.Total)
	assert.Len(t, pv.Items, 5)
}

func TestSession_PageClampsWhenOnRemovedPage(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, repo.NewMemoryKV(0))
	for i := 0; i < 11; i++ {
		s.Add(ctx, samplePerson("Name", "X"))
	}
	pv := s.SetPage(ctx, 2)
	require.Len(t, pv.Items, 1)

	require.True(t, s.Delete(ctx, pv.Items[0].ID))
	assert.Equal(t, 1, s.View(ctx).Page)
}

func TestSession_SubmitInEditModeUpdates(t *testing.T) {
	ctx := context.Background()
	kv := repo.NewMemoryKV(0)
	s := newTestSession(t, kv)

	orig, _, err := s.Submit(ctx, validForm("Anong"))
	require.NoError(t, err)

	f, ok := s.BeginEdit(ctx, orig.ID)
	require.True(t, ok)
	assert.Equal(t, "Anong", f.FirstName)

	f.FirstName = "Kanya"
	p, updated, err := s.Submit(ctx, f)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, orig.ID, p.ID)
	assert.Equal(t, "Mrs Kanya Wongsa", p.Name)

	_, editing := s.Editing(ctx)
	assert.False(t, editing)
	assert.Len(t, s.List(ctx), 1)
	assert.Equal(t, orig.ID, s.View(ctx).Recent)
}

func TestSession_SubmitOnVanishedRecordReportsGone(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, repo.NewMemoryKV(0))
	p := s.Add(ctx, samplePerson("Aa", "X"))

	f, ok := s.BeginEdit(ctx, p.ID)
	require.True(t, ok)
	f.FirstName = "Bb"
	f.LastName = "Yy"
	f.MobilePhone = "0812345678"
	f.Birthday = "1990-01-02"

	// 直接操作 store，绕过 Session 对编辑态的清理
	s.store.Delete(p.ID)

	_, updated, err := s.Submit(ctx, f)
	assert.ErrorIs(t, err, ErrEditTargetGone)
	assert.False(t, updated)
	assert.Empty(t, s.List(ctx))

	// 编辑态已退出，再提交就是新增
	_, editing := s.Editing(ctx)
	assert.False(t, editing)
	p2, updated, err := s.Submit(ctx, f)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.NotEmpty(t, p2.ID)
}

func TestSession_SubmitInvalidFormChangesNothing(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, repo.NewMemoryKV(0))

	f := validForm("A")
	_, _, err := s.Submit(ctx, f)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "firstname")
	assert.Empty(t, s.List(ctx))
}

func TestSession_DeletePrunesSelectionAndEdit(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, repo.NewMemoryKV(0))
	a := s.Add(ctx, samplePerson("Aa", "X"))
	b := s.Add(ctx, samplePerson("Bb", "X"))

	sel, found := s.ToggleSelect(ctx, a.ID)
	require.True(t, found)
	require.True(t, sel)
	s.ToggleSelect(ctx, b.ID)
	_, ok := s.BeginEdit(ctx, a.ID)
	require.True(t, ok)

	require.True(t, s.Delete(ctx, a.ID))
	pv := s.View(ctx)
	assert.Equal(t, []string{b.ID}, pv.Selected)
	assert.Empty(t, pv.Editing)
}

func TestSession_ToggleUnknownID(t *testing.T) {
	s := newTestSession(t, repo.NewMemoryKV(0))
	_, found := s.ToggleSelect(context.Background(), "nope")
	assert.False(t, found)
}

func TestSession_DeleteSelected(t *testing.T) {
	ctx := context.Background()
	kv := repo.NewMemoryKV(0)
	s := newTestSession(t, kv)
	for i := 0; i < 3; i++ {
		s.Add(ctx, samplePerson("Name", "X"))
	}
	keep := s.Add(ctx, samplePerson("Keep", "X"))

	selected := s.SelectAll(ctx)
	assert.Len(t, selected, 4)
	s.ToggleSelect(ctx, keep.ID)

	assert.Equal(t, 3, s.DeleteSelected(ctx))
	assert.Equal(t, []string{keep.ID}, storedIDs(t, kv))
	assert.Empty(t, s.View(ctx).Selected)

	assert.Zero(t, s.DeleteSelected(ctx))
}

func TestSession_UpdateRefreshesEditingSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, repo.NewMemoryKV(0))
	p := s.Add(ctx, samplePerson("Aa", "X"))
	s.BeginEdit(ctx, p.ID)

	nat := "Lao"
	_, ok := s.Update(ctx, p.ID, domain.PersonPatch{Nationality: &nat})
	require.True(t, ok)

	e, ok := s.Editing(ctx)
	require.True(t, ok)
	assert.Equal(t, "Lao", e.Nationality)

	_, ok = s.Update(ctx, "missing", domain.PersonPatch{Nationality: &nat})
	assert.False(t, ok)
}

func TestSession_CancelEditThenSubmitAdds(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, repo.NewMemoryKV(0))
	p, _, err := s.Submit(ctx, validForm("Anong"))
	require.NoError(t, err)

	s.BeginEdit(ctx, p.ID)
	s.CancelEdit(ctx)

	_, updated, err := s.Submit(ctx, validForm("Kanya"))
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Len(t, s.List(ctx), 2)
}

func TestSession_LanguagePersists(t *testing.T) {
	ctx := context.Background()
	kv := repo.NewMemoryKV(0)
	s := newTestSession(t, kv)
	assert.Equal(t, LangTH, s.Language(ctx))

	assert.False(t, s.SetLanguage(ctx, "de"))
	assert.True(t, s.SetLanguage(ctx, LangEN))

	assert.Equal(t, LangEN, newTestSession(t, kv).Language(ctx))
}

func TestSession_ReloadPicksUpExternalWrites(t *testing.T) {
	ctx := context.Background()
	kv := repo.NewMemoryKV(0)
	s := newTestSession(t, kv)
	s.Add(ctx, samplePerson("Aa", "X"))

	other := NewBridge(kv, "", nil)
	other.Save(ctx, nil)

	s.Reload(ctx)
	assert.Empty(t, s.List(ctx))
}

func TestSession_SortSetting(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, repo.NewMemoryKV(0))
	s.Add(ctx, samplePerson("Charlie", "X"))
	s.Add(ctx, samplePerson("Alice", "X"))
	s.Add(ctx, samplePerson("Bob", "X"))

	pv := s.SetSort(ctx, SortName, OrderAsc)
	assert.Equal(t, "Alice", pv.Items[0].FirstName)
	assert.Equal(t, "Charlie", pv.Items[2].FirstName)

	pv = s.SetSort(ctx, SortNone, OrderNone)
	assert.Equal(t, "Bob", pv.Items[0].FirstName)
}

func TestSession_ConcurrentAddsAreSerialized(t *testing.T) {
	ctx := context.Background()
	kv := repo.NewMemoryKV(0)
	s := newTestSession(t, kv)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(ctx, samplePerson("Name", "X"))
		}()
	}
	wg.Wait()

	got := s.List(ctx)
	assert.Len(t, got, 50)
	seen := map[string]bool{}
	for _, p := range got {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
	assert.Len(t, storedIDs(t, kv), 50)
}
