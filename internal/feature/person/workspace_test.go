package person

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"person-registry/internal/repo"
)

func TestWorkspaces_GetIsLazyAndCached(t *testing.T) {
	ctx := context.Background()
	w := NewWorkspaces(repo.NewMemoryKV(0), WorkspacesOptions{KeyPrefix: "pr", PageSize: 5, Locale: "th"}, nil)
	assert.Zero(t, w.Len())

	a := w.Get(ctx, "alpha")
	assert.Same(t, a, w.Get(ctx, "alpha"))
	assert.Equal(t, 1, w.Len())
	assert.Equal(t, 5, a.View(ctx).PageSize)
}

func TestWorkspaces_AreIsolated(t *testing.T) {
	ctx := context.Background()
	kv := repo.NewMemoryKV(0)
	w := NewWorkspaces(kv, WorkspacesOptions{KeyPrefix: "pr"}, nil)

	w.Get(ctx, "alpha").Add(ctx, samplePerson("Aa", "X"))
	assert.Empty(t, w.Get(ctx, "beta").List(ctx))

	_, ok, err := kv.Get(ctx, "pr:alpha:persons")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWorkspaces_ConcurrentFirstAccessLoadsOnce(t *testing.T) {
	ctx := context.Background()
	w := NewWorkspaces(repo.NewMemoryKV(0), WorkspacesOptions{}, nil)

	var wg sync.WaitGroup
	got := make([]*Session, 20)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = w.Get(ctx, "same")
		}(i)
	}
	wg.Wait()
	for _, s := range got[1:] {
		assert.Same(t, got[0], s)
	}
	assert.Equal(t, 1, w.Len())
}

func TestWorkspaces_EvictReloadsFromStorage(t *testing.T) {
	ctx := context.Background()
	w := NewWorkspaces(repo.NewMemoryKV(0), WorkspacesOptions{KeyPrefix: "pr"}, nil)
	s := w.Get(ctx, "alpha")
	s.Add(ctx, samplePerson("Aa", "X"))

	w.Bridge("alpha").Clear(ctx)
	w.Evict("alpha")
	assert.Zero(t, w.Len())

	fresh := w.Get(ctx, "alpha")
	assert.NotSame(t, s, fresh)
	assert.Empty(t, fresh.List(ctx))
}

func TestWorkspaces_BadLocaleFallsBack(t *testing.T) {
	w := NewWorkspaces(repo.NewMemoryKV(0), WorkspacesOptions{Locale: "!!"}, nil)
	assert.NotNil(t, w.Get(context.Background(), "x"))
}

func TestWorkspaces_SweepDropsIdleSessions(t *testing.T) {
	ctx := context.Background()
	kv := repo.NewMemoryKV(0)
	w := NewWorkspaces(kv, WorkspacesOptions{KeyPrefix: "pr", IdleTTL: 10 * time.Minute}, nil)
	clock := time.Unix(1_700_000_000, 0)
	w.now = func() time.Time { return clock }

	idle := w.Get(ctx, "idle")
	idle.Add(ctx, samplePerson("Aa", "X"))
	w.Get(ctx, "busy")

	clock = clock.Add(8 * time.Minute)
	w.Get(ctx, "busy")
	clock = clock.Add(5 * time.Minute)

	assert.Equal(t, 1, w.Sweep())
	assert.Equal(t, 1, w.Len())

	// 被回收的工作区再次访问时从存储恢复
	back := w.Get(ctx, "idle")
	assert.NotSame(t, idle, back)
	assert.Len(t, back.List(ctx), 1)
}

func TestWorkspaces_SweepDisabledWithoutTTL(t *testing.T) {
	w := NewWorkspaces(repo.NewMemoryKV(0), WorkspacesOptions{}, nil)
	w.Get(context.Background(), "a")
	w.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	assert.Zero(t, w.Sweep())
	assert.Equal(t, 1, w.Len())
}

func TestWorkspaces_JanitorStopsOnCancel(t *testing.T) {
	w := NewWorkspaces(repo.NewMemoryKV(0), WorkspacesOptions{IdleTTL: time.Millisecond}, nil)
	w.Get(context.Background(), "a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Janitor(ctx, time.Millisecond)
		close(done)
	}()
	require.Eventually(t, func() bool { return w.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
