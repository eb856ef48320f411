package notify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarsh5026/gitgo/pkg/common/logger"
	"github.com/utkarsh5026/gitgo/pkg/objects"
	"github.com/utkarsh5026/gitgo/pkg/refs/branch"
)

// fakeWatcher records its lifecycle and fires on demand.
type fakeWatcher struct {
	roots    []string
	onChange func()
	started  atomic.Bool
	closed   atomic.Bool
}

func (w *fakeWatcher) Start(fn func()) error {
	w.onChange = fn
	w.started.Store(true)
	return nil
}

func (w *fakeWatcher) Close() error {
	w.closed.Store(true)
	return nil
}

type fakeFactory struct {
	mu       sync.Mutex
	watchers []*fakeWatcher
	fail     error
}

func (f *fakeFactory) New(roots ...string) (Watcher, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	w := &fakeWatcher{roots: roots}
	f.watchers = append(f.watchers, w)
	return w, nil
}

func (f *fakeFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watchers)
}

func (f *fakeFactory) last() *fakeWatcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.watchers[len(f.watchers)-1]
}

func noop(objects.Delta) error { return nil }

func newHub(t *testing.T, f *fakeFactory, probe ObjectProbe) *Hub {
	t.Helper()
	h := NewHub(context.Background(), HubConfig{
		ObjectsDir: "/repo/.git/objects",
		RefsDir:    "/repo/.git/refs",
		Factory:    f.New,
		Objects:    probe,
		Logger:     logger.Discard(),
	})
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestTopic_FirstSubscribeStartsWatcher(t *testing.T) {
	f := &fakeFactory{}
	h := newHub(t, f, nil)

	assert.False(t, h.Commits.Watching())

	sub, e := h.Commits.Subscribe(noop)
	require.NoError(t, e)
	assert.True(t, h.Commits.Watching())
	assert.Equal(t, 1, f.count())
	assert.Equal(t, []string{"/repo/.git/objects"}, f.last().roots)
	assert.True(t, f.last().started.Load())

	require.NoError(t, h.Commits.Unsubscribe(sub))
	assert.False(t, h.Commits.Watching())
	assert.True(t, f.last().closed.Load())
}

func TestTopic_SecondSubscribeReusesWatcher(t *testing.T) {
	f := &fakeFactory{}
	h := newHub(t, f, nil)

	first, e := h.Commits.Subscribe(noop)
	require.NoError(t, e)
	second, e := h.Commits.Subscribe(noop)
	require.NoError(t, e)
	assert.Equal(t, 1, f.count())
	assert.Equal(t, 2, h.Commits.Subscribers())

	require.NoError(t, h.Commits.Unsubscribe(first))
	assert.True(t, h.Commits.Watching())
	assert.False(t, f.last().closed.Load())

	require.NoError(t, h.Commits.Unsubscribe(second))
	assert.False(t, h.Commits.Watching())
	assert.True(t, f.last().closed.Load())
}

func TestTopic_UnknownUnsubscribeIsNoop(t *testing.T) {
	f := &fakeFactory{}
	h := newHub(t, f, nil)

	sub, e := h.Trees.Subscribe(noop)
	require.NoError(t, e)

	assert.NoError(t, h.Trees.Unsubscribe(&Subscription[objects.Delta]{}))
	assert.NoError(t, h.Trees.Unsubscribe(nil))
	assert.Equal(t, 1, h.Trees.Subscribers())

	require.NoError(t, h.Trees.Unsubscribe(sub))
	assert.NoError(t, h.Trees.Unsubscribe(sub))
	assert.Equal(t, 0, h.Trees.Subscribers())
}

func TestTopic_SameHandlerTwiceRemovesOne(t *testing.T) {
	topic := NewTopic[int]("numbers", nil, logger.Discard())
	var calls atomic.Int64
	h := func(int) error { calls.Add(1); return nil }

	a, e := topic.Subscribe(h)
	require.NoError(t, e)
	_, e = topic.Subscribe(h)
	require.NoError(t, e)

	require.NoError(t, topic.Unsubscribe(a))
	topic.Publish(1)
	assert.Equal(t, int64(1), calls.Load())
}

func TestTopic_CategoriesHaveSeparateWatchers(t *testing.T) {
	f := &fakeFactory{}
	h := newHub(t, f, nil)

	_, e := h.Commits.Subscribe(noop)
	require.NoError(t, e)
	_, e = h.Blobs.Subscribe(noop)
	require.NoError(t, e)
	_, e = h.Branches.Subscribe(func(BranchChange) error { return nil })
	require.NoError(t, e)

	assert.Equal(t, 3, f.count())
	assert.False(t, h.Trees.Watching())
	assert.Equal(t, []string{"/repo/.git/refs"}, f.last().roots)
}

func TestTopic_WatcherStartFailure(t *testing.T) {
	f := &fakeFactory{fail: errors.New("too many open files")}
	h := newHub(t, f, nil)

	sub, e := h.Commits.Subscribe(noop)
	assert.Error(t, e)
	assert.Nil(t, sub)
	assert.Equal(t, 0, h.Commits.Subscribers())
	assert.False(t, h.Commits.Watching())
}

func TestTopic_HandlerFailuresAreContained(t *testing.T) {
	topic := NewTopic[string]("events", nil, logger.Discard())

	var got []string
	_, _ = topic.Subscribe(func(string) error { return errors.New("boom") })
	_, _ = topic.Subscribe(func(string) error { panic("bad handler") })
	_, _ = topic.Subscribe(func(s string) error { got = append(got, s); return nil })

	assert.Equal(t, 1, topic.Publish("x"))
	assert.Equal(t, 3, topic.Subscribers())
	assert.Equal(t, []string{"x"}, got)
}

func TestHub_ChangePublishesFilteredDeltas(t *testing.T) {
	delta := objects.Delta{Added: []objects.ObjectHandle{
		{Hash: "c1", Type: objects.CommitType},
		{Hash: "t1", Type: objects.TreeType},
	}}
	var probes atomic.Int64
	f := &fakeFactory{}
	h := newHub(t, f, func(context.Context) (objects.Delta, error) {
		probes.Add(1)
		return delta, nil
	})

	var commits, trees, blobs []objects.Delta
	_, _ = h.Commits.Subscribe(func(d objects.Delta) error { commits = append(commits, d); return nil })
	_, _ = h.Trees.Subscribe(func(d objects.Delta) error { trees = append(trees, d); return nil })
	_, _ = h.Blobs.Subscribe(func(d objects.Delta) error { blobs = append(blobs, d); return nil })

	f.watchers[0].onChange()

	assert.Equal(t, int64(1), probes.Load())
	require.Len(t, commits, 1)
	assert.Equal(t, objects.ObjectHash("c1"), commits[0].Added[0].Hash)
	require.Len(t, trees, 1)
	assert.Equal(t, objects.ObjectHash("t1"), trees[0].Added[0].Hash)
	assert.Empty(t, blobs)
}

func TestHub_ConcurrentChangesShareOneProbe(t *testing.T) {
	release := make(chan struct{})
	var probes atomic.Int64
	f := &fakeFactory{}
	h := newHub(t, f, func(context.Context) (objects.Delta, error) {
		probes.Add(1)
		<-release
		return objects.Delta{}, nil
	})

	for _, topic := range []*Topic[objects.Delta]{h.Commits, h.Trees, h.Blobs} {
		_, e := topic.Subscribe(noop)
		require.NoError(t, e)
	}

	var wg sync.WaitGroup
	started := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		close(started)
		f.watchers[0].onChange()
	}()
	<-started
	require.Eventually(t, func() bool { return probes.Load() == 1 }, time.Second, time.Millisecond)

	for _, w := range f.watchers[1:] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.onChange()
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), probes.Load())
}

func TestHub_BranchesPublishOnlyOnChange(t *testing.T) {
	listing := BranchChange{Local: []branch.Info{{Name: "main", Commit: "abc", Current: true}}}
	var mu sync.Mutex
	h := NewHub(context.Background(), HubConfig{
		Branches: func(context.Context) (BranchChange, error) {
			mu.Lock()
			defer mu.Unlock()
			return listing, nil
		},
		Logger: logger.Discard(),
	})
	defer h.Close()

	var got []BranchChange
	_, e := h.Branches.Subscribe(func(c BranchChange) error { got = append(got, c); return nil })
	require.NoError(t, e)

	_, e = h.RefreshBranches(context.Background())
	require.NoError(t, e)
	_, e = h.RefreshBranches(context.Background())
	require.NoError(t, e)
	assert.Len(t, got, 1)

	mu.Lock()
	listing = BranchChange{Local: []branch.Info{{Name: "main", Commit: "def", Current: true}}}
	mu.Unlock()

	_, e = h.RefreshBranches(context.Background())
	require.NoError(t, e)
	require.Len(t, got, 2)
	assert.Equal(t, "def", got[1].Local[0].Commit)
}

func TestFSWatcher_ReportsChanges(t *testing.T) {
	root := t.TempDir()
	w := NewFSWatcher(20*time.Millisecond, logger.Discard(), root)

	changes := make(chan struct{}, 16)
	require.NoError(t, w.Start(func() { changes <- struct{}{} }))
	defer w.Close()

	sub := filepath.Join(root, "ab")
	require.NoError(t, os.Mkdir(sub, 0o755))
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported for new directory")
	}

	// give the watcher a moment to add the new directory
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "cdef"), []byte("x"), 0o644))
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported inside new directory")
	}
}

func TestFSWatcher_CloseIsIdempotent(t *testing.T) {
	w := NewFSWatcher(0, logger.Discard(), t.TempDir())
	require.NoError(t, w.Start(func() {}))
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
