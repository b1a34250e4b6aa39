package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomkit/loom/internal/logging"
)

// recordingInvalidator collects invalidated template names.
type recordingInvalidator struct {
	mu    sync.Mutex
	names []string
}

func (r *recordingInvalidator) Invalidate(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
}

func (r *recordingInvalidator) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

func (r *recordingInvalidator) waitFor(t *testing.T, name string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		for _, got := range r.snapshot() {
			if got == name {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("template %q was never invalidated; got %v", name, r.snapshot())
}

func startWatcher(t *testing.T, root string, inv Invalidator) *Watcher {
	t.Helper()
	w, err := New(root, inv, logging.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func TestWatcherInvalidatesChangedTemplate(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pages"), 0o755))
	path := filepath.Join(root, "pages", "home.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>v1</p>"), 0o644))

	inv := &recordingInvalidator{}
	startWatcher(t, root, inv)

	require.NoError(t, os.WriteFile(path, []byte("<p>v2</p>"), 0o644))

	// names are slash-separated and relative to the root
	inv.waitFor(t, "pages/home.html")
}

func TestWatcherNotifiesSubscribers(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "t.html")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	inv := &recordingInvalidator{}
	w := startWatcher(t, root, inv)
	changes := w.Subscribe()

	require.NoError(t, os.WriteFile(path, []byte("y"), 0o644))

	select {
	case name := <-changes:
		assert.Equal(t, "t.html", name)
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification received")
	}
}

func TestWatcherDebouncesWriteBursts(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "t.html")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0o644))

	inv := &recordingInvalidator{}
	startWatcher(t, root, inv)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("burst"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	inv.waitFor(t, "t.html")
	time.Sleep(300 * time.Millisecond)
	assert.LessOrEqual(t, len(inv.snapshot()), 2,
		"a burst of writes must collapse into at most a couple of invalidations")
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()
	inv := &recordingInvalidator{}
	startWatcher(t, root, inv)

	sub := filepath.Join(root, "new")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	// give the watcher a moment to register the new directory
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "late.html"), []byte("x"), 0o644))

	inv.waitFor(t, "new/late.html")
}
