package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func startWatcher(t *testing.T, dir string, onChange func(string)) {
	t.Helper()
	w := New(dir, []string{"settings.yaml"}, onChange)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Give fsnotify a moment to register the directory.
	time.Sleep(50 * time.Millisecond)
}

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	startWatcher(t, dir, func(string) { calls.Add(1) })

	path := filepath.Join(dir, "settings.yaml")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("version: 1\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(3 * DefaultDebounce)
	if got := calls.Load(); got != 1 {
		t.Errorf("onChange called %d times, want 1", got)
	}
}

func TestWatcherSeesAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	changed := make(chan string, 4)
	startWatcher(t, dir, func(p string) { changed <- p })

	tmp := filepath.Join(dir, ".settings.yaml.tmp")
	if err := os.WriteFile(tmp, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, "settings.yaml")); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-changed:
		if filepath.Base(p) != "settings.yaml" {
			t.Errorf("changed path = %q", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("atomic replace not observed")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	startWatcher(t, dir, func(string) { calls.Add(1) })

	if err := os.WriteFile(filepath.Join(dir, "daemon.yaml"), []byte("port: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(3 * DefaultDebounce)
	if calls.Load() != 0 {
		t.Error("unrelated file triggered a reload")
	}
}
