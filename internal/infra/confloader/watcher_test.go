package confloader

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func startWatcher(t *testing.T, file string, opts ...WatcherOption) (*Watcher, chan string) {
	t.Helper()
	opts = append([]WatcherOption{WithWatcherLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	w, err := NewWatcher(opts...)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Watch(file); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	changed := make(chan string, 16)
	w.OnChange(func(path string) {
		select {
		case changed <- path:
		default:
		}
	})
	w.StartAsync()
	t.Cleanup(func() { _ = w.Stop() })

	// Give the goroutine time to enter its select.
	time.Sleep(50 * time.Millisecond)
	return w, changed
}

func TestWatcher_Watch_NonexistentDir(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if err := w.Watch("/nonexistent/dir/config.yaml"); err == nil {
		t.Error("Watch() on a missing directory should fail")
	}
}

func TestWatcher_FileChange(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte("log:\n  level: info\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, changed := startWatcher(t, configFile, WithDebounce(20*time.Millisecond))

	if err := os.WriteFile(configFile, []byte("log:\n  level: debug\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case path := <-changed:
		if filepath.Base(path) != "config.yaml" {
			t.Errorf("callback path = %q", path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnChange() callback was not triggered within timeout")
	}
}

func TestWatcher_FileCreate(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "new.yaml")

	_, changed := startWatcher(t, configFile, WithDebounce(0))

	if err := os.WriteFile(configFile, []byte("a: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("create event not reported")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configFile, []byte("a: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, changed := startWatcher(t, configFile, WithDebounce(0))

	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("b: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case path := <-changed:
		t.Errorf("callback fired for unrelated file %q", path)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_Debounce(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte("a: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(WithDebounce(150*time.Millisecond),
		WithWatcherLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(configFile); err != nil {
		t.Fatal(err)
	}
	var calls atomic.Int32
	w.OnChange(func(string) { calls.Add(1) })
	w.StartAsync()
	defer w.Stop()
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(configFile, []byte("a: 1\n"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("callback ran %d times for a burst of writes, want 1", n)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	w.StartAsync()
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}
