package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newWatcher(t *testing.T, opts ...Option) *Watcher {
	t.Helper()
	w, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

// collect records events on a channel.
func collect(w *Watcher) <-chan Event {
	ch := make(chan Event, 64)
	w.OnChange(func(e Event) { ch <- e })
	return ch
}

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestNew(t *testing.T) {
	w := newWatcher(t)
	if w.debounce != 100*time.Millisecond {
		t.Errorf("default debounce = %v, want 100ms", w.debounce)
	}

	w = newWatcher(t, WithDebounce(50*time.Millisecond))
	if w.debounce != 50*time.Millisecond {
		t.Errorf("debounce = %v, want 50ms", w.debounce)
	}
}

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{Operation(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestWatcher_WatchUnwatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.toml")
	b := filepath.Join(dir, "b.lua")
	if err := os.WriteFile(a, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	w := newWatcher(t)
	if err := w.Watch(a); err != nil {
		t.Fatalf("Watch(a) error = %v", err)
	}
	// Not created yet.
	if err := w.Watch(b); err != nil {
		t.Fatalf("Watch(b) error = %v", err)
	}
	if err := w.Watch(a); err != nil {
		t.Fatalf("second Watch(a) error = %v", err)
	}
	if got := len(w.WatchedFiles()); got != 2 {
		t.Errorf("WatchedFiles() = %d files, want 2", got)
	}
	if w.dirs[dir] != 2 {
		t.Errorf("directory count = %d, want 2", w.dirs[dir])
	}

	if err := w.Unwatch(a); err != nil {
		t.Fatalf("Unwatch(a) error = %v", err)
	}
	if err := w.Unwatch(b); err != nil {
		t.Fatalf("Unwatch(b) error = %v", err)
	}
	if len(w.WatchedFiles()) != 0 || len(w.dirs) != 0 {
		t.Errorf("after Unwatch: files %v, dirs %v", w.WatchedFiles(), w.dirs)
	}

	if err := w.Watch(filepath.Join(dir, "missing", "c.toml")); err == nil {
		t.Error("Watch in a missing directory should fail")
	}
}

func TestWatcher_StartStop(t *testing.T) {
	w := newWatcher(t)
	if w.IsRunning() {
		t.Error("should not be running before Start")
	}
	w.Start()
	w.Start()
	if !w.IsRunning() {
		t.Error("should be running after Start")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if w.IsRunning() {
		t.Error("should not be running after Stop")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
	if err := w.Watch(t.TempDir()); err != ErrStopped {
		t.Errorf("Watch after Stop = %v, want ErrStopped", err)
	}
}

func TestWatcher_WriteEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}

	w := newWatcher(t, WithDebounce(0))
	events := collect(w)
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	w.Start()

	if err := os.WriteFile(path, []byte("b"), 0644); err != nil {
		t.Fatal(err)
	}
	e := waitEvent(t, events)
	if e.Op != OpWrite {
		t.Errorf("Op = %v, want write", e.Op)
	}
	abs, _ := filepath.Abs(path)
	if e.Path != abs {
		t.Errorf("Path = %q, want %q", e.Path, abs)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watched.sh")
	other := filepath.Join(dir, "other.sh")
	for _, p := range []string{path, other} {
		if err := os.WriteFile(p, []byte("a"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	w := newWatcher(t, WithDebounce(0))
	events := collect(w)
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	w.Start()

	if err := os.WriteFile(other, []byte("b"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case e := <-events:
		t.Fatalf("unexpected event %+v", e)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_Debounce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.lua")
	if err := os.WriteFile(path, []byte("0"), 0644); err != nil {
		t.Fatal(err)
	}

	w := newWatcher(t, WithDebounce(80*time.Millisecond))
	events := collect(w)
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	w.Start()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte{byte('a' + i)}, 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	e := waitEvent(t, events)
	if e.Op != OpWrite {
		t.Errorf("Op = %v, want write", e.Op)
	}
	select {
	case e := <-events:
		t.Fatalf("rapid writes should coalesce, got second event %+v", e)
	case <-time.After(250 * time.Millisecond):
	}
}

func TestWatcher_CreateAfterWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "new.py")

	w := newWatcher(t, WithDebounce(30*time.Millisecond))
	events := collect(w)
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	w.Start()

	if err := os.WriteFile(path, []byte("x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if e := waitEvent(t, events); e.Op != OpCreate {
		t.Errorf("Op = %v, want create (writes after create keep create)", e.Op)
	}
}

func TestQueueEvent_Coalescing(t *testing.T) {
	w := newWatcher(t)
	now := time.Now()

	w.queueEvent(Event{Path: "/a", Op: OpCreate, Time: now})
	w.queueEvent(Event{Path: "/a", Op: OpWrite, Time: now})
	if got := w.pendingFiles["/a"].Op; got != OpCreate {
		t.Errorf("create + write = %v, want create", got)
	}

	w.queueEvent(Event{Path: "/a", Op: OpRemove, Time: now})
	if got := w.pendingFiles["/a"].Op; got != OpRemove {
		t.Errorf("create + remove = %v, want remove", got)
	}

	w.queueEvent(Event{Path: "/b", Op: OpWrite, Time: now})
	w.queueEvent(Event{Path: "/b", Op: OpWrite, Time: now.Add(time.Second)})
	if got := w.pendingFiles["/b"]; got.Op != OpWrite || !got.Time.Equal(now.Add(time.Second)) {
		t.Errorf("write + write = %+v, want latest write", got)
	}
}

func TestProcessPendingEvents_WaitsForStability(t *testing.T) {
	w := newWatcher(t, WithDebounce(time.Hour))
	var (
		mu  sync.Mutex
		got []Event
	)
	w.OnChange(func(e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})

	w.queueEvent(Event{Path: "/fresh", Op: OpWrite, Time: time.Now()})
	w.queueEvent(Event{Path: "/old", Op: OpWrite, Time: time.Now().Add(-2 * time.Hour)})
	w.processPendingEvents()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].Path != "/old" {
		t.Errorf("emitted %+v, want only /old", got)
	}
	if _, ok := w.pendingFiles["/fresh"]; !ok {
		t.Error("/fresh should still be pending")
	}
}

func TestEmitEvent_RecoversFromPanic(t *testing.T) {
	w := newWatcher(t)
	called := false
	w.OnChange(func(Event) { panic("boom") })
	w.OnChange(func(Event) { called = true })

	w.emitEvent(Event{Path: "/x"})
	if !called {
		t.Error("handlers after a panicking handler should still run")
	}
}
