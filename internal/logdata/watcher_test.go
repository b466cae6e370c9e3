package logdata

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

// fakeWatcherInstance is an in-memory stand-in for *fsnotify.Watcher, driven
// entirely by the test via fire/fireErr, so FileWatcher's re-arm and hint
// logic can be exercised without touching the real filesystem watcher.
type fakeWatcherInstance struct {
	mu     sync.Mutex
	added  []string
	closed bool

	events chan fsnotify.Event
	errs   chan error

	addErr error
}

func newFakeWatcherInstance() *fakeWatcherInstance {
	return &fakeWatcherInstance{
		events: make(chan fsnotify.Event, 8),
		errs:   make(chan error, 8),
	}
}

func (f *fakeWatcherInstance) Add(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, path)
	return nil
}

func (f *fakeWatcherInstance) Remove(path string) error { return nil }

func (f *fakeWatcherInstance) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeWatcherInstance) Events() <-chan fsnotify.Event { return f.events }
func (f *fakeWatcherInstance) Errors() <-chan error          { return f.errs }

func (f *fakeWatcherInstance) fire(op fsnotify.Op, name string) {
	f.events <- fsnotify.Event{Name: name, Op: op}
}

// fakeWatcherOps hands out a single fakeWatcherInstance per test, so the
// test can drive events on the exact instance the FileWatcher is using.
type fakeWatcherOps struct {
	instance *fakeWatcherInstance
}

func (o *fakeWatcherOps) NewWatcher() (WatcherInstance, error) {
	return o.instance, nil
}

func waitForCall(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for onChange")
	}
}

func TestFileWatcherDeliversHintOnWrite(t *testing.T) {
	inst := newFakeWatcherInstance()
	ops := &fakeWatcherOps{instance: inst}

	calls := make(chan struct{}, 4)
	fw := NewFileWatcher(ops, nil, func() { calls <- struct{}{} })
	defer fw.Close()

	if err := fw.Watch("/tmp/example.log"); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	inst.fire(fsnotify.Write, "/tmp/example.log")
	waitForCall(t, calls)
}

func TestFileWatcherIgnoresChmod(t *testing.T) {
	inst := newFakeWatcherInstance()
	ops := &fakeWatcherOps{instance: inst}

	calls := make(chan struct{}, 4)
	fw := NewFileWatcher(ops, nil, func() { calls <- struct{}{} })
	defer fw.Close()

	if err := fw.Watch("/tmp/example.log"); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	inst.fire(fsnotify.Chmod, "/tmp/example.log")

	select {
	case <-calls:
		t.Fatal("a bare Chmod event should not produce an onChange hint")
	case <-time.After(200 * time.Millisecond):
	}
}

// TestFileWatcherRearmsOnRemove exercises the log-rotation path: a
// Remove/Rename event triggers a Remove+Add against the same path name so a
// freshly recreated file with the same name keeps being watched.
func TestFileWatcherRearmsOnRemove(t *testing.T) {
	inst := newFakeWatcherInstance()
	ops := &fakeWatcherOps{instance: inst}

	calls := make(chan struct{}, 4)
	fw := NewFileWatcher(ops, nil, func() { calls <- struct{}{} })
	defer fw.Close()

	if err := fw.Watch("/tmp/rotated.log"); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	inst.fire(fsnotify.Rename, "/tmp/rotated.log")
	waitForCall(t, calls)

	inst.mu.Lock()
	added := append([]string(nil), inst.added...)
	inst.mu.Unlock()

	if len(added) != 2 {
		t.Fatalf("Add calls = %v, want an initial Watch add plus a re-arm add", added)
	}
}

func TestFileWatcherWatchReplacesPreviousWatch(t *testing.T) {
	inst1 := newFakeWatcherInstance()
	inst2 := newFakeWatcherInstance()
	calls := []*fakeWatcherInstance{inst1, inst2}
	i := 0
	ops := watcherOpsFunc(func() (WatcherInstance, error) {
		inst := calls[i]
		i++
		return inst, nil
	})

	fw := NewFileWatcher(ops, nil, func() {})
	defer fw.Close()

	if err := fw.Watch("/tmp/a.log"); err != nil {
		t.Fatalf("first Watch: %v", err)
	}
	if err := fw.Watch("/tmp/b.log"); err != nil {
		t.Fatalf("second Watch: %v", err)
	}

	inst1.mu.Lock()
	closed1 := inst1.closed
	inst1.mu.Unlock()
	if !closed1 {
		t.Error("the first watcher instance should be closed once replaced")
	}

	inst2.mu.Lock()
	closed2 := inst2.closed
	inst2.mu.Unlock()
	if closed2 {
		t.Error("the second, current watcher instance should still be open")
	}
}

func TestFileWatcherWatchPropagatesAddError(t *testing.T) {
	inst := newFakeWatcherInstance()
	inst.addErr = errors.New("no such file or directory")
	ops := &fakeWatcherOps{instance: inst}

	fw := NewFileWatcher(ops, nil, func() {})
	defer fw.Close()

	if err := fw.Watch("/tmp/missing.log"); err == nil {
		t.Fatal("expected Watch to propagate the underlying Add error")
	}
}

type watcherOpsFunc func() (WatcherInstance, error)

func (f watcherOpsFunc) NewWatcher() (WatcherInstance, error) { return f() }
