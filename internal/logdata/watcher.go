package logdata

import (
	"sync"

	"github.com/fsnotify/fsnotify"
)

// WatcherOps abstracts fsnotify's constructor so tests can substitute a
// fake watcher without touching the filesystem. Grounded on frozenDB's
// internal/frozendb/file_watcher.go WatcherOps/WatcherInstance seam.
type WatcherOps interface {
	NewWatcher() (WatcherInstance, error)
}

// WatcherInstance abstracts the subset of *fsnotify.Watcher the file
// watcher needs.
type WatcherInstance interface {
	Add(path string) error
	Remove(path string) error
	Close() error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
}

type realWatcherOps struct{}

// NewWatcherOps returns the production WatcherOps backed by fsnotify.
func NewWatcherOps() WatcherOps { return realWatcherOps{} }

func (realWatcherOps) NewWatcher() (WatcherInstance, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &realWatcherInstance{w: w}, nil
}

type realWatcherInstance struct {
	w *fsnotify.Watcher
}

func (r *realWatcherInstance) Add(path string) error    { return r.w.Add(path) }
func (r *realWatcherInstance) Remove(path string) error { return r.w.Remove(path) }
func (r *realWatcherInstance) Close() error             { return r.w.Close() }
func (r *realWatcherInstance) Events() <-chan fsnotify.Event { return r.w.Events }
func (r *realWatcherInstance) Errors() <-chan error          { return r.w.Errors }

// FileWatcher is the File-Change Watcher of the log-data core: an OS-level
// notification source with a single callback, delivered on a background
// context. It is deliberately dumb, a hint rather than a truth. Deciding
// Unchanged/DataAdded/Truncated from the hint is the Facade's job, since that decision depends on the Facade's own
// file_change_state, which the watcher has no business holding.
// Grounded on frozenDB's internal/frozendb/file_watcher.go watchLoop.
type FileWatcher struct {
	ops WatcherOps
	log Logger

	mu       sync.Mutex
	instance WatcherInstance
	path     string
	onChange func()

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewFileWatcher constructs a watcher. onChange is invoked from the
// watcher's own goroutine whenever a relevant event is observed; the facade
// is responsible for hopping back onto its dispatcher via the event
// channel rather than doing real work in that callback.
func NewFileWatcher(ops WatcherOps, log Logger, onChange func()) *FileWatcher {
	if ops == nil {
		ops = NewWatcherOps()
	}
	if log == nil {
		log = nopLogger{}
	}
	return &FileWatcher{ops: ops, log: log, onChange: onChange}
}

// Watch starts watching path, replacing any previously watched path.
func (fw *FileWatcher) Watch(path string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	fw.stopLocked()

	instance, err := fw.ops.NewWatcher()
	if err != nil {
		return err
	}
	if err := instance.Add(path); err != nil {
		_ = instance.Close()
		return err
	}

	fw.instance = instance
	fw.path = path
	fw.stop = make(chan struct{})

	fw.wg.Add(1)
	go fw.watchLoop(instance, path, fw.stop)
	return nil
}

func (fw *FileWatcher) watchLoop(instance WatcherInstance, path string, stop chan struct{}) {
	defer fw.wg.Done()
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-instance.Events():
			if !ok {
				return
			}
			fw.handleEvent(instance, path, ev)
		case err, ok := <-instance.Errors():
			if !ok {
				return
			}
			fw.log.Warnf("watcher: %v", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(instance WatcherInstance, path string, ev fsnotify.Event) {
	if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		// Log rotation: the old inode is gone. Re-arm on the same path name
		// if something has already appeared there (rename-then-recreate).
		_ = instance.Remove(path)
		if err := instance.Add(path); err != nil {
			fw.log.Debugf("watcher: %s removed, not yet recreated: %v", path, err)
		}
	}
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	if fw.onChange != nil {
		fw.onChange()
	}
}

// Close stops the watch loop and releases the underlying fsnotify watcher.
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.stopLocked()
	return nil
}

func (fw *FileWatcher) stopLocked() {
	if fw.stop != nil {
		close(fw.stop)
		fw.stop = nil
	}
	if fw.instance != nil {
		_ = fw.instance.Close()
		fw.instance = nil
	}
	fw.wg.Wait()
}
