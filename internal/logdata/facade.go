package logdata

import (
	"bytes"
	"os"
	"sync"
	"time"
)

// Facade is the public face of the log-data core. It owns the Byte Source
// and the Indexing Data, exposes the line-access API to readers, and runs
// the depth-1 coalescing Operation Queue against a single Indexer Worker.
//
// All facade-level mutable state (the attached source, the current
// file-change latch, the display encoding) is guarded by mu, a small
// mutex distinct from the source mutex (shared with the Worker) and from
// IndexingData's own readers-writer lock; never acquire more than one of
// the three at a time.
type Facade struct {
	log        Logger
	watcherOps WatcherOps

	sourceMu sync.Mutex
	data     *IndexingData
	worker   *Worker
	watcher  *FileWatcher

	events       chan event
	dispatchDone sync.WaitGroup

	mu              sync.Mutex
	attached        bool
	closed          bool
	source          *ByteSource
	path            string
	fileChangeState FileChangeState
	lastModified    time.Time
	displayEncoding Encoding

	queue opQueue // touched only from the dispatcher goroutine

	onProgress    func(percent int)
	onFinished    func(status Status)
	onFileChanged func(state FileChangeState)
}

// Option configures a Facade at construction time.
type Option func(*Facade)

// WithLogger installs a Logger; the default discards everything.
func WithLogger(log Logger) Option {
	return func(f *Facade) { f.log = log }
}

// WithWatcherOps overrides the fsnotify constructor, chiefly for tests.
func WithWatcherOps(ops WatcherOps) Option {
	return func(f *Facade) { f.watcherOps = ops }
}

// OnProgress registers the loading_progressed(percent) consumer.
func OnProgress(fn func(percent int)) Option {
	return func(f *Facade) { f.onProgress = fn }
}

// OnFinished registers the loading_finished(status) consumer.
func OnFinished(fn func(status Status)) Option {
	return func(f *Facade) { f.onFinished = fn }
}

// OnFileChanged registers the file_changed(status) consumer.
func OnFileChanged(fn func(state FileChangeState)) Option {
	return func(f *Facade) { f.onFileChanged = fn }
}

// New constructs an empty Facade. Line-access operations on it return
// empty/zero until Attach succeeds.
func New(opts ...Option) *Facade {
	f := &Facade{
		log:             nopLogger{},
		data:            NewIndexingData(),
		displayEncoding: Latin1,
		events:          make(chan event, 32),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = nopLogger{}
	}

	f.worker = NewWorker(&f.sourceMu, f.data, f.log, f.events)
	f.watcher = NewFileWatcher(f.watcherOps, f.log, f.onWatcherNotify)

	f.dispatchDone.Add(1)
	go f.dispatchLoop()
	return f
}

// onWatcherNotify runs on the watcher's own goroutine; it only ever posts
// a hint onto the dispatcher's channel, never touches Facade state
// directly.
func (f *Facade) onWatcherNotify() {
	select {
	case f.events <- event{kind: eventFileChanged}:
	default:
		// The channel is full: this hint is dropped rather than blocking
		// the watcher goroutine.
	}
}

// Attach binds the Facade to path and starts a background full index.
// Callable exactly once; a second call returns AlreadyAttachedError.
func (f *Facade) Attach(path string) error {
	f.mu.Lock()
	if f.attached {
		attachedPath := f.path
		f.mu.Unlock()
		return NewAlreadyAttachedError(attachedPath)
	}
	f.attached = true
	f.path = path
	f.mu.Unlock()

	f.events <- event{kind: eventEnqueue, op: Operation{Kind: OpAttach, Path: path}}
	return nil
}

// Reload interrupts any running pass and enqueues a full reindex, forcing
// forcedEncoding if non-nil.
func (f *Facade) Reload(forcedEncoding *Encoding) {
	f.worker.Interrupt()
	f.events <- event{kind: eventEnqueue, op: Operation{Kind: OpFullIndex, ForcedEncoding: forcedEncoding}}
}

// InterruptLoading asks the current pass to abort at its next safe point.
func (f *Facade) InterruptLoading() {
	f.worker.Interrupt()
}

// NbLines returns the number of indexed lines.
func (f *Facade) NbLines() LinesCount { return f.data.NbLines() }

// MaxLength returns the longest line's display length seen so far.
func (f *Facade) MaxLength() LineLength { return f.data.MaxLength() }

// FileSize returns the byte size covered by the index.
func (f *Facade) FileSize() BytePos { return f.data.Size() }

// LastModified returns the source file's modification time as stat'd at
// the last successful indexing pass, and whether one has happened yet.
func (f *Facade) LastModified() (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastModified, !f.lastModified.IsZero()
}

// DetectedEncoding exposes the detector's guess distinctly from the active
// display encoding, so a caller deciding whether to force an encoding can
// see what indexing actually assumed.
func (f *Facade) DetectedEncoding() Encoding {
	return f.data.GuessedEncoding()
}

// GetLine returns line n decoded with the current display encoding, its
// terminator stripped. Returns "" if n is out of range.
func (f *Facade) GetLine(n LineNumber) string {
	raw, ok := f.readLineBytes(n)
	if !ok {
		return ""
	}
	return f.decodeLine(raw)
}

// GetExpandedLine is GetLine with tabs expanded to TabStop.
func (f *Facade) GetExpandedLine(n LineNumber) string {
	return ExpandTabs(f.GetLine(n), TabStop)
}

// GetLines returns count decoded lines starting at first. Returns nil if
// the range exceeds nb_lines; the attempt is logged as a warning.
func (f *Facade) GetLines(first LineNumber, count LinesCount) []string {
	raws, ok := f.readLineRangeBytes(first, count)
	if !ok {
		return nil
	}
	lines := make([]string, len(raws))
	for i, raw := range raws {
		lines[i] = f.decodeLine(raw)
	}
	return lines
}

// GetExpandedLines is GetLines with tabs expanded on every line.
func (f *Facade) GetExpandedLines(first LineNumber, count LinesCount) []string {
	lines := f.GetLines(first, count)
	if lines == nil {
		return nil
	}
	for i, l := range lines {
		lines[i] = ExpandTabs(l, TabStop)
	}
	return lines
}

// SetDisplayEncoding changes the decoder used for reads. If enc's
// byte-width class differs from the encoding the index was built with,
// the line offsets it computed are no longer valid under enc, so a reload
// forcing enc is triggered instead of an in-place switch.
func (f *Facade) SetDisplayEncoding(enc Encoding) {
	active := f.data.ActiveIndexEncoding()
	if !SameWidthClass(active, enc) {
		f.mu.Lock()
		f.displayEncoding = enc
		f.mu.Unlock()
		f.Reload(&enc)
		return
	}
	f.mu.Lock()
	f.displayEncoding = enc
	f.mu.Unlock()
}

// NewFilteredView returns a read-only handle bound to this Facade, for a
// search/filter consumer.
func (f *Facade) NewFilteredView() *FilteredView {
	return newFilteredView(f)
}

// Close stops the worker and watcher and releases the source. Safe to
// call once; further calls are no-ops.
func (f *Facade) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	f.worker.Interrupt()
	f.worker.Close()
	_ = f.watcher.Close()

	f.events <- event{kind: eventShutdown}
	f.dispatchDone.Wait()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.source != nil {
		return f.source.Close()
	}
	return nil
}

// dispatchLoop is the single execution context every operation-queue
// mutation, watcher hint, and worker outcome is handled by, in arrival
// order, on one goroutine. This is what makes a separate mutex for the
// Operation Queue unnecessary.
func (f *Facade) dispatchLoop() {
	defer f.dispatchDone.Done()
	for ev := range f.events {
		switch ev.kind {
		case eventEnqueue:
			if f.queue.Enqueue(ev.op) {
				f.startOp(ev.op)
			}
		case eventProgress:
			if f.onProgress != nil {
				f.onProgress(ev.percent)
			}
		case eventFinished:
			f.handleFinished(ev.status)
		case eventFileChanged:
			f.handleFileChanged()
		case eventShutdown:
			return
		}
	}
}

// startOp opens the source (for Attach) or fetches the already-open one
// (for FullIndex/PartialIndex) and submits the pass to the worker. Only
// ever called from the dispatcher goroutine.
func (f *Facade) startOp(op Operation) {
	switch op.Kind {
	case OpAttach:
		src, err := Open(op.Path)
		if err != nil {
			f.log.Warnf("facade: attach %s failed: %v", op.Path, err)
			f.handleFinished(StatusInterrupted)
			return
		}
		f.mu.Lock()
		f.source = src
		f.mu.Unlock()
		f.worker.Submit(OpAttach, src, nil)

	case OpFullIndex:
		f.mu.Lock()
		src := f.source
		f.mu.Unlock()
		if src == nil {
			f.handleFinished(StatusInterrupted)
			return
		}
		f.worker.Submit(OpFullIndex, src, op.ForcedEncoding)

	case OpPartialIndex:
		f.mu.Lock()
		src := f.source
		f.mu.Unlock()
		if src == nil {
			f.handleFinished(StatusInterrupted)
			return
		}
		f.worker.Submit(OpPartialIndex, src, nil)
	}
}

// handleFinished processes a worker outcome: on success it resets the
// file-change latch and re-arms the watcher on the current path, notifies
// consumers, then promotes and starts the next queued operation, if any.
func (f *Facade) handleFinished(status Status) {
	if status == StatusSuccessful {
		f.mu.Lock()
		f.fileChangeState = Unchanged
		f.lastModified = statTime(f.path)
		path := f.path
		f.mu.Unlock()
		if err := f.watcher.Watch(path); err != nil {
			f.log.Warnf("facade: rearm watch on %s failed: %v", path, err)
		}
	}

	if f.onFinished != nil {
		f.onFinished(status)
	}

	if next, ok := f.queue.Finished(); ok {
		f.startOp(next)
	}
}

// handleFileChanged runs the file-change state machine. Re-opening happens
// before the size comparison that decides the transition: an unrefreshed
// source can lag the real file, which would otherwise misclassify the
// change.
func (f *Facade) handleFileChanged() {
	f.mu.Lock()
	src := f.source
	path := f.path
	prevState := f.fileChangeState
	f.mu.Unlock()
	if src == nil {
		return
	}

	onDiskSize, err := src.Size()
	if err != nil {
		f.log.Warnf("facade: stat %s failed: %v", path, err)
		return
	}
	if onDiskSize != src.MappedSize() {
		f.sourceMu.Lock()
		reopenErr := src.Reopen()
		f.sourceMu.Unlock()
		if reopenErr != nil {
			f.log.Warnf("facade: reopen %s failed: %v", path, reopenErr)
			return
		}
	}

	sIndexed := f.data.Size()
	sNow := BytePos(src.MappedSize())

	newState := prevState
	var toEnqueue *Operation
	switch {
	case sNow < sIndexed:
		newState = Truncated
		toEnqueue = &Operation{Kind: OpFullIndex}
	case sNow == sIndexed:
		// no-op: state unchanged
	case prevState != DataAdded:
		newState = DataAdded
		toEnqueue = &Operation{Kind: OpPartialIndex}
	default:
		// already DataAdded: the previously scheduled/running partial
		// index will cover this growth too.
	}

	f.mu.Lock()
	f.fileChangeState = newState
	f.mu.Unlock()

	if newState != prevState && f.onFileChanged != nil {
		f.onFileChanged(newState)
	}

	if toEnqueue != nil {
		if f.queue.Enqueue(*toEnqueue) {
			f.startOp(*toEnqueue)
		}
	}
}

// readLineBytes returns the raw, terminator-included bytes of line n.
func (f *Facade) readLineBytes(n LineNumber) ([]byte, bool) {
	nb, posForLine := f.data.Snapshot()
	if uint64(n) >= uint64(nb) {
		return nil, false
	}
	var start BytePos
	if n > 0 {
		start = posForLine(n - 1)
	}
	end := posForLine(n)
	return f.readRange(start, end)
}

// readLineRangeBytes returns the raw bytes of each line in [first, first+count).
func (f *Facade) readLineRangeBytes(first LineNumber, count LinesCount) ([][]byte, bool) {
	if count == 0 {
		return nil, true
	}
	nb, posForLine := f.data.Snapshot()
	last := first.Add(count)
	if uint64(first) >= uint64(nb) || uint64(last) > uint64(nb) {
		f.log.Warnf("facade: %v", NewInvalidRangeError(first, count, nb))
		return nil, false
	}

	var firstByte BytePos
	if first > 0 {
		firstByte = posForLine(first - 1)
	}
	lastByte := posForLine(first.Add(count - 1))

	buf, ok := f.readRange(firstByte, lastByte)
	if !ok {
		return nil, false
	}

	raws := make([][]byte, 0, count)
	lineStart := firstByte
	for ln := first; ln < last; ln++ {
		end := posForLine(ln)
		raws = append(raws, buf[int64(lineStart-firstByte):int64(end-firstByte)])
		lineStart = end
	}
	return raws, true
}

// readRange acquires the source mutex once and reads [start, end).
func (f *Facade) readRange(start, end BytePos) ([]byte, bool) {
	f.mu.Lock()
	src := f.source
	f.mu.Unlock()
	if src == nil {
		return nil, false
	}

	f.sourceMu.Lock()
	buf, err := src.ReadRange(start, end)
	f.sourceMu.Unlock()
	if err != nil {
		f.log.Warnf("facade: read range [%d,%d) failed: %v", start, end, err)
		return nil, false
	}
	return buf, true
}

// decodeLine strips a single trailing terminator (in the encoding the
// index was built with, since that is what determined the raw byte
// boundary) then decodes the remainder with the display encoding. A
// leading '\r' is preserved, never stripped.
func (f *Facade) decodeLine(raw []byte) string {
	term := f.data.ActiveIndexEncoding().Terminator()
	raw = stripTerminator(raw, term)
	f.mu.Lock()
	disp := f.displayEncoding
	f.mu.Unlock()
	return disp.Decode(raw)
}

func stripTerminator(b, term []byte) []byte {
	if len(term) > 0 && len(b) >= len(term) && bytes.HasSuffix(b, term) {
		return b[:len(b)-len(term)]
	}
	return b
}

// statTime returns path's mtime, or the zero Time if it cannot be stat'd.
func statTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
