package logdata

import (
	"io"
	"sync"
	"sync/atomic"
)

// detectSampleSize is how much of the file is fed to the encoding
// detector before a full index pass ("the first N KiB").
const detectSampleSize = 64 * 1024

// scanBlockSize is the chunk size the worker reads at a time. Progress and
// the interrupt flag are both checked once per block
const scanBlockSize = 64 * 1024

// defaultMaxLines bounds runaway index growth. Real OOM is not something a
// Go program can safely provoke or recover from (the runtime aborts the
// process rather than unwinding), so this bound is the practical stand-in
// for the design's NoMemory outcome: growth past it is treated exactly
// like an allocation failure: the pass stops, nothing already committed
// is touched, and the caller is told NoMemory.
const defaultMaxLines = 200_000_000

// job describes one pass for the worker to run against an already-opened
// (or reopenable) source.
type job struct {
	kind           OperationKind
	source         *ByteSource
	forcedEncoding *Encoding
}

// Worker is a single background execution context that scans a ByteSource
// and updates IndexingData: chunked reads, terminator search generalised
// to encoding-aware, multi-byte terminators, tab-expanded max-length
// tracking, and cancellation.
type Worker struct {
	sourceMu *sync.Mutex
	data     *IndexingData
	log      Logger
	events   chan<- event

	interrupt atomic.Bool
	maxLines  int

	jobs chan job
	wg   sync.WaitGroup
}

// NewWorker starts the worker's background goroutine. events is the
// facade's single dispatch channel; progress and finished notifications
// are posted there in order.
func NewWorker(sourceMu *sync.Mutex, data *IndexingData, log Logger, events chan<- event) *Worker {
	if log == nil {
		log = nopLogger{}
	}
	w := &Worker{
		sourceMu: sourceMu,
		data:     data,
		log:      log,
		events:   events,
		maxLines: defaultMaxLines,
		jobs:     make(chan job, 1),
	}
	w.wg.Add(1)
	go w.loop()
	return w
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for j := range w.jobs {
		status := w.runPass(j)
		w.events <- event{kind: eventFinished, status: status}
	}
}

// Submit queues one pass. The caller (the facade's dispatcher goroutine)
// guarantees at most one Submit is outstanding at a time; the worker has
// no queue of its own, mirroring the design's single dedicated execution
// context.
func (w *Worker) Submit(kind OperationKind, source *ByteSource, forcedEncoding *Encoding) {
	w.interrupt.Store(false)
	w.jobs <- job{kind: kind, source: source, forcedEncoding: forcedEncoding}
}

// Interrupt asks the running pass to abort at the next block boundary.
func (w *Worker) Interrupt() {
	w.interrupt.Store(true)
}

// Close stops accepting jobs and joins the worker goroutine, guaranteeing
// it has fully exited before returning.
func (w *Worker) Close() {
	close(w.jobs)
	w.wg.Wait()
}

// runPass executes one Attach/FullIndex/PartialIndex scan. On success it
// commits to IndexingData and returns StatusSuccessful; on interruption or
// a persistent I/O error it returns StatusInterrupted without touching
// IndexingData; on exceeding maxLines it returns StatusNoMemory, likewise
// leaving IndexingData at its prior state.
func (w *Worker) runPass(j job) Status {
	isFull := j.kind == OpAttach || j.kind == OpFullIndex

	w.sourceMu.Lock()
	if err := j.source.Reopen(); err != nil {
		w.sourceMu.Unlock()
		w.log.Warnf("indexer: reopen %s failed: %v", j.source.Name(), err)
		return StatusInterrupted
	}
	total := j.source.MappedSize()
	w.sourceMu.Unlock()

	var startPos int64
	if !isFull {
		startPos = int64(w.data.Size())
	}
	if startPos > total {
		startPos = total
	}

	scanEncoding, guessed := w.resolveEncoding(j, isFull, total)

	if isFull {
		w.data.Reset()
	}

	sc := newLineScanner(scanEncoding, TabStop, startPos)
	var lineEnds []BytePos
	var maxLength LineLength

	buf := make([]byte, scanBlockSize)
	pos := startPos
	for pos < total {
		if w.interrupt.Load() {
			return StatusInterrupted
		}

		readLen := int64(len(buf))
		if pos+readLen > total {
			readLen = total - pos
		}

		w.sourceMu.Lock()
		n, err := readWithRetry(j.source, buf[:readLen], pos)
		w.sourceMu.Unlock()
		if err != nil {
			w.log.Warnf("indexer: read %s at %d failed: %v", j.source.Name(), pos, err)
			return StatusInterrupted
		}

		ends, blockMax := sc.Feed(buf[:n])
		lineEnds = append(lineEnds, ends...)
		if blockMax > maxLength {
			maxLength = blockMax
		}
		if len(lineEnds) > w.maxLines {
			return StatusNoMemory
		}

		pos += int64(n)

		percent := 100
		if total > 0 {
			percent = int(100 * pos / total)
			if percent > 100 {
				percent = 100
			}
		} else {
			percent = 0
		}
		w.events <- event{kind: eventProgress, percent: percent}

		if w.interrupt.Load() {
			return StatusInterrupted
		}
	}

	if end, length := sc.Finish(); end != nil {
		lineEnds = append(lineEnds, *end)
		if length > maxLength {
			maxLength = length
		}
	}

	if total == 0 {
		w.events <- event{kind: eventProgress, percent: 0}
	} else {
		w.events <- event{kind: eventProgress, percent: 100}
	}

	if isFull {
		var forced *Encoding
		if j.forcedEncoding != nil {
			forced = j.forcedEncoding
		}
		w.data.CommitFull(lineEnds, BytePos(total), maxLength, guessed, forced)
	} else {
		w.data.CommitPartial(lineEnds, BytePos(total), maxLength)
	}

	return StatusSuccessful
}

// resolveEncoding picks the encoding to scan with: the caller's forced
// encoding, the already-active index encoding for a partial pass (an
// append can't change what the file's bytes mean), or a fresh detection
// pass over the first block for a full scan.
func (w *Worker) resolveEncoding(j job, isFull bool, total int64) (active Encoding, guessed Encoding) {
	if j.forcedEncoding != nil {
		return *j.forcedEncoding, w.data.GuessedEncoding()
	}
	if !isFull {
		enc := w.data.ActiveIndexEncoding()
		return enc, w.data.GuessedEncoding()
	}

	sampleLen := total
	if sampleLen > detectSampleSize {
		sampleLen = detectSampleSize
	}
	w.sourceMu.Lock()
	sample, err := j.source.ReadRange(0, BytePos(sampleLen))
	w.sourceMu.Unlock()
	if err != nil {
		w.log.Warnf("indexer: sample read for encoding detection failed: %v", err)
		return Latin1, Latin1
	}
	guess := DetectEncoding(sample)
	return guess, guess
}

// readWithRetry reads len(buf) bytes at pos, retrying once on a short
// read/transient error before treating it as persistent.
func readWithRetry(source *ByteSource, buf []byte, pos int64) (int, error) {
	source.Seek(BytePos(pos))
	n, err := source.Read(buf)
	if (err == nil || err == io.EOF) && n == len(buf) {
		return n, nil
	}
	source.Seek(BytePos(pos))
	n, err = source.Read(buf)
	if err == io.EOF {
		return n, nil
	}
	return n, err
}

// lineScanner accumulates bytes since the last completed line and finds
// terminators aligned to the encoding's code-unit width, tracking display
// length (tab-expanded) as it goes.
type lineScanner struct {
	encoding Encoding
	term     []byte
	width    int
	tabStop  int

	buf  []byte
	base int64
}

func newLineScanner(enc Encoding, tabStop int, startAbs int64) *lineScanner {
	return &lineScanner{
		encoding: enc,
		term:     enc.Terminator(),
		width:    enc.CharWidth(),
		tabStop:  tabStop,
		base:     startAbs,
	}
}

// Feed appends chunk (read starting exactly at the byte after whatever was
// fed previously) and returns every line end completed by it.
func (sc *lineScanner) Feed(chunk []byte) ([]BytePos, LineLength) {
	sc.buf = append(sc.buf, chunk...)

	var ends []BytePos
	var maxLen LineLength
	for {
		idx := findAlignedTerminator(sc.buf, sc.term, sc.base, sc.width)
		if idx < 0 {
			break
		}
		length := sc.decodedLength(sc.buf[:idx])
		if length > maxLen {
			maxLen = length
		}
		endAbs := sc.base + int64(idx) + int64(sc.width)
		ends = append(ends, BytePos(endAbs))
		sc.buf = sc.buf[idx+sc.width:]
		sc.base = endAbs
	}
	return ends, maxLen
}

// Finish handles a trailing line with no terminator: a non-empty leftover
// buffer at EOF counts as one final line ending at EOF.
func (sc *lineScanner) Finish() (*BytePos, LineLength) {
	if len(sc.buf) == 0 {
		return nil, 0
	}
	length := sc.decodedLength(sc.buf)
	end := BytePos(sc.base + int64(len(sc.buf)))
	return &end, length
}

func (sc *lineScanner) decodedLength(b []byte) LineLength {
	s := ExpandTabs(sc.encoding.Decode(b), sc.tabStop)
	return LineLength(len([]rune(s)))
}
