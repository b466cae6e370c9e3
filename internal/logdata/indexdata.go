package logdata

import "sync"

// IndexingData is the authoritative post-indexing state: line-end offsets,
// the byte size already covered, the longest line seen, and the encoding
// the index was built with, plus the separate forced/guessed encoding
// fields and incremental, invariant-preserving commits from the worker.
//
// Guarded by a single readers-writer lock: the worker publishes with a
// write lock as one transactional swap, readers take a read lock. Never
// acquire the Source Mutex while holding this lock, or vice versa.
type IndexingData struct {
	mu sync.RWMutex

	sizeIndexed BytePos
	lineEnds    []BytePos
	maxLength   LineLength

	forcedEncoding  *Encoding
	guessedEncoding Encoding
}

// NewIndexingData returns an empty IndexingData with the Latin-1 fallback
// as its guessed encoding
func NewIndexingData() *IndexingData {
	return &IndexingData{guessedEncoding: Latin1}
}

// NbLines returns the number of indexed lines.
func (d *IndexingData) NbLines() LinesCount {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return LinesCount(len(d.lineEnds))
}

// MaxLength returns the longest line's display length seen so far.
func (d *IndexingData) MaxLength() LineLength {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.maxLength
}

// Size returns the number of bytes already covered by the index.
func (d *IndexingData) Size() BytePos {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sizeIndexed
}

// PosForLine returns the byte offset immediately past line's terminator
// (or EOF, for a trailing line without one). Returns 0 for an out-of-range
// line; callers must check NbLines first.
func (d *IndexingData) PosForLine(line LineNumber) BytePos {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i := line.AsIndex()
	if i < 0 || i >= len(d.lineEnds) {
		return 0
	}
	return d.lineEnds[i]
}

// Snapshot returns nb_lines and a function to resolve line ends under a
// single read-lock acquisition, so a range read sees a consistent view
// across many PosForLine calls.
func (d *IndexingData) Snapshot() (LinesCount, func(LineNumber) BytePos) {
	d.mu.RLock()
	lineEnds := d.lineEnds
	nb := LinesCount(len(lineEnds))
	d.mu.RUnlock()
	return nb, func(line LineNumber) BytePos {
		i := line.AsIndex()
		if i < 0 || i >= len(lineEnds) {
			return 0
		}
		return lineEnds[i]
	}
}

// CommitFull atomically replaces the index with the result of a full scan.
// Called by the worker only on a successful pass; on Interrupted/NoMemory
// the worker never calls this and the prior state is preserved untouched.
func (d *IndexingData) CommitFull(lineEnds []BytePos, size BytePos, maxLength LineLength, guessed Encoding, forced *Encoding) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lineEnds = lineEnds
	d.sizeIndexed = size
	d.maxLength = maxLength
	d.guessedEncoding = guessed
	d.forcedEncoding = forced
}

// CommitPartial atomically extends the index with a prefix-preserving
// append. Invariant: the prefix of line_ends with values <= the prior
// size_indexed is unchanged.
func (d *IndexingData) CommitPartial(newLineEnds []BytePos, newSize BytePos, newMaxLength LineLength) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lineEnds = append(d.lineEnds, newLineEnds...)
	d.sizeIndexed = newSize
	if newMaxLength > d.maxLength {
		d.maxLength = newMaxLength
	}
}

// Reset clears all fields; called by the worker at the start of a full
// reindex, before it has anything new to commit.
func (d *IndexingData) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lineEnds = nil
	d.sizeIndexed = 0
	d.maxLength = 0
}

// ForcedEncoding returns the user-pinned encoding, if any.
func (d *IndexingData) ForcedEncoding() *Encoding {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.forcedEncoding
}

// GuessedEncoding returns the detector's best guess.
func (d *IndexingData) GuessedEncoding() Encoding {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.guessedEncoding
}

// ActiveIndexEncoding returns the forced encoding if set, else the guess.
// This is the encoding the worker used to compute line boundaries and
// max_length, distinct from the facade's display encoding.
func (d *IndexingData) ActiveIndexEncoding() Encoding {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.forcedEncoding != nil {
		return *d.forcedEncoding
	}
	return d.guessedEncoding
}
