package logdata

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/exp/mmap"
)

// ByteSource provides read-only, seekable, re-openable access to a file on
// disk: a thin wrapper over a memory-mapped reader, extended with
// stream-style Seek/Read/ReadLine primitives (the worker's scanning pass
// reads through Seek/Read) and the cursor-independent ReadRange that the
// facade's line reads use.
//
// Concurrency contract: at most one goroutine may call Seek/Read/ReadLine
// at a time; ByteSource does no locking of its own. The Facade enforces
// this with a mutex shared between the reader API and the Indexer Worker.
type ByteSource struct {
	reader     *mmap.ReaderAt
	path       string
	mappedSize int64 // size covered by the current mapping
	cursor     int64 // stream position for Seek/Read/ReadLine
}

// Open opens path for memory-mapped read access.
func Open(path string) (*ByteSource, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, NewSourceOpenError(path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		_ = reader.Close()
		return nil, NewSourceOpenError(path, err)
	}

	return &ByteSource{
		reader:     reader,
		path:       path,
		mappedSize: info.Size(),
	}, nil
}

// Name returns the path this source was opened from.
func (s *ByteSource) Name() string {
	return s.path
}

// MappedSize returns the size covered by the current mapping. Reads beyond
// this bound require a Reopen first.
func (s *ByteSource) MappedSize() int64 {
	return s.mappedSize
}

// Size stats the path live and returns its current on-disk length. This
// does not require the mapping to be up to date: it is used to detect
// growth or truncation before deciding whether to reopen.
func (s *ByteSource) Size() (int64, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Seek positions the stream cursor for the next Read or ReadLine.
func (s *ByteSource) Seek(pos BytePos) {
	s.cursor = int64(pos)
}

// Read reads up to len(buf) bytes at the current cursor and advances it.
func (s *ByteSource) Read(buf []byte) (int, error) {
	if s.cursor >= s.mappedSize {
		return 0, io.EOF
	}
	remaining := s.mappedSize - s.cursor
	if int64(len(buf)) > remaining {
		buf = buf[:remaining]
	}
	n, err := s.reader.ReadAt(buf, s.cursor)
	s.cursor += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

// ReadLine reads from the cursor up to and including the next occurrence
// of term (the encoding's line terminator), or to the mapped end of file if
// no terminator is found. term alignment is checked against the absolute
// file offset so multi-byte terminators (UTF-16/32) are never matched on a
// misaligned byte.
func (s *ByteSource) ReadLine(term []byte) ([]byte, error) {
	width := len(term)
	if width == 0 {
		width = 1
	}
	start := s.cursor
	if start >= s.mappedSize {
		return nil, io.EOF
	}

	const scanChunk = 4096
	end := start
	for end < s.mappedSize {
		readEnd := end + scanChunk
		if readEnd > s.mappedSize {
			readEnd = s.mappedSize
		}
		buf := make([]byte, readEnd-end)
		n, err := s.reader.ReadAt(buf, end)
		if n <= 0 && err != nil && err != io.EOF {
			return nil, err
		}
		buf = buf[:n]

		if idx := findAlignedTerminator(buf, term, end, width); idx >= 0 {
			lineEnd := end + int64(idx) + int64(width)
			data := make([]byte, lineEnd-start)
			if _, rerr := s.reader.ReadAt(data, start); rerr != nil && rerr != io.EOF {
				return nil, rerr
			}
			s.cursor = lineEnd
			return data, nil
		}
		end = readEnd
	}

	// No terminator before EOF: return the trailing partial line as-is.
	data := make([]byte, s.mappedSize-start)
	if _, rerr := s.reader.ReadAt(data, start); rerr != nil && rerr != io.EOF {
		return nil, rerr
	}
	s.cursor = s.mappedSize
	return data, nil
}

// findAlignedTerminator returns the offset within buf of the first
// occurrence of term whose absolute file position (base+offset) is a
// multiple of width, or -1 if none is found.
func findAlignedTerminator(buf, term []byte, base int64, width int) int {
	off := 0
	for {
		idx := bytes.Index(buf[off:], term)
		if idx < 0 {
			return -1
		}
		abs := base + int64(off+idx)
		if abs%int64(width) == 0 {
			return off + idx
		}
		off += idx + 1
	}
}

// ReadRange reads bytes [start, end) directly, independent of the cursor.
// Used by the facade's range-read algorithm to fetch a whole batch of
// lines with a single mutex acquisition.
func (s *ByteSource) ReadRange(start, end BytePos) ([]byte, error) {
	if int64(end) > s.mappedSize {
		end = BytePos(s.mappedSize)
	}
	if start >= end {
		return nil, nil
	}
	buf := make([]byte, int64(end)-int64(start))
	_, err := s.reader.ReadAt(buf, int64(start))
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf, nil
}

// Reopen closes and reopens the mapping by path, picking up growth (or
// shrinkage) of the underlying file. Intended for rotation recovery and
// for the worker to see newly-appended bytes before a partial reindex.
func (s *ByteSource) Reopen() error {
	if s.reader != nil {
		_ = s.reader.Close()
	}

	reader, err := mmap.Open(s.path)
	if err != nil {
		return NewSourceOpenError(s.path, err)
	}
	info, err := os.Stat(s.path)
	if err != nil {
		_ = reader.Close()
		return NewSourceOpenError(s.path, err)
	}

	s.reader = reader
	s.mappedSize = info.Size()
	s.cursor = 0
	return nil
}

// Close releases the mapping.
func (s *ByteSource) Close() error {
	if s.reader == nil {
		return nil
	}
	return s.reader.Close()
}
