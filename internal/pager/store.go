// Package pager is the demo bubbletea application that exercises the
// logdata facade end to end: attach, live tailing, reload, and encoding
// switch. It contains no indexing logic; it is a plain consumer of the
// public facade API, the way a viewer's UI layer consumes a data source
// it does not own.
package pager

import (
	"sync"

	"github.com/user/logdata/pkg/logdata"
)

// Snapshot is the latest view of the facade's state available to the UI.
// Grounded on five82-flyer's internal/state.Store: the facade's callbacks
// run on its own dispatcher goroutine and must never touch bubbletea
// state directly, so they write here instead and the UI polls it.
type Snapshot struct {
	NbLines    logdata.LinesCount
	MaxLength  logdata.LineLength
	FileSize   logdata.BytePos
	Percent    int
	Loading    bool
	LastStatus logdata.Status
	HasStatus  bool
	FileChange logdata.FileChangeState
	Err        string
}

// Store coordinates concurrent updates to the snapshot: facade callbacks
// write from the dispatcher goroutine, the bubbletea update loop reads on
// its own goroutine via a poll tick.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Store) setProgress(percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Percent = percent
	s.snap.Loading = true
}

func (s *Store) setFinished(status logdata.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Loading = false
	s.snap.LastStatus = status
	s.snap.HasStatus = true
	if status == logdata.StatusSuccessful {
		s.snap.Percent = 100
	}
}

func (s *Store) setFileChanged(state logdata.FileChangeState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.FileChange = state
}

func (s *Store) refreshCounts(f *logdata.Facade) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.NbLines = f.NbLines()
	s.snap.MaxLength = f.MaxLength()
	s.snap.FileSize = f.FileSize()
}
