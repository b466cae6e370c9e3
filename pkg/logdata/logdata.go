// Package logdata provides the public API for the log-viewer indexing
// core: attach a growing text file, watch it, and read it back by line
// number at interactive latency while it is being indexed in the
// background.
//
// This package re-exports the internal implementation's types and
// constructors, exposing what a viewing UI or a filtered-search consumer
// needs and nothing of the indexing machinery itself.
//
// Import Path: github.com/user/logdata/pkg/logdata
package logdata

import (
	internal "github.com/user/logdata/internal/logdata"
)

// Facade is the log-data core: it owns the byte source and the index and
// exposes line-access operations to readers. Safe for concurrent calls.
type Facade = internal.Facade

// FilteredView is a read-only, thread-safe handle bound to a Facade,
// intended for a search/filter consumer that needs its own nb_lines /
// pos_for_line / get_line / get_expanded_line view.
type FilteredView = internal.FilteredView

// Option configures a Facade at construction time.
type Option = internal.Option

// New constructs an empty Facade. Attach it to a path before reading.
func New(opts ...Option) *Facade {
	return internal.New(opts...)
}

// WithLogger installs a Logger; the default discards everything.
func WithLogger(log Logger) Option {
	return internal.WithLogger(log)
}

// WithWatcherOps overrides the file-watcher backend, chiefly for tests.
func WithWatcherOps(ops WatcherOps) Option {
	return internal.WithWatcherOps(ops)
}

// OnProgress registers the loading_progressed(percent) consumer.
func OnProgress(fn func(percent int)) Option {
	return internal.OnProgress(fn)
}

// OnFinished registers the loading_finished(status) consumer.
func OnFinished(fn func(status Status)) Option {
	return internal.OnFinished(fn)
}

// OnFileChanged registers the file_changed(status) consumer.
func OnFileChanged(fn func(state FileChangeState)) Option {
	return internal.OnFileChanged(fn)
}

// Data model types, re-exported so callers never import the internal
// package directly.
type (
	BytePos         = internal.BytePos
	LineNumber      = internal.LineNumber
	LinesCount      = internal.LinesCount
	LineLength      = internal.LineLength
	Status          = internal.Status
	FileChangeState = internal.FileChangeState
	Encoding        = internal.Encoding
	ByteWidthClass  = internal.ByteWidthClass
	Logger          = internal.Logger
	WatcherOps      = internal.WatcherOps
)

// TabStop is the fixed tab width used for all "expanded" reads.
const TabStop = internal.TabStop

// Status values.
const (
	StatusSuccessful  = internal.StatusSuccessful
	StatusInterrupted = internal.StatusInterrupted
	StatusNoMemory    = internal.StatusNoMemory
)

// FileChangeState values.
const (
	Unchanged = internal.Unchanged
	DataAdded = internal.DataAdded
	Truncated = internal.Truncated
)

// Predefined encodings.
var (
	Latin1  = internal.Latin1
	UTF8    = internal.UTF8
	UTF16LE = internal.UTF16LE
	UTF16BE = internal.UTF16BE
	UTF32LE = internal.UTF32LE
	UTF32BE = internal.UTF32BE
)

// DetectEncoding guesses the encoding of a sample of file bytes.
func DetectEncoding(sample []byte) Encoding {
	return internal.DetectEncoding(sample)
}

// ExpandTabs expands tabs in s to the next multiple of tabStop.
func ExpandTabs(s string, tabStop int) string {
	return internal.ExpandTabs(s, tabStop)
}

// NewWatcherOps returns the production WatcherOps backed by fsnotify.
func NewWatcherOps() WatcherOps {
	return internal.NewWatcherOps()
}
