// Package logformat provides log-level detection for the demo pager's
// level-coloured rendering. It has no bearing on indexing: the core reads
// raw lines by byte offset regardless of what they contain.
package logformat

import (
	"strings"

	"github.com/user/logdata/internal/config"
)

// LogLevel classifies a displayed line by detected severity.
type LogLevel int

const (
	LevelUnknown LogLevel = iota
	LevelTrace
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// LevelDetector detects log levels from line content by substring match,
// most-severe pattern set first. It works on plain strings, since the
// core here has no line-object type of its own; this is a display-only
// annotation layered on top of Facade.GetLine.
type LevelDetector struct {
	patterns map[LogLevel][]string
}

// NewLevelDetector creates a detector from config.
func NewLevelDetector(cfg *config.LogLevelConfig) *LevelDetector {
	return &LevelDetector{
		patterns: map[LogLevel][]string{
			LevelTrace: cfg.TracePatterns,
			LevelDebug: cfg.DebugPatterns,
			LevelInfo:  cfg.InfoPatterns,
			LevelWarn:  cfg.WarnPatterns,
			LevelError: cfg.ErrorPatterns,
			LevelFatal: cfg.FatalPatterns,
		},
	}
}

// Detect returns the log level for a line of text.
func (d *LevelDetector) Detect(line string) LogLevel {
	for _, pattern := range d.patterns[LevelFatal] {
		if strings.Contains(line, pattern) {
			return LevelFatal
		}
	}
	for _, pattern := range d.patterns[LevelError] {
		if strings.Contains(line, pattern) {
			return LevelError
		}
	}
	for _, pattern := range d.patterns[LevelWarn] {
		if strings.Contains(line, pattern) {
			return LevelWarn
		}
	}
	for _, pattern := range d.patterns[LevelInfo] {
		if strings.Contains(line, pattern) {
			return LevelInfo
		}
	}
	for _, pattern := range d.patterns[LevelDebug] {
		if strings.Contains(line, pattern) {
			return LevelDebug
		}
	}
	for _, pattern := range d.patterns[LevelTrace] {
		if strings.Contains(line, pattern) {
			return LevelTrace
		}
	}
	return LevelUnknown
}
