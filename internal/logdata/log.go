package logdata

import "log"

// Logger is the minimal logging seam the facade and worker call into.
// No example in the retrieval pack imports a structured logging library,
// so this stays a thin standard-library-backed interface rather than
// reaching for an ecosystem logger that nothing here is grounded on.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// nopLogger discards everything; it is the default when no Logger is supplied.
type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}

// StdLogger adapts the standard library's *log.Logger to the Logger interface.
type StdLogger struct {
	*log.Logger
}

// Debugf logs at debug level.
func (l StdLogger) Debugf(format string, args ...any) { l.Printf("DEBUG "+format, args...) }

// Infof logs at info level.
func (l StdLogger) Infof(format string, args ...any) { l.Printf("INFO "+format, args...) }

// Warnf logs at warn level.
func (l StdLogger) Warnf(format string, args ...any) { l.Printf("WARN "+format, args...) }
