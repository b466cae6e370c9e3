package logdata

import "fmt"

// LogDataError is the base error type for all logdata operations.
// Concrete error kinds embed this struct to keep a consistent shape.
type LogDataError struct {
	Code    string // machine-readable code
	Message string // human-readable message
	Err     error  // wrapped cause, optional
}

// Error implements the error interface.
func (e *LogDataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause for error chaining.
func (e *LogDataError) Unwrap() error {
	return e.Err
}

// AlreadyAttachedError is returned by Attach when the facade already owns a source.
// This is the one hard error the facade throws; a second Attach is a programming
// error and must fail loudly rather than silently reattaching.
type AlreadyAttachedError struct {
	LogDataError
}

// NewAlreadyAttachedError constructs an AlreadyAttachedError for the given path.
func NewAlreadyAttachedError(path string) *AlreadyAttachedError {
	return &AlreadyAttachedError{LogDataError{
		Code:    "already_attached",
		Message: fmt.Sprintf("facade is already attached to %q", path),
	}}
}

// SourceOpenError is returned when a byte source cannot be opened for reading.
type SourceOpenError struct {
	LogDataError
}

// NewSourceOpenError wraps a failure to open path for reading.
func NewSourceOpenError(path string, err error) *SourceOpenError {
	return &SourceOpenError{LogDataError{
		Code:    "source_open",
		Message: fmt.Sprintf("cannot open %q for reading", path),
		Err:     err,
	}}
}

// InvalidRangeError records a line-access call made outside [0, nb_lines).
// Never returned to callers, it exists so the warning logged for it carries a typed
// cause instead of a bare string.
type InvalidRangeError struct {
	LogDataError
}

// NewInvalidRangeError describes an out-of-bounds line-access request.
func NewInvalidRangeError(first LineNumber, count LinesCount, nbLines LinesCount) *InvalidRangeError {
	return &InvalidRangeError{LogDataError{
		Code:    "invalid_range",
		Message: fmt.Sprintf("range [%d, %d) exceeds nb_lines=%d", first, uint64(first)+uint64(count), nbLines),
	}}
}
