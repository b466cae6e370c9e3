package logdata

import (
	internal "github.com/user/logdata/internal/logdata"
)

// LogDataError is the base error type for all logdata operations.
type LogDataError = internal.LogDataError

// AlreadyAttachedError is returned by Facade.Attach when a source is
// already attached.
type AlreadyAttachedError = internal.AlreadyAttachedError

// SourceOpenError is returned when a byte source cannot be opened for
// reading.
type SourceOpenError = internal.SourceOpenError

// InvalidRangeError describes an out-of-bounds line-access request. Never
// returned to callers; exported so tests and logging sinks can match on
// its type when it appears as a logged cause.
type InvalidRangeError = internal.InvalidRangeError
