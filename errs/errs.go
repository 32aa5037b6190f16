// Package errs implements the four-level error taxonomy spec.md §7 names:
// Configuration, Resource, Runtime-recoverable, Logic-fatal. Each level
// wraps github.com/pkg/errors so a wrapped error keeps its origin (a YAML
// field, a dangling part reference, a closed MIDI port) through
// propagation to the caller that must decide what to do with it.
package errs

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Level names which of spec.md §7's four taxonomy buckets an error falls
// into.
type Level int

const (
	// Configuration errors are invalid values, unknown scale/generator
	// names, or dangling part references. They must fail fast at load and
	// never reach runtime.
	Configuration Level = iota
	// Resource errors are MIDI device unavailable / cannot open sink. Fail
	// at startup; at runtime, mark the device offline and drop its events.
	Resource
	// RuntimeRecoverable errors are queue saturation or an out-of-range
	// parameter: clamp or drop with a diagnostic, never abort.
	RuntimeRecoverable
	// LogicFatal errors are internal invariant violations: abort in debug
	// builds, recover-plus-diagnostic in release builds.
	LogicFatal
)

func (l Level) String() string {
	switch l {
	case Configuration:
		return "configuration"
	case Resource:
		return "resource"
	case RuntimeRecoverable:
		return "runtime-recoverable"
	case LogicFatal:
		return "logic-fatal"
	}
	return "unknown"
}

// Error is a taxonomy-tagged error. Cause() exposes the wrapped error for
// errors.Is/As and for github.com/pkg/errors.Cause.
type Error struct {
	level Level
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.level, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.level, e.msg)
}

// Unwrap lets errors.Is/errors.As see through to the wrapped cause.
func (e *Error) Unwrap() error { return e.cause }

// Cause returns the wrapped error, for github.com/pkg/errors.Cause callers.
func (e *Error) Cause() error { return e.cause }

// Level reports which taxonomy bucket this error belongs to.
func (e *Error) Level() Level { return e.level }

// New builds a bare taxonomy error with no wrapped cause.
func New(level Level, msg string) *Error {
	return &Error{level: level, msg: msg}
}

// Wrap annotates cause with msg and tags it with level, using
// github.com/pkg/errors.Wrap so the original stack trace survives.
func Wrap(level Level, cause error, msg string) *Error {
	if cause == nil {
		return nil
	}
	return &Error{level: level, msg: msg, cause: pkgerrors.Wrap(cause, msg)}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(level Level, cause error, format string, args ...interface{}) *Error {
	if cause == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return &Error{level: level, msg: msg, cause: pkgerrors.Wrap(cause, msg)}
}

// Configf builds a Configuration-level error, the common case at config
// load time (unknown scale name, dangling reference, value out of range).
func Configf(format string, args ...interface{}) *Error {
	return New(Configuration, fmt.Sprintf(format, args...))
}

// Resourcef builds a Resource-level error (MIDI device unavailable).
func Resourcef(format string, args ...interface{}) *Error {
	return New(Resource, fmt.Sprintf(format, args...))
}

// IsConfiguration reports whether err is (or wraps) a Configuration-level
// *Error.
func IsConfiguration(err error) bool { return levelIs(err, Configuration) }

// IsResource reports whether err is (or wraps) a Resource-level *Error.
func IsResource(err error) bool { return levelIs(err, Resource) }

// IsLogicFatal reports whether err is (or wraps) a LogicFatal-level
// *Error.
func IsLogicFatal(err error) bool { return levelIs(err, LogicFatal) }

func levelIs(err error, level Level) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.level == level
	}
	return false
}
