package patcherrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrConfig indicates an invalid patch, matcher, or run configuration.
	ErrConfig = errors.New("configuration error")

	// ErrCyclicDependency indicates a patch transitively depends on itself.
	ErrCyclicDependency = errors.New("cyclic dependency")

	// ErrMatchNotFound indicates a required fingerprint match was absent.
	ErrMatchNotFound = errors.New("match not found")

	// ErrExecute indicates a patch failed during its execute phase.
	ErrExecute = errors.New("execute error")

	// ErrDependencyFailed indicates a patch was not executed because one of
	// its dependencies failed.
	ErrDependencyFailed = errors.New("dependency failed")

	// ErrFinalize indicates a patch failed during its finalize phase.
	ErrFinalize = errors.New("finalize error")

	// ErrOption indicates a patch option value was missing or rejected.
	ErrOption = errors.New("option error")

	// ErrParse indicates a listing, declaration, or options file could not be parsed.
	ErrParse = errors.New("parse error")
)

// ConfigError represents an invalid configuration detected before any patch runs.
// This includes cyclic dependencies, invalid matcher ranges, and duplicate option keys.
type ConfigError struct {
	// Option is the name of the problematic setting (e.g., "dependencies", "range")
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// IsCycle is true if this error reports a dependency cycle
	IsCycle bool
	// Cycle lists the patch names forming the cycle, first name repeated last
	Cycle []string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.IsCycle {
		msg = "cyclic dependency"
	}
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if len(e.Cycle) > 0 {
		msg += ": " + strings.Join(e.Cycle, " -> ")
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrConfig, and also ErrCyclicDependency when IsCycle is set.
func (e *ConfigError) Is(target error) bool {
	if target == ErrConfig {
		return true
	}
	return target == ErrCyclicDependency && e.IsCycle
}

// MatchNotFoundError is returned by match-required accessors when a
// fingerprint did not resolve. The resolver itself never returns it.
type MatchNotFoundError struct {
	// Fingerprint is the fingerprint's name (may be empty)
	Fingerprint string
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *MatchNotFoundError) Error() string {
	msg := "match not found"
	if e.Fingerprint != "" {
		msg += " for fingerprint " + e.Fingerprint
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap returns nil as MatchNotFoundError has no underlying cause.
func (e *MatchNotFoundError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *MatchNotFoundError) Is(target error) bool {
	return target == ErrMatchNotFound
}

// ExecuteError represents a failure in a patch's execute phase, including the
// synthetic failure of a patch whose dependency failed.
type ExecuteError struct {
	// Patch is the name of the failing patch
	Patch string
	// Dependency is the name of the failed dependency that blocked Patch.
	// Empty when Patch's own execute callback failed.
	Dependency string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ExecuteError) Error() string {
	msg := "execute error"
	if e.Patch != "" {
		msg += " in patch " + e.Patch
	}
	if e.Dependency != "" {
		msg += ": dependency " + e.Dependency + " failed"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ExecuteError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrExecute, and also ErrDependencyFailed when Dependency is set.
func (e *ExecuteError) Is(target error) bool {
	if target == ErrExecute {
		return true
	}
	return target == ErrDependencyFailed && e.Dependency != ""
}

// FinalizeError represents a failure in a patch's finalize phase.
type FinalizeError struct {
	// Patch is the name of the failing patch
	Patch string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *FinalizeError) Error() string {
	msg := "finalize error"
	if e.Patch != "" {
		msg += " in patch " + e.Patch
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *FinalizeError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *FinalizeError) Is(target error) bool {
	return target == ErrFinalize
}

// OptionError represents a patch option value that is missing or invalid.
type OptionError struct {
	// Patch is the name of the patch declaring the option
	Patch string
	// Key is the option key
	Key string
	// Value is the rejected value (may be nil)
	Value any
	// Message describes the problem
	Message string
	// Cause is the validator's error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *OptionError) Error() string {
	msg := "option error"
	if e.Key != "" {
		msg += " for " + e.Key
	}
	if e.Patch != "" {
		msg += " in patch " + e.Patch
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *OptionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *OptionError) Is(target error) bool {
	return target == ErrOption
}

// ParseError represents a failure to parse a listing, fingerprint
// declaration, or option values document.
type ParseError struct {
	// Path is the file path or source identifier
	Path string
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
