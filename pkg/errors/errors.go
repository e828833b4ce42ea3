// Package errors provides structured error types for the flowcore engine.
//
// This package defines error codes and types that enable:
//   - A single, stable taxonomy for everything the engine reports
//   - Machine-readable error codes for the OnError callback
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Runtime problems are non-fatal. The store reports them through its error
// callback and recovers locally (clamping, skipping, treating a node as
// top-level). Only configuration problems surface as returned errors:
//   - MISSING_HANDLE: a connection references an unknown handle
//   - INVALID_PARENT: a parentId does not resolve or forms a cycle
//   - DUPLICATE_ID: two nodes or edges share an id
//   - OUT_OF_EXTENT: a position was clamped into its extent
//   - INVALID_VIEWPORT, INVALID_CONFIG: construction-time failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidParent, "node %q: parent %q not found", id, parent)
//	if errors.Is(err, errors.ErrCodeInvalidParent) {
//	    // treat node as top-level
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidConfig, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes reported by the engine.
const (
	// Graph consistency
	ErrCodeMissingHandle Code = "MISSING_HANDLE"
	ErrCodeInvalidParent Code = "INVALID_PARENT"
	ErrCodeDuplicateID   Code = "DUPLICATE_ID"
	ErrCodeOutOfExtent   Code = "OUT_OF_EXTENT"

	// Construction and configuration
	ErrCodeInvalidViewport Code = "INVALID_VIEWPORT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidInput    Code = "INVALID_INPUT"

	// Lookups
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Reporter receives non-fatal engine errors. It mirrors the OnError callback
// exposed to the external state owner.
type Reporter func(code Code, message string)

// Report sends e to r if both are non-nil.
func (r Reporter) Report(e *Error) {
	if r == nil || e == nil {
		return
	}
	r(e.Code, e.Message)
}
