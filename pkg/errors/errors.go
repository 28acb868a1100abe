// Package errors provides structured error types for strata.
//
// Errors carry a machine-readable [Code] so that the CLI and the HTTP API can
// map failures consistently:
//   - Malformed input (INVALID_INPUT, UNKNOWN_PORT, DUPLICATE_ID,
//     PORT_SIDE_CONFLICT) is reported before any layout stage runs.
//   - Invalid configuration (INVALID_OPTIONS) is reported by option
//     validation.
//   - INVARIANT_VIOLATION signals a defect inside the layout engine itself:
//     a stage produced output that breaks one of its postconditions.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownPort, "edge %s: unknown endpoint %q", edge, name)
//	if errors.Is(err, errors.ErrCodeUnknownPort) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeUnknownPort      Code = "UNKNOWN_PORT"
	ErrCodeDuplicateID      Code = "DUPLICATE_ID"
	ErrCodePortSideConflict Code = "PORT_SIDE_CONFLICT"
	ErrCodeInvalidOptions   Code = "INVALID_OPTIONS"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Engine errors
	ErrCodeInvariant Code = "INVARIANT_VIOLATION"
	ErrCodeCanceled  Code = "CANCELED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)

	// Stage and Check identify the failed postcondition for
	// INVARIANT_VIOLATION errors. Both are empty otherwise.
	Stage string
	Check string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Stage != "" {
		msg = fmt.Sprintf("stage %s: check %s: %s", e.Stage, e.Check, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
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

// Invariant reports a violated postcondition of a layout stage. These errors
// indicate a bug in the engine rather than bad input.
func Invariant(stage, check, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvariant,
		Message: fmt.Sprintf(format, args...),
		Stage:   stage,
		Check:   check,
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

// IsInputError reports whether err was caused by the caller's graph or
// options rather than by the engine.
func IsInputError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeUnknownPort, ErrCodeDuplicateID,
		ErrCodePortSideConflict, ErrCodeInvalidOptions, ErrCodeInvalidFormat:
		return true
	}
	return false
}
