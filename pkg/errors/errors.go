// Package errors provides structured error types for the storyshuffle application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes mirror the constrained-shuffle failure taxonomy: everything a caller
// can get wrong has a distinct code, and the single internal failure mode
// (INFEASIBLE) is kept separate so it is never mistaken for a user error.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownSection, "no section %q", id)
//	if errors.Is(err, errors.ErrCodeUnknownSection) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidRules, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Constraint construction errors
	ErrCodeUnknownSection Code = "UNKNOWN_SECTION"
	ErrCodeSelfConstraint Code = "SELF_CONSTRAINT"

	// Validation errors
	ErrCodeCycleDetected           Code = "CYCLE_DETECTED"
	ErrCodeDuplicateFixedPosition  Code = "DUPLICATE_FIXED_POSITION"
	ErrCodeFixedPositionOutOfRange Code = "FIXED_POSITION_OUT_OF_RANGE"
	ErrCodeFixedPositionConflict   Code = "FIXED_POSITION_CONFLICT"

	// Engine errors. Infeasible signals a validator defect, never user input.
	ErrCodeInfeasible Code = "INFEASIBLE"

	// Input and glue errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidDelimiter Code = "INVALID_DELIMITER"
	ErrCodeInvalidRules     Code = "INVALID_RULES"

	// Resource errors
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeWorkspaceNotFound Code = "WORKSPACE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
