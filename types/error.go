package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the engine.
type ErrorCode string

// Definition error codes
const (
	ErrSequenceNotFound ErrorCode = "SEQUENCE_NOT_FOUND"
	ErrSequenceInvalid  ErrorCode = "SEQUENCE_INVALID"
	ErrStepInvalid      ErrorCode = "STEP_INVALID"
)

// Execution error codes
const (
	ErrCircuitOpen      ErrorCode = "CIRCUIT_OPEN"
	ErrToolNotFound     ErrorCode = "TOOL_NOT_FOUND"
	ErrProviderNotFound ErrorCode = "PROVIDER_NOT_FOUND"
	ErrStepFailed       ErrorCode = "STEP_FAILED"
	ErrRetryExhausted   ErrorCode = "RETRY_EXHAUSTED"
	ErrExecutionFailed  ErrorCode = "EXECUTION_FAILED"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a new Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// CodeOf extracts the ErrorCode from an error chain, or "" if the chain
// contains no *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether the error chain contains an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}
