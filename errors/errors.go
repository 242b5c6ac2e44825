// Package errors provides structured error types for the lww kit.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents the type of error that occurred
type ErrorCode string

const (
	ErrCodeValueFailure        ErrorCode = "VALUE_FAILURE"
	ErrCodeRegistrationFailure ErrorCode = "REGISTRATION_FAILURE"
	ErrCodeStorageFailure      ErrorCode = "STORAGE_FAILURE"
	ErrCodeValidationFailure   ErrorCode = "VALIDATION_FAILURE"
)

// Kind classifies an error independently of the operation that produced it.
type Kind string

const (
	KindInternal     Kind = "internal"
	KindInvalidInput Kind = "invalid_input"
	KindTransient    Kind = "transient"
)

// Operation represents the type of resolver operation
type Operation string

const (
	OpAccept   Operation = "accept"
	OpFinalize Operation = "finalize"
	OpRegister Operation = "register"
	OpOpen     Operation = "open"
	OpWindow   Operation = "window"
	OpClone    Operation = "clone"
)

// ResolveError represents an error raised while building or querying a
// last-writer-wins reduction.
type ResolveError struct {
	// Operation during which the error occurred
	Op Operation

	// Component that generated the error (e.g., "lww", "sqlitefunc")
	Component string

	// Underlying error
	Err error

	// Whether the operation can be retried. Resolution itself is a pure
	// function of its inputs, so core failures are never retryable; only
	// host-engine failures (connection setup, busy databases) are.
	Retryable bool

	// Error code for the error type
	Code ErrorCode

	// Kind classification
	Kind Kind

	// Metadata for additional context
	Metadata map[string]interface{}
}

func (e *ResolveError) Error() string {
	var msg string
	if e.Component != "" {
		msg = fmt.Sprintf("%s operation failed in %s component", e.Op, e.Component)
	} else {
		msg = fmt.Sprintf("%s operation failed", e.Op)
	}

	if e.Code != "" {
		msg += fmt.Sprintf(" [%s]", e.Code)
	}

	return msg + fmt.Sprintf(": %v", e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// NewValueError creates a ResolveError for a failed payload copy or release.
// The winner held before the failing row stays authoritative, so these are
// never retryable.
func NewValueError(op Operation, cause error) *ResolveError {
	return &ResolveError{
		Code:      ErrCodeValueFailure,
		Op:        op,
		Component: "lww",
		Err:       cause,
		Retryable: false,
		Kind:      KindInternal,
	}
}

// NewRegistrationError creates a ResolveError for a failed function
// registration against the host engine.
func NewRegistrationError(op Operation, cause error) *ResolveError {
	return &ResolveError{
		Code:      ErrCodeRegistrationFailure,
		Op:        op,
		Component: "sqlitefunc",
		Err:       cause,
		Retryable: false,
		Kind:      KindInternal,
	}
}

// NewStorageError creates a ResolveError for a host database failure.
func NewStorageError(op Operation, cause error) *ResolveError {
	return &ResolveError{
		Code:      ErrCodeStorageFailure,
		Op:        op,
		Component: "sqlitefunc",
		Err:       cause,
		Retryable: true,
		Kind:      KindTransient,
	}
}

// NewValidationError creates a ResolveError for rejected configuration or
// malformed input that cannot be silently skipped.
func NewValidationError(op Operation, cause error) *ResolveError {
	return &ResolveError{
		Code:      ErrCodeValidationFailure,
		Op:        op,
		Err:       cause,
		Retryable: false,
		Kind:      KindInvalidInput,
	}
}

// New creates a new ResolveError
func New(op Operation, err error) *ResolveError {
	return &ResolveError{
		Op:  op,
		Err: err,
	}
}

// NewWithComponent creates a new ResolveError with component information
func NewWithComponent(op Operation, component string, err error) *ResolveError {
	return &ResolveError{
		Op:        op,
		Component: component,
		Err:       err,
	}
}

// IsRetryable checks if an error is a retryable ResolveError
func IsRetryable(err error) bool {
	var resErr *ResolveError
	if errors.As(err, &resErr) {
		return resErr.Retryable
	}
	return false
}

// Op is an argument type for E identifying the failing operation.
func Op(op string) Operation { return Operation(op) }

// Component is an argument type for E identifying the failing component.
type Component string

// E builds a ResolveError from its arguments. Accepted argument types:
// Operation, Component, ErrorCode, Kind, error, and string (used as the
// underlying error message when no error argument is given).
func E(args ...interface{}) error {
	e := &ResolveError{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Operation:
			e.Op = a
		case Component:
			e.Component = string(a)
		case ErrorCode:
			e.Code = a
		case Kind:
			e.Kind = a
		case error:
			e.Err = a
		case string:
			if e.Err == nil {
				e.Err = errors.New(a)
			}
		}
	}
	if e.Err == nil {
		e.Err = errors.New("unknown error")
	}
	return e
}
