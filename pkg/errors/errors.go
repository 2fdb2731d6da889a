package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// Assignment validation failures. All reject the write synchronously and
// never partially commit state.
var (
	ErrInvalidDateRange   = New("INVALID_DATE_RANGE", http.StatusBadRequest, "end date cannot precede start date")
	ErrMissingModality    = New("MISSING_MODALITY", http.StatusBadRequest, "the assignee has no modality on their teacher profile")
	ErrMissingDedication  = New("MISSING_DEDICATION", http.StatusBadRequest, "a dedication is required")
	ErrRegimeNotFound     = New("REGIME_NOT_FOUND", http.StatusBadRequest, "no active workload regime for the modality and dedication")
	ErrOverlapInSection   = New("OVERLAP_IN_SECTION", http.StatusConflict, "the interval overlaps another assignment in the same section")
	ErrOverlapInPosition  = New("OVERLAP_IN_POSITION", http.StatusConflict, "the interval overlaps another assignment holding the same position")
	ErrSubjectUncovered   = New("SUBJECT_UNCOVERED", http.StatusConflict, "closing would leave the subject without a primary instructor")
	ErrAssignmentFinished = New("ASSIGNMENT_FINISHED", http.StatusConflict, "the assignment already has an end date")
)

// ErrCacheMiss signals a cache lookup found nothing. It is a plain sentinel
// for internal control flow, never surfaced to API callers.
var ErrCacheMiss = errors.New("cache miss")

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
