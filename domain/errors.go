package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeInvalid       ErrorCode = "INVALID"
	ErrCodeInvalidState  ErrorCode = "INVALID_STATE"
	ErrCodeRevisionLimit ErrorCode = "REVISION_LIMIT"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal      ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrOrderNotFound   = NewError(ErrCodeNotFound, "Order not found")
	ErrTokenNotFound   = NewError(ErrCodeNotFound, "Invalid or expired portal token")
	ErrSessionNotFound = NewError(ErrCodeNotFound, "session not found")
	ErrReviewConflict  = NewError(ErrCodeConflict, "order was modified concurrently")
	ErrUnauthorized    = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload  = NewError(ErrCodeInvalid, "invalid payload")
)

// StateError signals a review action attempted outside the review status.
// Carries the current status so the portal UI can redirect.
type StateError struct {
	Status OrderStatus
}

func (e *StateError) Error() string {
	return "Order is not in review status"
}

// RevisionLimitError signals that the revision ceiling has been reached.
type RevisionLimitError struct {
	Count   int
	Limit   int
	Message string
}

func (e *RevisionLimitError) Error() string {
	return "Revision limit reached"
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
