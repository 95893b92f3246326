// Package errors defines the service error taxonomy and its HTTP mapping.
// Every failure a handler can surface is one of these codes; anything else
// is wrapped as an internal error before it leaves the service boundary.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure.
type Code string

const (
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeInvalidWallet    Code = "INVALID_WALLET"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeInvalidPuzzle    Code = "INVALID_PUZZLE"
	CodePuzzleExpired    Code = "PUZZLE_EXPIRED"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeAlreadyCompleted Code = "ALREADY_COMPLETED"
	CodeIncorrect        Code = "INCORRECT_SOLUTION"
	CodeNotFound         Code = "NOT_FOUND"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// ServiceError is a failure with a stable code and HTTP status. Wrapped
// causes stay attached for logging but never reach the caller.
type ServiceError struct {
	Code       Code
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	cause      error
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause for errors.Is/As.
func (e *ServiceError) Unwrap() error { return e.cause }

// WithDetails attaches a key/value pair for diagnostics.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Validation reports malformed or missing input.
func Validation(message string) *ServiceError {
	return &ServiceError{Code: CodeValidation, Message: message, HTTPStatus: http.StatusBadRequest}
}

// InvalidWallet reports a malformed wallet address header.
func InvalidWallet(message string) *ServiceError {
	return &ServiceError{Code: CodeInvalidWallet, Message: message, HTTPStatus: http.StatusBadRequest}
}

// Unauthorized reports a missing wallet identity on a protected route.
func Unauthorized(message string) *ServiceError {
	return &ServiceError{Code: CodeUnauthorized, Message: message, HTTPStatus: http.StatusUnauthorized}
}

// InvalidPuzzle reports a reference to an unknown puzzle.
func InvalidPuzzle(message string) *ServiceError {
	return &ServiceError{Code: CodeInvalidPuzzle, Message: message, HTTPStatus: http.StatusBadRequest}
}

// PuzzleExpired reports a submission past the 24h window.
func PuzzleExpired(message string) *ServiceError {
	return &ServiceError{Code: CodePuzzleExpired, Message: message, HTTPStatus: http.StatusBadRequest}
}

// RateLimited reports the daily attempt quota being exhausted.
func RateLimited(message string) *ServiceError {
	return &ServiceError{Code: CodeRateLimited, Message: message, HTTPStatus: http.StatusTooManyRequests}
}

// AlreadyCompleted reports a duplicate correct submission.
func AlreadyCompleted(message string) *ServiceError {
	return &ServiceError{Code: CodeAlreadyCompleted, Message: message, HTTPStatus: http.StatusBadRequest}
}

// Incorrect reports a wrong answer. This is a normal outcome, not a fault;
// handlers return it with HTTP 200.
func Incorrect(message string) *ServiceError {
	return &ServiceError{Code: CodeIncorrect, Message: message, HTTPStatus: http.StatusOK}
}

// NotFound reports a missing record or an ownership mismatch.
func NotFound(message string) *ServiceError {
	return &ServiceError{Code: CodeNotFound, Message: message, HTTPStatus: http.StatusNotFound}
}

// Internal wraps an unexpected fault. The cause is logged; only the generic
// message crosses the boundary.
func Internal(message string, cause error) *ServiceError {
	return &ServiceError{Code: CodeInternal, Message: message, HTTPStatus: http.StatusInternalServerError, cause: cause}
}

// GetServiceError extracts a ServiceError from an error chain, or nil.
func GetServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	svcErr := GetServiceError(err)
	return svcErr != nil && svcErr.Code == code
}
