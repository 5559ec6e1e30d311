// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidSignature indicates a webhook request failed signature verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrMenuNotRegistered indicates a rich menu has no remote identifier yet,
	// so it cannot be linked to a user.
	ErrMenuNotRegistered = errors.New("rich menu not registered")

	// ErrInvalidInput indicates a malformed inbound payload.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingSource indicates an event carries no source user id.
	ErrMissingSource = errors.New("event has no source user")

	// ErrUnsupportedEvent indicates a webhook event type the bot does not handle.
	ErrUnsupportedEvent = errors.New("unsupported event type")
)

// LineAPIError represents a failed call to the LINE Messaging API with context.
type LineAPIError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *LineAPIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("line api error (endpoint=%s, status=%d): %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("line api error (endpoint=%s): %v", e.Endpoint, e.Err)
}

func (e *LineAPIError) Unwrap() error {
	return e.Err
}

// NewLineAPIError creates a new LINE API error.
func NewLineAPIError(endpoint string, statusCode int, err error) *LineAPIError {
	return &LineAPIError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Err:        err,
	}
}
