// Package apperrors provides sentinel and custom error types for the application.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrEmptyInput is returned when an embedding provider is called with empty input.
var ErrEmptyInput = errors.New("input text is empty")

// ErrRunInProgress is returned when an embedding run is started while another
// run on the same orchestrator has not finished.
var ErrRunInProgress = errors.New("embedding run already in progress")

// StatusResourceExhausted is the provider status string that, alongside HTTP 429,
// signals throttling.
const StatusResourceExhausted = "RESOURCE_EXHAUSTED"

// ProviderError is a failure reported by an embedding provider. StatusCode is the
// HTTP status when known; Code and Status come from the provider's error envelope
// when present.
type ProviderError struct {
	StatusCode int
	Code       int
	Status     string
	Message    string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}

	if e.StatusCode != 0 {
		return fmt.Sprintf("embedding provider: %s (status %d)", msg, e.StatusCode)
	}

	return "embedding provider: " + msg
}

// RateLimited reports whether this error is a throttling signal (HTTP 429 or
// a RESOURCE_EXHAUSTED status from the provider envelope).
func (e *ProviderError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Status == StatusResourceExhausted
}

// Is implements the error interface for error comparison.
func (e *ProviderError) Is(target error) bool {
	_, ok := target.(*ProviderError)

	return ok
}

// IsRateLimited reports whether err should be retried as provider throttling.
// Structured ProviderErrors are classified by status; anything else falls back to
// message sniffing so transient transport errors that mention throttling are
// retried too.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.RateLimited()
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "resource exhausted")
}

// ErrNotFound represents a "not found" error.
// Use when a requested resource doesn't exist.
var ErrNotFound = &NotFoundError{}

// NotFoundError is a sentinel error for resources that are not found.
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new NotFoundError with a custom message.
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Resource != "" {
		return e.Resource + " not found"
	}

	return "resource not found"
}

// Is implements the error interface for error comparison.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)

	return ok
}
