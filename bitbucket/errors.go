package bitbucket

import (
	"errors"
	"fmt"
)

// Common errors returned by the Bitbucket client.
var (
	// ErrMissingToken is returned when no access token is configured.
	ErrMissingToken = errors.New("bitbucket access token is required")

	// ErrInvalidServerURL is returned when the server URL does not end
	// with the /rest suffix.
	ErrInvalidServerURL = errors.New("invalid bitbucket server URL")
)

// RequestError represents a failed API request, either a transport failure
// (StatusCode 0) or an HTTP error response (StatusCode >= 400).
type RequestError struct {
	StatusCode int
	Method     string
	URL        string
	// Message is a best-effort extraction from the server's error body.
	// It is advisory and may be empty.
	Message string
	Err     error
}

// Error implements the error interface
func (e *RequestError) Error() string {
	if e.IsTransport() {
		return fmt.Sprintf("request failed: %s %s: %v", e.Method, e.URL, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d for %s %s: %s", e.StatusCode, e.Method, e.URL, e.Message)
	}
	return fmt.Sprintf("HTTP %d for %s %s", e.StatusCode, e.Method, e.URL)
}

// Unwrap returns the underlying transport error, if any.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether the request failed before any HTTP status
// was received (connection refused, timeout, DNS, TLS).
func (e *RequestError) IsTransport() bool {
	return e.StatusCode == 0
}

// IsNotFound checks if the error indicates a not found response
func (e *RequestError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *RequestError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}
