// Package ethyserr defines the error taxonomy for the ETHYS x402 SDK.
//
// Every failure surfaced by the SDK is one of the concrete types below,
// matched with errors.As. Nothing is retried or swallowed internally;
// retry policy is left to the caller.
package ethyserr

import (
	"fmt"
	"strings"
	"time"
)

// FieldError describes a single violated field in a request payload.
type FieldError struct {
	Field  string
	Reason string
}

func (f FieldError) String() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Reason)
}

// ValidationError is raised before any network call when request input is
// malformed. It enumerates every violated field, not just the first.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field violation and returns the receiver for chaining.
func (e *ValidationError) Add(field, reason string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
	return e
}

// OrNil returns nil when no violations were recorded.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, reason string) *ValidationError {
	return (&ValidationError{}).Add(field, reason)
}

// EncodingError is raised when an agent identity cannot be canonically
// encoded (missing ERC-6551 fields, unparseable address, bad token ID).
type EncodingError struct {
	Field  string
	Reason string
}

func (e *EncodingError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("identity encoding failed: %s", e.Reason)
	}
	return fmt.Sprintf("identity encoding failed: %s: %s", e.Field, e.Reason)
}

// SigningError is raised when a private key is malformed or does not match
// the supplied address.
type SigningError struct {
	Reason string
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing failed: %s", e.Reason)
}

// NetworkError wraps a transport-level failure where no HTTP response was
// received at all.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError is raised when a call exceeds the configured per-call timeout
// or its context deadline.
type TimeoutError struct {
	Endpoint string
	Timeout  time.Duration
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out after %s", e.Endpoint, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// ParsingError is raised when a success-status response body does not match
// the expected schema.
type ParsingError struct {
	Endpoint string
	Err      error
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("failed to parse response from %s: %v", e.Endpoint, e.Err)
}

func (e *ParsingError) Unwrap() error { return e.Err }

// APIError is the base protocol error mapped from a non-success HTTP status.
// Code carries the server-supplied error code (the "error" field of the
// response body) when present.
type APIError struct {
	Endpoint   string
	StatusCode int
	Code       string
	Message    string
	Body       map[string]any
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code
	}
	if msg == "" {
		msg = "API error"
	}
	return fmt.Sprintf("%s (endpoint: %s, status: %d)", msg, e.Endpoint, e.StatusCode)
}

// AuthError maps 401/403 responses (invalid signature, bad API key).
type AuthError struct {
	APIError
}

// PaymentRequiredError maps 402 responses (agent not activated, payment
// not yet verified).
type PaymentRequiredError struct {
	APIError
}

// NotFoundError maps 404 responses.
type NotFoundError struct {
	APIError
}

// RateLimitError maps 429 responses. RetryAfter is zero when the server did
// not supply a Retry-After header.
type RateLimitError struct {
	APIError
	RetryAfter time.Duration
}

// ServerError maps 5xx responses.
type ServerError struct {
	APIError
}
