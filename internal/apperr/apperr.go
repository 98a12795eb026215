// Package apperr defines the normalized error value produced by the
// classifier and consumed by every layer above it. Nothing outside this
// package inspects raw transport or decode failures.
package apperr

import (
	"errors"
	"fmt"
	"time"
)

// Kind categorizes a normalized failure.
type Kind string

const (
	// KindNetwork means no response was received (connectivity/transport failure).
	KindNetwork Kind = "network"
	// KindAPI means the server responded with a non-success status.
	KindAPI Kind = "api"
	// KindValidation means the server rejected the request with field-level detail.
	KindValidation Kind = "validation"
	// KindUnknown covers everything else, including response decode failures.
	KindUnknown Kind = "unknown"
)

// Error is the canonical failure value. It is constructed only by the
// Classify* functions and never mutated afterwards; WithEndpoint returns
// a copy rather than modifying the receiver.
type Error struct {
	Message    string            `json:"message"`
	StatusCode int               `json:"status_code,omitempty"`
	Kind       Kind              `json:"kind"`
	Endpoint   string            `json:"endpoint,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Fields     map[string]string `json:"fields,omitempty"`

	// Details preserves the original failure (response body, wrapped error)
	// for diagnostics. It is never rendered to end users by default.
	Details any `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Endpoint != "" {
		return fmt.Sprintf("%s [%d] %s: %s", e.Kind, e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("%s [%d]: %s", e.Kind, e.StatusCode, e.Message)
}

// Unwrap exposes the original cause when Details holds one, preserving
// errors.Is/errors.As chains for callers that need them.
func (e *Error) Unwrap() error {
	if cause, ok := e.Details.(error); ok {
		return cause
	}
	return nil
}

// WithEndpoint returns a copy of the error with the endpoint identifier set.
// An endpoint already present is kept; classification output stays immutable.
func (e *Error) WithEndpoint(endpoint string) *Error {
	if e == nil || e.Endpoint != "" || endpoint == "" {
		return e
	}
	clone := *e
	clone.Endpoint = endpoint
	return &clone
}

// IsRetryable reports whether the failure is plausibly transient: transport
// failures, timeouts, rate limiting, and server-side errors. Validation and
// other client mistakes are not retryable.
func (e *Error) IsRetryable() bool {
	if e == nil {
		return false
	}
	if e.Kind == KindNetwork {
		return true
	}
	switch e.StatusCode {
	case 408, 429:
		return true
	}
	return e.StatusCode >= 500 && e.StatusCode <= 599
}

// IsRetryable reports whether err carries a retryable normalized error.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.IsRetryable()
	}
	return false
}
