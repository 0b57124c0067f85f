// Package gateway talks to the storefront backend and turns its response
// envelopes into typed results.
package gateway

import (
	"errors"
	"fmt"
)

// Messages shown when the backend gives no usable text of its own.
const (
	GenericAppMessage       = "Something went wrong"
	GenericTransportMessage = "Unknown error occurred"
)

// Kind tells the three outcomes of a backend call apart.
type Kind int

const (
	KindOK Kind = iota
	KindAppError
	KindTransportError
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindAppError:
		return "app_error"
	case KindTransportError:
		return "transport_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// AppError is a refusal the backend expressed in its envelope
// ({"error":true} or {"success":false}).
type AppError struct {
	Endpoint   string
	Status     int
	Message    string
	SubMessage string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: backend refused (status %d): %s", e.Endpoint, e.Status, e.Message)
}

// TransportError is any failure to obtain an envelope at all: network
// errors, timeouts, an open breaker, or a non-2xx answer without one.
type TransportError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: transport failure (status %d): %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: transport failure: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Result is Ok(value), AppError or TransportError.
type Result[T any] struct {
	kind  Kind
	value T
	err   error
}

func OK[T any](v T) Result[T] {
	return Result[T]{kind: KindOK, value: v}
}

// Fail builds a failed result from err. Errors that are neither *AppError
// nor *TransportError are treated as transport failures.
func Fail[T any](err error) Result[T] {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return Result[T]{kind: KindAppError, err: err}
	}
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		err = &TransportError{Err: err}
	}
	return Result[T]{kind: KindTransportError, err: err}
}

func (r Result[T]) Kind() Kind { return r.kind }
func (r Result[T]) OK() bool   { return r.kind == KindOK }

// Value is the payload; the zero value unless the result is OK.
func (r Result[T]) Value() T { return r.value }

func (r Result[T]) Err() error { return r.err }

// Message is the text to show a user for a failed result: the backend's own
// message for an AppError, a generic string otherwise.
func (r Result[T]) Message() string {
	switch r.kind {
	case KindOK:
		return ""
	case KindAppError:
		var appErr *AppError
		if errors.As(r.err, &appErr) && appErr.Message != "" {
			return appErr.Message
		}
		return GenericAppMessage
	default:
		return GenericTransportMessage
	}
}

func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.err
}

// Map converts an OK payload and passes failures through.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.kind != KindOK {
		return Result[U]{kind: r.kind, err: r.err}
	}
	return OK(f(r.value))
}
