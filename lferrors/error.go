// Package lferrors provides the structured error taxonomy shared by the archive
// decoder, JSON codec, request/response translator and ledger client. Errors
// preserve a message and causal chain while still implementing the standard
// error interface, so errors.Is/As and %w wrapping both work across the chain.
package lferrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error into one of the five taxonomy buckets. Each Kind
// maps to a single HTTP status via Error.HTTPStatus.
type Kind string

const (
	// KindDecode covers DAR/dalf container and protobuf payload failures.
	KindDecode Kind = "decode"
	// KindCodec covers JSON value encode/decode failures against a type.
	KindCodec Kind = "codec"
	// KindTranslation covers request/response translation failures.
	KindTranslation Kind = "translation"
	// KindRPC covers ledger gRPC call failures.
	KindRPC Kind = "rpc"
	// KindConcurrency covers archive-refresh and upload-in-progress conflicts.
	KindConcurrency Kind = "concurrency"
)

// Error is a structured failure that carries a Kind, a human-readable Message
// and an optional Cause chain. Cause links to the underlying Error, enabling
// error chains with errors.Is/As, mirroring how a tool invocation failure
// retains diagnostics across retries.
type Error struct {
	Kind    Kind
	Message string
	Cause   *Error
}

// New constructs an Error of the given Kind with the provided message.
func New(kind Kind, message string) *Error {
	if message == "" {
		message = string(kind) + " error"
	}
	return &Error{Kind: kind, Message: message}
}

// NewWithCause constructs an Error that wraps an underlying error. The cause
// is converted into an Error chain so metadata survives across boundaries
// while still supporting errors.Is/As through Unwrap.
func NewWithCause(kind Kind, message string, cause error) *Error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &Error{
		Kind:    kind,
		Message: message,
		Cause:   FromError(kind, cause),
	}
}

// FromError converts an arbitrary error into an Error chain tagged with kind.
// If err is already an *Error its Kind is preserved rather than overwritten.
func FromError(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{
		Kind:    kind,
		Message: err.Error(),
		Cause:   FromError(kind, errors.Unwrap(err)),
	}
}

// Errorf formats according to a format specifier and returns it as an Error.
func Errorf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying Error to support errors.Is/As.
func (e *Error) Unwrap() error {
	if e == nil || e.Cause == nil {
		return nil
	}
	return e.Cause
}

// HTTPStatus maps the Error's Kind to the HTTP status code the external
// interface layer should respond with.
func (e *Error) HTTPStatus() int {
	if e == nil {
		return http.StatusOK
	}
	switch e.Kind {
	case KindDecode:
		return http.StatusUnprocessableEntity
	case KindCodec:
		return http.StatusBadRequest
	case KindTranslation:
		return http.StatusBadRequest
	case KindRPC:
		return http.StatusBadGateway
	case KindConcurrency:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Envelope is the external JSON error shape returned to API callers.
type Envelope struct {
	Status   int                 `json:"status"`
	Errors   []string            `json:"errors"`
	Warnings map[string][]string `json:"warnings,omitempty"`
}

// ToEnvelope flattens an Error's cause chain into the external envelope
// shape, one string per level starting from the outermost message.
func ToEnvelope(err error) Envelope {
	var e *Error
	if !errors.As(err, &e) || e == nil {
		return Envelope{Status: http.StatusInternalServerError, Errors: []string{"unexpected: " + err.Error()}}
	}
	var messages []string
	for cur := e; cur != nil; cur = cur.Cause {
		messages = append(messages, cur.Message)
	}
	return Envelope{Status: e.HTTPStatus(), Errors: messages}
}
