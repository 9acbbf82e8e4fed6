// Package apperr defines the tagged error variants shared by every
// request-handling layer. Each error carries a stable kind which maps
// to exactly one HTTP status, so handlers translate failures at the
// boundary without inspecting messages.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies an error category. The string values are part of the
// wire contract for the error envelope.
type Kind string

const (
	KindNoToken            Kind = "NO_TOKEN"
	KindInvalidToken       Kind = "INVALID_TOKEN"
	KindForbidden          Kind = "INSUFFICIENT_PERMISSIONS"
	KindValidation         Kind = "VALIDATION_FAILED"
	KindNotFound           Kind = "NOT_FOUND"
	KindConflict           Kind = "CONFLICT"
	KindGardenExists       Kind = "GARDEN_EXISTS_AT_ADDRESS"
	KindNoGardenAssignment Kind = "NO_GARDEN_ASSIGNMENT"
	KindInternal           Kind = "INTERNAL"
)

// Violation describes a single failed field check.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the single error type surfaced by the core packages.
type Error struct {
	Kind       Kind
	Message    string
	Violations []Violation
	// Data carries structured payloads for kinds that need them,
	// e.g. the existing-garden summary on KindGardenExists.
	Data any

	cause error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches two errors of the same kind, so callers can test with
// errors.Is(err, apperr.New(apperr.KindConflict, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause without exposing it in the message.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Validation constructs a VALIDATION_FAILED error carrying the full
// list of field violations.
func Validation(violations []Violation) *Error {
	return &Error{
		Kind:       KindValidation,
		Message:    "Validation failed",
		Violations: violations,
	}
}

// WithData returns a copy of the error carrying a structured payload.
func (e *Error) WithData(data any) *Error {
	clone := *e
	clone.Data = data
	return &clone
}

// KindOf extracts the kind from an error chain; unknown errors are
// classified as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status maps an error kind to its HTTP status code. NO_GARDEN_ASSIGNMENT
// is a client error here: the gardener simply has no garden to default to.
func Status(kind Kind) int {
	switch kind {
	case KindNoToken, KindInvalidToken:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation, KindNoGardenAssignment:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindGardenExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
