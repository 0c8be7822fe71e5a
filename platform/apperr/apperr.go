// Package apperr holds the typed errors services return. The HTTP layer
// turns the Kind into a status code and the Message into the response body.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound: a referenced lead, service, location or booking does not exist.
	KindNotFound
	// KindValidation: notice, window or required-field violations.
	KindValidation
	// KindConflict: the slot or record clashes with existing state.
	KindConflict
	KindBadRequest
)

var kindInfo = map[Kind]struct {
	code   string
	status int
}{
	KindNotFound:   {"not_found", http.StatusNotFound},
	KindValidation: {"validation_failed", http.StatusUnprocessableEntity},
	KindConflict:   {"conflict", http.StatusConflict},
	KindBadRequest: {"bad_request", http.StatusBadRequest},
}

// Code is the stable identifier clients can switch on.
func (k Kind) Code() string {
	if info, ok := kindInfo[k]; ok {
		return info.code
	}
	return "internal"
}

// Error carries a Kind through the service layers.
type Error struct {
	Kind    Kind
	Message string
	Details any
	// Retryable marks failures that depend on wall-clock time or on another
	// booking in flight; the client may pick another slot and resubmit.
	Retryable bool
}

func (e *Error) Error() string { return e.Message }

// HTTPStatus maps the kind to a response status.
func (e *Error) HTTPStatus() int {
	if info, ok := kindInfo[e.Kind]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// WithDetails attaches response details.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func (e *Error) AsRetryable() *Error {
	e.Retryable = true
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NotFound(message string) *Error   { return New(KindNotFound, message) }
func Validation(message string) *Error { return New(KindValidation, message) }
func Conflict(message string) *Error   { return New(KindConflict, message) }
func BadRequest(message string) *Error { return New(KindBadRequest, message) }

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsRetryable reports whether err carries a retryable *Error.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}
