// Package apierror defines the failure kinds the service surfaces to its
// transport layer. Every kind carries an HTTP-style status hint so callers
// can translate without inspecting messages.
package apierror

import (
	"errors"
	"net/http"
)

// Kind identifies a failure category for programmatic checks.
type Kind string

const (
	KindInvalidReference  Kind = "invalid_reference"
	KindReferenceNotFound Kind = "reference_not_found"
	KindDuplicateEmail    Kind = "duplicate_email"
	KindNotFound          Kind = "not_found"
	KindBadRequest        Kind = "bad_request"
)

// Error is a failure with an HTTP status hint.
type Error struct {
	Status  int
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// InvalidReference reports a malformed identifier for the named field.
func InvalidReference(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Kind: KindInvalidReference, Message: message}
}

// ReferenceNotFound reports a reference to a record that does not exist.
func ReferenceNotFound(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Kind: KindReferenceNotFound, Message: message}
}

// DuplicateEmail reports a user create/update colliding with an existing email.
func DuplicateEmail() *Error {
	return &Error{Status: http.StatusBadRequest, Kind: KindDuplicateEmail, Message: "a user with that email already exists"}
}

// NotFound reports a missing top-level resource.
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Kind: KindNotFound, Message: message}
}

// BadRequest reports invalid non-relational input such as a missing name.
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Kind: KindBadRequest, Message: message}
}

// StatusOf returns the status hint of err, or 500 for unexpected failures.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}
