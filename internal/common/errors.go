// Package common defines the error kinds shared by the store, service and
// HTTP layers. Callers should match them with errors.Is; the HTTP layer reads
// the status code carried by the error.
package common

import (
	"errors"
	"net/http"
)

// Kind identifies a class of business-rule failure.
type Kind string

const (
	KindDuplicateEmail     Kind = "duplicate_email"
	KindNotFound           Kind = "not_found"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindInvalidToken       Kind = "invalid_token"
	KindForbidden          Kind = "forbidden"
	KindWeakPassword       Kind = "weak_password"
	KindUploadFailure      Kind = "upload_failure"
	KindValidation         Kind = "validation"
)

// Error is a client-facing failure with the HTTP status it maps to.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target has the same kind, so copies made with
// WithMessage still match the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithMessage returns a copy of e carrying a different message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Kind: e.Kind, Status: e.Status, Message: msg}
}

var (
	ErrDuplicateEmail     = &Error{Kind: KindDuplicateEmail, Status: http.StatusBadRequest, Message: "User already registered"}
	ErrNotFound           = &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: "not found"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Status: http.StatusUnauthorized, Message: "Invalid email or password"}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken, Status: http.StatusUnauthorized, Message: "Not authorized, token failed"}
	ErrForbidden          = &Error{Kind: KindForbidden, Status: http.StatusForbidden, Message: "Forbidden resource"}
	ErrWeakPassword       = &Error{Kind: KindWeakPassword, Status: http.StatusBadRequest, Message: "Password length must be at least 6 characters"}
	ErrUploadFailure      = &Error{Kind: KindUploadFailure, Status: http.StatusBadRequest, Message: "upload failed"}
	ErrValidation         = &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: "validation error"}
)

// StatusCode returns the HTTP status attached to err, or 500 for anything
// that is not a *Error.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the message safe to show to a client. Infrastructure
// errors are reduced to a generic text.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Something went wrong!"
}
