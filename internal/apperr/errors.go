// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for HTTP mapping and logging.
type Kind int

const (
	// KindValidation means the input was missing, malformed, or over a limit.
	KindValidation Kind = iota
	// KindAuth means no authenticated caller was present.
	KindAuth
	// KindAuthorization means the caller is authenticated but not the resource owner.
	KindAuthorization
	// KindNotFound means the referenced row does not exist (or is filtered out).
	KindNotFound
	// KindUpstream means a Spotify or database call failed.
	KindUpstream
	// KindConfiguration means required environment configuration is absent.
	KindConfiguration
)

// Error is a classified application error with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	// Status carries an upstream HTTP status to pass through, if any.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a KindValidation error with the given message.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Auth returns a KindAuth error.
func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// Authorization returns a KindAuthorization error.
func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// NotFound returns a KindNotFound error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Upstream wraps a failed outbound call. status may be 0 when unknown.
func Upstream(message string, status int, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Status: status, Err: err}
}

// Configuration wraps a missing-configuration failure.
func Configuration(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// KindOf extracts the Kind of err, or KindUpstream for unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUpstream
}

// MessageOf returns the user-facing message of err, or a generic fallback
// for unclassified errors so internal detail never leaks to clients.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
