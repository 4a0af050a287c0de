package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies service failures so the HTTP layer can map each to a
// fixed status code and a stable machine-readable kind.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation_error"
	KindNotFound     ErrorKind = "not_found"
	KindInvalidState ErrorKind = "invalid_state"
	KindCapExceeded  ErrorKind = "cap_exceeded"
	KindAuth         ErrorKind = "auth_error"
	KindPrecondition ErrorKind = "precondition_failed"
)

// Error is a typed service failure with a user-facing message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// KindOf extracts the error kind; ok is false for untyped (internal) errors.
func KindOf(err error) (ErrorKind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

func validationError(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalidStateError(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func capExceededError(format string, args ...interface{}) error {
	return &Error{Kind: KindCapExceeded, Message: fmt.Sprintf(format, args...)}
}

func authError(format string, args ...interface{}) error {
	return &Error{Kind: KindAuth, Message: fmt.Sprintf(format, args...)}
}

func preconditionError(format string, args ...interface{}) error {
	return &Error{Kind: KindPrecondition, Message: fmt.Sprintf(format, args...)}
}
