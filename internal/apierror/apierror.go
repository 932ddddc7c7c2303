// Package apierror defines the typed failures returned by handlers and
// services. Every failure carries the HTTP status it maps to and a stack
// captured where it was raised.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

type Error struct {
	StatusCode int
	Message    string
	Errors     []string

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil && e.cause.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return pkgerrors.Cause(e.cause)
}

// Stack renders the stack trace recorded when the error was created.
func (e *Error) Stack() string {
	if e.cause == nil {
		return ""
	}
	return fmt.Sprintf("%+v", e.cause)
}

// New creates an Error with the given status and message.
func New(status int, message string, details ...string) *Error {
	return &Error{
		StatusCode: status,
		Message:    message,
		Errors:     details,
		cause:      pkgerrors.New(message),
	}
}

// Wrap creates an Error that keeps cause for errors.Is and logging.
func Wrap(status int, message string, cause error) *Error {
	if cause == nil {
		return New(status, message)
	}
	return &Error{
		StatusCode: status,
		Message:    message,
		cause:      pkgerrors.WithStack(cause),
	}
}

func Validation(message string, details ...string) *Error {
	return New(http.StatusBadRequest, message, details...)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

func TooManyRequests(message string) *Error {
	return New(http.StatusTooManyRequests, message)
}

// Upstream reports that the media store or database failed to produce an
// expected result. cause may be nil.
func Upstream(message string, cause error) *Error {
	return Wrap(http.StatusInternalServerError, message, cause)
}

// From normalizes any error into an *Error. Unrecognized errors become a
// 500 carrying their own message.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Wrap(http.StatusInternalServerError, err.Error(), err)
}
