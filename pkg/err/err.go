package errprocess

import (
	"errors"
	"fmt"
	"net/http"

	"chat_backend_service/pkg/logger"
)

// Kind classify an error for the HTTP layer
type Kind int

const (
	// KindInternal store or infrastructure failure
	KindInternal Kind = iota
	// KindValidation malformed or missing request fields
	KindValidation
	// KindForbidden authenticated but not allowed to act on the resource
	KindForbidden
	// KindNotFound room, message or user id does not resolve
	KindNotFound
	// KindConflictIgnored duplicate action detected, reported but not an error
	KindConflictIgnored
)

// Error carry a kind together with the message
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap expose the wrapped cause
func (e *Error) Unwrap() error {
	return e.err
}

// New create an error of the given kind
func New(kind Kind, msg string) error {
	return &Error{kind: kind, msg: msg}
}

// Wrap attach a kind and message to an underlying error
func Wrap(kind Kind, msg string, err error) error {
	return &Error{kind: kind, msg: msg, err: err}
}

// Set log the message and return it as an internal error
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// KindOf report the kind of err, KindInternal when untagged
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// HTTPStatus map an error to the response status code
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflictIgnored:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
