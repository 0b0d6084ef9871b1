// Package errors carries a machine code alongside every error the API can return.
// Import it as perr
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode is the stable wire code of an error
type ErrorCode uint16

const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodePanic
	// ErrorCodeUnavailable marks transient backend failures a later retry may fix
	ErrorCodeUnavailable
	ErrorCodeInvalidArgument
	ErrorCodeValidation
	ErrorCodeJSON
	ErrorCodeNotFound
	// ErrorCodeIndexMissing is a remote query no composite index can serve
	ErrorCodeIndexMissing
	ErrorCodeDB
)

var codes = map[ErrorCode]struct {
	label  string
	status int
}{
	ErrorCodePanic:           {"panic", http.StatusInternalServerError},
	ErrorCodeUnavailable:     {"unavailable", http.StatusServiceUnavailable},
	ErrorCodeInvalidArgument: {"invalid_argument", http.StatusUnprocessableEntity},
	ErrorCodeValidation:      {"validation", http.StatusBadRequest},
	ErrorCodeJSON:            {"json", http.StatusBadRequest},
	ErrorCodeNotFound:        {"not_found", http.StatusNotFound},
	ErrorCodeIndexMissing:    {"index_missing", http.StatusPreconditionFailed},
	ErrorCodeDB:              {"db", http.StatusInternalServerError},
}

// String is the label used in logs and metrics
func (c ErrorCode) String() string {
	if m, ok := codes[c]; ok {
		return m.label
	}
	return "unknown"
}

// HTTPStatusCode maps c to a response status, 500 when unmapped
func HTTPStatusCode(c ErrorCode) int {
	if m, ok := codes[c]; ok {
		return m.status
	}
	return http.StatusInternalServerError
}

// Error is a coded error with an optional offending field and wrapped cause
type Error struct {
	code  ErrorCode
	msg   string
	field string
	orig  error
}

// Wire is the error object clients receive
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.orig }

// Code returns the wire code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending input field, if any
func (e *Error) Field() string { return e.field }

// As finds the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrs.As(err, &e)
	return e, ok
}

// CodeOf is the code of the first *Error in err's chain, Unknown otherwise
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err carries code
func IsCode(err error, code ErrorCode) bool { return err != nil && CodeOf(err) == code }

// HTTPStatus is the response status for err
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// WireFrom renders err for clients; the wrapped cause is never exposed for coded errors
func WireFrom(err error) Wire {
	switch e, ok := As(err); {
	case err == nil:
		return Wire{}
	case ok:
		return Wire{Code: e.code, Message: e.msg, Field: e.field}
	default:
		return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
	}
}

// WithField returns a copy of err tagged with field; other errors pass through
func WithField(err error, field string) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	c.field = field
	return &c
}

// Newf builds a coded error
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap attaches code and msg to orig
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

func NotFoundf(format string, a ...any) error     { return Newf(ErrorCodeNotFound, format, a...) }
func InvalidArgf(format string, a ...any) error   { return Newf(ErrorCodeInvalidArgument, format, a...) }
func JSONErrf(format string, a ...any) error      { return Newf(ErrorCodeJSON, format, a...) }
func PanicErrf(format string, a ...any) error     { return Newf(ErrorCodePanic, format, a...) }
func Unavailablef(format string, a ...any) error  { return Newf(ErrorCodeUnavailable, format, a...) }
func IndexMissingf(format string, a ...any) error { return Newf(ErrorCodeIndexMissing, format, a...) }
