package errors

import (
	"fmt"
	"strings"
)

const HeaderErrorCode = "Proxy-Error"

// Error carries a client safe synopsis, the http status which should be
// written for it and the details which are meant for the log only.
type Error struct {
	httpStatus int
	inner      error // details
	kinds      []string
	label      string
	message    string // log message
	synopsis   string // client message
}

type GoError interface {
	error
	HTTPStatus() int
	LogError() string
	Unwrap() error
}

var _ GoError = &Error{}

func New() *Error {
	return Server
}

// Status creates a new error with the given http status code.
func (e *Error) Status(s int) *Error {
	err := *e
	err.httpStatus = s
	return &err
}

// Kind prepends the given kind, the most specific one comes first.
func (e *Error) Kind(name string) *Error {
	err := *e
	err.kinds = append([]string{name}, e.kinds...)
	return &err
}

func (e *Error) Label(name string) *Error {
	err := *e
	err.label = name
	return &err
}

func (e *Error) Message(msg string) *Error {
	err := *e
	err.message = msg
	return &err
}

func (e *Error) Messagef(msg string, args ...interface{}) *Error {
	return e.Message(fmt.Sprintf(msg, args...))
}

func (e *Error) With(inner error) *Error {
	if inner == nil {
		return e
	}
	err := *e
	err.inner = inner
	return &err
}

// Error returns the client safe message.
func (e *Error) Error() string {
	return e.synopsis
}

// Unwrap returns the inner error.
func (e *Error) Unwrap() error {
	return e.inner
}

// Is reports whether the target shares the most specific kind of e.
// errors.Is(err, errors.TokenRequest) works for every derived error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || len(t.kinds) == 0 || len(e.kinds) == 0 {
		return false
	}
	for _, k := range e.kinds {
		if k == t.kinds[0] {
			return true
		}
	}
	return false
}

// LogError contains the label, the synopsis, the message and all inner errors.
func (e *Error) LogError() string {
	msg := []string{e.synopsis}
	if e.label != "" {
		msg = append([]string{e.label}, msg...)
	}

	if e.message != "" {
		msg = append(msg, e.message)
	}

	if e.inner != nil {
		if inner, ok := e.inner.(GoError); ok {
			msg = append(msg, inner.LogError())
		} else {
			msg = append(msg, e.inner.Error())
		}
	}

	return strings.Join(msg, ": ")
}

func (e *Error) HTTPStatus() int {
	return e.httpStatus
}

// Kinds returns all kinds, the most specific one first.
func (e *Error) Kinds() []string {
	return e.kinds[:]
}
