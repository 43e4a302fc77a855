package handler

import (
	"net/http"

	"github.com/coupergateway/authproxy/errors"
)

var _ http.Handler = &Error{}

// Error terminates a request with the status of the given error. The body
// stays empty, the client safe synopsis goes into the Proxy-Error header.
type Error struct {
	err error
}

func NewErrorHandler(err error) *Error {
	return &Error{err: err}
}

func (e *Error) ServeHTTP(rw http.ResponseWriter, _ *http.Request) {
	WriteError(rw, e.err)
}

func WriteError(rw http.ResponseWriter, err error) {
	errors.SetHeader(rw, err)
	rw.WriteHeader(errors.StatusCode(err))
}
