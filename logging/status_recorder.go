package logging

import (
	"net/http"
)

var _ http.ResponseWriter = &StatusRecorder{}
var _ RecorderInfo = &StatusRecorder{}

// StatusRecorder passes all calls to the wrapped writer and remembers
// the status code and the amount of written body bytes.
type StatusRecorder struct {
	rw            http.ResponseWriter
	statusCode    int
	statusWritten bool
	bytes         int
}

func NewStatusRecorder(rw http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{rw: rw}
}

func (s *StatusRecorder) StatusCode() int {
	return s.statusCode
}

func (s *StatusRecorder) WrittenBytes() int {
	return s.bytes
}

func (s *StatusRecorder) Header() http.Header {
	return s.rw.Header()
}

func (s *StatusRecorder) Write(p []byte) (int, error) {
	if !s.statusWritten {
		s.WriteHeader(http.StatusOK)
	}
	i, err := s.rw.Write(p)
	s.bytes += i
	return i, err
}

func (s *StatusRecorder) WriteHeader(statusCode int) {
	if s.statusWritten {
		return
	}
	s.statusCode = statusCode
	s.statusWritten = true
	s.rw.WriteHeader(statusCode)
}

// Flush implements http.Flusher if the wrapped writer does.
func (s *StatusRecorder) Flush() {
	if f, ok := s.rw.(http.Flusher); ok {
		f.Flush()
	}
}
