package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/coupergateway/authproxy/config/request"
	"github.com/coupergateway/authproxy/logging"
)

// NewRecordHandler stores the start time in the request context and wraps
// the response writer, so all inner handlers share one status recorder.
func NewRecordHandler() Next {
	return func(handler http.Handler) *NextHandler {
		return NewHandler(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), request.StartTime, time.Now())
			*req = *req.WithContext(ctx)

			if _, ok := rw.(logging.RecorderInfo); !ok {
				rw = logging.NewStatusRecorder(rw)
			}
			handler.ServeHTTP(rw, req)
		}), handler)
	}
}
