package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/coupergateway/authproxy/config"
	"github.com/coupergateway/authproxy/config/request"
	"github.com/coupergateway/authproxy/errors"
	"github.com/coupergateway/authproxy/handler/middleware"
)

var (
	xidRE  = regexp.MustCompile(`^[0-9a-v]{20}$`)
	uuidRE = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
)

func TestUIDHandler(t *testing.T) {
	tests := []struct {
		name          string
		settings      func(s *config.Settings)
		header        http.Header
		wantStatus    int
		wantUID       *regexp.Regexp
		wantClient    bool
		wantUpstream  bool
		wantErrHeader string
	}{
		{"xid", func(*config.Settings) {}, nil, http.StatusOK, xidRE, false, false, ""},
		{"uuid4", func(s *config.Settings) { s.RequestIDFormat = "uuid4" }, nil, http.StatusOK, uuidRE, false, false, ""},
		{"headers", func(s *config.Settings) {
			s.RequestIDClientHeader = "X-Request-Id"
			s.RequestIDBackendHeader = "X-Request-Id"
		}, nil, http.StatusOK, xidRE, true, true, ""},
		{"accept from header", func(s *config.Settings) {
			s.RequestIDAcceptFromHeader = "X-Trace"
			s.RequestIDClientHeader = "X-Request-Id"
		}, http.Header{"X-Trace": []string{"abcdefghijkl-1234"}}, http.StatusOK, regexp.MustCompile(`^abcdefghijkl-1234$`), true, false, ""},
		{"accept invalid", func(s *config.Settings) {
			s.RequestIDAcceptFromHeader = "X-Trace"
			s.RequestIDClientHeader = "X-Request-Id"
		}, http.Header{"X-Trace": []string{"short"}}, http.StatusBadRequest, xidRE, true, false, "client request error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(subT *testing.T) {
			settings := config.DefaultSettings
			tt.settings(&settings)

			var gotUID string
			var gotUpstreamHeader string
			var called bool
			inner := http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
				called = true
				gotUID, _ = req.Context().Value(request.UID).(string)
				gotUpstreamHeader = req.Header.Get("X-Request-Id")
			})

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			for k, v := range tt.header {
				req.Header[k] = v
			}
			rec := httptest.NewRecorder()
			middleware.NewUIDHandler(&settings)(inner).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				subT.Errorf("want status: %d, got: %d", tt.wantStatus, rec.Code)
			}
			if got := rec.Header().Get(errors.HeaderErrorCode); got != tt.wantErrHeader {
				subT.Errorf("want error header: %q, got: %q", tt.wantErrHeader, got)
			}

			clientUID := rec.Header().Get("X-Request-Id")
			if tt.wantClient != (clientUID != "") {
				subT.Errorf("unexpected client header: %q", clientUID)
			}
			if clientUID != "" && !tt.wantUID.MatchString(clientUID) {
				subT.Errorf("unexpected client uid: %q", clientUID)
			}

			if tt.wantStatus != http.StatusOK {
				if called {
					subT.Error("expected the request to end in the uid handler")
				}
				return
			}

			if !tt.wantUID.MatchString(gotUID) {
				subT.Errorf("unexpected uid: %q", gotUID)
			}
			if tt.wantUpstream != (gotUpstreamHeader != "") {
				subT.Errorf("unexpected upstream header: %q", gotUpstreamHeader)
			}
			if tt.wantUpstream && gotUpstreamHeader != gotUID {
				subT.Errorf("want upstream header %q, got: %q", gotUID, gotUpstreamHeader)
			}
		})
	}
}
