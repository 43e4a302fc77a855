package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/rs/xid"

	"github.com/coupergateway/authproxy/config"
	"github.com/coupergateway/authproxy/config/request"
	"github.com/coupergateway/authproxy/errors"
)

var regexUID = regexp.MustCompile(`^[a-zA-Z0-9@=/+-]{12,64}$`)

type UID struct {
	conf     *config.Settings
	generate UIDFunc
	handler  http.Handler
}

func NewUIDHandler(conf *config.Settings) Next {
	return func(handler http.Handler) *NextHandler {
		return NewHandler(&UID{
			conf:     conf,
			generate: NewUIDFunc(conf.RequestIDFormat),
			handler:  handler,
		}, handler)
	}
}

// ServeHTTP adds a unique request-id to the request context and, if
// configured, to the client response and the upstream request.
func (u *UID) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	uid, err := u.newUID(req.Header)

	*req = *req.WithContext(context.WithValue(req.Context(), request.UID, uid))

	if u.conf.RequestIDClientHeader != "" {
		rw.Header().Set(u.conf.RequestIDClientHeader, uid)
	}

	if err != nil {
		errors.SetHeader(rw, err)
		rw.WriteHeader(errors.StatusCode(err))
		return
	}

	if u.conf.RequestIDBackendHeader != "" {
		req.Header.Set(u.conf.RequestIDBackendHeader, uid)
	}

	u.handler.ServeHTTP(rw, req)
}

func (u *UID) newUID(header http.Header) (string, error) {
	if u.conf.RequestIDAcceptFromHeader != "" {
		if v := header.Get(u.conf.RequestIDAcceptFromHeader); v != "" {
			if !regexUID.MatchString(v) {
				return u.generate(), errors.ClientRequest.
					Messagef("invalid request-id header value: %s: %s", u.conf.RequestIDAcceptFromHeader, v)
			}
			return v, nil
		}
	}
	return u.generate(), nil
}

// UIDFunc wraps different unique id implementations.
type UIDFunc func() string

func NewUIDFunc(requestIDFormat string) UIDFunc {
	if requestIDFormat == "uuid4" {
		uuid.EnableRandPool()
		return uuid.NewString
	}
	return func() string {
		return xid.New().String()
	}
}
