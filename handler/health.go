package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/coupergateway/authproxy/config/request"
)

const DefaultHealthPath = "/health"

var _ http.Handler = &Health{}

// Health answers with an empty 200 response. It never touches the
// authorization mechanism or the upstream.
type Health struct {
	log logrus.FieldLogger
}

func NewHealthCheck(log logrus.FieldLogger) *Health {
	return &Health{log: log}
}

func (h *Health) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	h.log.WithField("uid", req.Context().Value(request.UID)).Debug("health check")
	rw.WriteHeader(http.StatusOK)
}
