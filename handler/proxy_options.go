package handler

import (
	"net/http"

	"github.com/coupergateway/authproxy/config"
	"github.com/coupergateway/authproxy/errors"
)

// Authorizer prepares outgoing requests, see authorizer.Mechanism.
type Authorizer interface {
	Authorize(req *http.Request) error
	Kind() config.Mechanism
}

type ProxyOptions struct {
	Authorizer       Authorizer
	Client           *http.Client
	Endpoint         string
	RequestBodyLimit int64
	RoutePrefix      string
}

func NewProxyOptions(settings *config.Settings, authorizer Authorizer, client *http.Client) (*ProxyOptions, error) {
	limit, err := settings.BodyLimit()
	if err != nil {
		return nil, err
	}

	if authorizer == nil || client == nil {
		return nil, errors.Configuration.Label("proxy").Message("missing authorizer or client")
	}

	return &ProxyOptions{
		Authorizer:       authorizer,
		Client:           client,
		Endpoint:         settings.Endpoint,
		RequestBodyLimit: limit,
		RoutePrefix:      settings.RoutePrefix,
	}, nil
}
