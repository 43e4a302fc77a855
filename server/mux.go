package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/coupergateway/authproxy/errors"
	"github.com/coupergateway/authproxy/handler"
)

// MuxOptions holds the handlers of all routes.
type MuxOptions struct {
	HealthPath string
	Health     http.Handler
	Proxy      http.Handler
}

// NewMux routes the health path to the health handler. Everything else
// reaches the proxy, which answers unknown paths with 404 itself.
func NewMux(opts *MuxOptions) http.Handler {
	router := mux.NewRouter()
	router.SkipClean(true)
	router.UseEncodedPath()

	healthPath := opts.HealthPath
	if healthPath == "" {
		healthPath = handler.DefaultHealthPath
	}

	router.Path(healthPath).
		Methods(http.MethodGet, http.MethodHead).
		Handler(opts.Health)
	router.PathPrefix("/").
		Handler(opts.Proxy)
	// Request targets without a leading slash, e.g. "OPTIONS *".
	router.NotFoundHandler = handler.NewErrorHandler(errors.RouteNotFound)

	return router
}
