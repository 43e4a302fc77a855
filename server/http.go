package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/coupergateway/authproxy/config"
	"github.com/coupergateway/authproxy/handler/middleware"
	"github.com/coupergateway/authproxy/logging"
)

type HTTPServer struct {
	ctx      context.Context
	log      *logrus.Entry
	listener net.Listener
	srv      *http.Server
}

// New wraps the given handler with the request id, access log and the
// optional telemetry middlewares.
func New(ctx context.Context, logger *logrus.Entry, settings *config.Settings, logConf *logging.Config, h http.Handler) *HTTPServer {
	accessLog := logging.NewAccessLog(logConf, logger)

	var inner http.Handler = h
	if settings.Metrics {
		inner = middleware.NewMetricsHandler()(inner)
	}
	if settings.Traces {
		inner = middleware.NewTraceHandler()(inner)
	}

	serverHandler := middleware.NewRecordHandler()(
		middleware.NewUIDHandler(settings)(
			accessLog.Handler(inner),
		),
	)

	return &HTTPServer{
		ctx: ctx,
		log: logger,
		srv: &http.Server{
			Addr:              net.JoinHostPort(settings.Address, strconv.Itoa(settings.Port)),
			Handler:           serverHandler,
			IdleTimeout:       DefaultHTTPConfig.IdleTimeout,
			ReadHeaderTimeout: DefaultHTTPConfig.ReadHeaderTimeout,
		},
	}
}

// Addr returns the address of the listener, empty before Listen.
func (s *HTTPServer) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Listen opens the configured address.
func (s *HTTPServer) Listen() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.log.WithField("addr", ln.Addr().String()).Info("authproxy is serving")
	return nil
}

// Serve blocks until the context is done and the server has been shut
// down gracefully.
func (s *HTTPServer) Serve() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(s.listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-s.ctx.Done():
	}

	return s.Shutdown()
}

func (s *HTTPServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultHTTPConfig.ShutdownTimeout)
	defer cancel()
	s.log.WithField("deadline", DefaultHTTPConfig.ShutdownTimeout.String()).Warn("shutting down")
	return s.srv.Shutdown(ctx)
}

func (s *HTTPServer) Handler() http.Handler {
	return s.srv.Handler
}
