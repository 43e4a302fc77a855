package telemetry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/coupergateway/authproxy/logging"
)

// MetricsServer serves the prometheus registry on its own port.
type MetricsServer struct {
	log    *logrus.Entry
	server *http.Server
}

func NewMetricsServer(log *logrus.Entry, gatherer prom.Gatherer, port int) *MetricsServer {
	accessLog := logging.NewAccessLog(logging.DefaultConfig, log)
	metricsHandler := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           accessLog.Handler(metricsHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &MetricsServer{
		log:    log,
		server: server,
	}
}

// Handler returns the logged metrics handler.
func (m *MetricsServer) Handler() http.Handler {
	return m.server.Handler
}

// ListenAndServe blocks until the server gets shut down.
func (m *MetricsServer) ListenAndServe() error {
	ln, err := net.Listen("tcp", m.server.Addr)
	if err != nil {
		return err
	}
	return m.Serve(ln)
}

func (m *MetricsServer) Serve(ln net.Listener) error {
	m.log.Infof("authproxy is serving metrics: %s", ln.Addr().String())

	err := m.server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	if m == nil || m.server == nil {
		return nil
	}
	m.log.Infof("shutdown metrics server: %s", m.server.Addr)
	return m.server.Shutdown(ctx)
}
