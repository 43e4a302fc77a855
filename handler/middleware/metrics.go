package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/coupergateway/authproxy/logging"
	"github.com/coupergateway/authproxy/telemetry/instrumentation"
	"github.com/coupergateway/authproxy/telemetry/provider"
)

type MetricsHandler struct {
	handler http.Handler
}

func NewMetricsHandler() Next {
	return func(handler http.Handler) *NextHandler {
		return NewHandler(&MetricsHandler{
			handler: handler,
		}, handler)
	}
}

func (mh *MetricsHandler) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	start := time.Now()
	mh.handler.ServeHTTP(rw, req)
	end := time.Since(start)

	metricsAttrs := []attribute.KeyValue{
		attribute.String("host", req.Host),
		attribute.String("method", req.Method),
	}

	if rsw, ok := rw.(logging.RecorderInfo); ok {
		metricsAttrs = append(metricsAttrs, attribute.Int("code", rsw.StatusCode()))
	}

	meter := provider.Meter(instrumentation.ServerInstrumentationName)

	counter, _ := meter.Int64Counter(instrumentation.ClientRequest,
		metric.WithDescription("Number of inbound requests"))
	duration, _ := meter.Float64Histogram(instrumentation.ClientRequestDuration,
		metric.WithDescription("Duration of inbound requests"), metric.WithUnit("s"))

	option := metric.WithAttributes(metricsAttrs...)
	counter.Add(req.Context(), 1, option)
	duration.Record(req.Context(), end.Seconds(), option)
}
