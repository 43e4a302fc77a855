package telemetry_test

import (
	"context"
	goerrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/coupergateway/authproxy/errors"
	"github.com/coupergateway/authproxy/internal/test"
	"github.com/coupergateway/authproxy/telemetry"
	"github.com/coupergateway/authproxy/telemetry/instrumentation"
	"github.com/coupergateway/authproxy/telemetry/provider"
)

func TestInitExporter_Disabled(t *testing.T) {
	logger, _ := test.NewLogger()

	tel, err := telemetry.InitExporter(context.Background(), &telemetry.Options{MetricsExporter: "prometheus"}, logger.WithContext(context.Background()))
	test.New(t).Must(err)

	if tel.Gatherer() != nil {
		t.Error("expected no gatherer with metrics disabled")
	}
	test.New(t).Must(tel.Shutdown(context.Background()))
}

func TestInitExporter_UnknownExporter(t *testing.T) {
	logger, _ := test.NewLogger()

	_, err := telemetry.InitExporter(context.Background(), &telemetry.Options{
		Metrics:         true,
		MetricsExporter: "jaeger",
		ServiceName:     "authproxy",
	}, logger.WithContext(context.Background()))
	if !goerrors.Is(err, errors.Configuration) {
		t.Errorf("expected a configuration error, got: %v", err)
	}
}

func TestInitExporter_Prometheus(t *testing.T) {
	logger, _ := test.NewLogger()
	log := logger.WithContext(context.Background())

	prevMP := otel.GetMeterProvider()
	tel, err := telemetry.InitExporter(context.Background(), &telemetry.Options{
		Metrics:         true,
		MetricsExporter: "prometheus",
		ServiceName:     "authproxy-test",
	}, log)
	test.New(t).Must(err)
	t.Cleanup(func() {
		_ = tel.Shutdown(context.Background())
		otel.SetMeterProvider(prevMP)
		provider.SetMeterProvider(prevMP)
	})

	counter, err := provider.Meter(instrumentation.ServerInstrumentationName).
		Int64Counter(instrumentation.ClientRequest)
	test.New(t).Must(err)
	counter.Add(context.Background(), 1, metric.WithAttributes())

	families, err := tel.Gatherer().Gather()
	test.New(t).Must(err)

	var clientRequests, goRoutines bool
	for _, f := range families {
		switch {
		case strings.HasPrefix(f.GetName(), instrumentation.ClientRequest):
			clientRequests = true
			if f.GetType() != dto.MetricType_COUNTER {
				t.Errorf("expected a counter, got: %s", f.GetType())
			}
		case f.GetName() == "go_goroutines":
			goRoutines = true
			for _, label := range f.GetMetric()[0].GetLabel() {
				if label.GetName() == "service_name" && label.GetValue() != "authproxy-test" {
					t.Errorf("unexpected service_name: %q", label.GetValue())
				}
			}
		}
	}
	if !clientRequests {
		t.Errorf("expected a %s metric family", instrumentation.ClientRequest)
	}
	if !goRoutines {
		t.Error("expected the go collector metrics")
	}

	metricsServer := telemetry.NewMetricsServer(log, tel.Gatherer(), 0)
	srv := httptest.NewServer(metricsServer.Handler())
	defer srv.Close()

	res, err := http.Get(srv.URL + "/metrics")
	test.New(t).Must(err)
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Errorf("want status 200, got: %d", res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	test.New(t).Must(err)
	if !strings.Contains(string(body), instrumentation.ClientRequest) {
		t.Errorf("expected %s in the exposition", instrumentation.ClientRequest)
	}
}
