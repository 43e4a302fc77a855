package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/coupergateway/authproxy/config/request"
	"github.com/coupergateway/authproxy/handler/middleware"
	"github.com/coupergateway/authproxy/telemetry/instrumentation"
	"github.com/coupergateway/authproxy/telemetry/provider"
)

func TestMetricsHandler(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	provider.SetMeterProvider(mp)
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
		provider.SetMeterProvider(otel.GetMeterProvider())
	})

	inner := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusNotFound)
	})
	handler := middleware.NewRecordHandler()(middleware.NewMetricsHandler()(inner))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://proxy/other", nil))

	rm := metricdata.ResourceMetrics{}
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != instrumentation.ClientRequest {
				continue
			}
			found = true
			sum := m.Data.(metricdata.Sum[int64])
			if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
				t.Fatalf("unexpected data points: %v", sum.DataPoints)
			}
			if v, _ := sum.DataPoints[0].Attributes.Value(attribute.Key("code")); v.AsInt64() != http.StatusNotFound {
				t.Errorf("want code 404, got: %v", v)
			}
		}
	}
	if !found {
		t.Errorf("expected metric %q", instrumentation.ClientRequest)
	}
}

func TestRecordHandler(t *testing.T) {
	before := time.Now()

	var startTime time.Time
	var recorded bool
	inner := http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		startTime, _ = req.Context().Value(request.StartTime).(time.Time)
		_, recorded = rw.(interface{ StatusCode() int })
	})

	middleware.NewRecordHandler()(inner).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if startTime.Before(before) {
		t.Errorf("expected a start time, got: %v", startTime)
	}
	if !recorded {
		t.Error("expected a status recorder")
	}
}
