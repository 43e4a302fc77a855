package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/coupergateway/authproxy/config/request"
	"github.com/coupergateway/authproxy/handler/middleware"
	"github.com/coupergateway/authproxy/logging"
)

func setupTraceProvider(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	return exporter
}

const (
	knownTraceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	knownTraceID     = "4bf92f3577b34da6a3ce929d0e0e4736"
)

func newTestRequest(t *testing.T, traceparent string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics/sub", nil)
	ctx := context.WithValue(req.Context(), request.UID, "test-uid-123")
	req = req.WithContext(ctx)
	if traceparent != "" {
		req.Header.Set("Traceparent", traceparent)
	}
	return req
}

func TestTraceHandler_ExtractsParentContext(t *testing.T) {
	exporter := setupTraceProvider(t)

	var innerSpan trace.SpanContext
	inner := http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		innerSpan = trace.SpanContextFromContext(req.Context())
		rw.WriteHeader(http.StatusOK)
	})

	rec := logging.NewStatusRecorder(httptest.NewRecorder())
	middleware.NewTraceHandler()(inner).ServeHTTP(rec, newTestRequest(t, knownTraceparent))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected one span, got: %d", len(spans))
	}

	span := spans[0]
	if span.Name != "GET /metrics/sub" {
		t.Errorf("unexpected span name: %q", span.Name)
	}
	if span.SpanKind != trace.SpanKindServer {
		t.Errorf("expected SpanKindServer, got %v", span.SpanKind)
	}
	if span.SpanContext.TraceID().String() != knownTraceID {
		t.Errorf("expected trace ID %s, got %s", knownTraceID, span.SpanContext.TraceID())
	}
	if !span.Parent.IsRemote() {
		t.Error("expected a remote parent")
	}
	if innerSpan.SpanID() != span.SpanContext.SpanID() {
		t.Error("expected the server span in the inner request context")
	}

	var uid bool
	for _, attr := range span.Attributes {
		if string(attr.Key) == "authproxy.uid" && attr.Value.AsString() == "test-uid-123" {
			uid = true
		}
	}
	if !uid {
		t.Errorf("expected the uid attribute, got: %v", span.Attributes)
	}
}

func TestTraceHandler_Status(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   codes.Code
	}{
		{"ok", http.StatusOK, codes.Unset},
		{"not found", http.StatusNotFound, codes.Unset},
		{"internal", http.StatusInternalServerError, codes.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(subT *testing.T) {
			exporter := setupTraceProvider(subT)

			inner := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
				rw.WriteHeader(tt.status)
			})

			rec := logging.NewStatusRecorder(httptest.NewRecorder())
			middleware.NewTraceHandler()(inner).ServeHTTP(rec, newTestRequest(subT, ""))

			spans := exporter.GetSpans()
			if len(spans) != 1 {
				subT.Fatalf("expected one span, got: %d", len(spans))
			}
			if spans[0].Status.Code != tt.want {
				subT.Errorf("want: %v, got: %v", tt.want, spans[0].Status.Code)
			}
			if spans[0].Parent.IsValid() {
				subT.Error("expected a root span without inbound traceparent")
			}
		})
	}
}
