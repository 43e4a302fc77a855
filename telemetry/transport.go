package telemetry

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/coupergateway/authproxy/config/request"
	"github.com/coupergateway/authproxy/telemetry/instrumentation"
	"github.com/coupergateway/authproxy/telemetry/provider"
)

var _ http.RoundTripper = &InstrumentedRoundTripper{}

// InstrumentedRoundTripper creates a CLIENT span for each outgoing request,
// injects the trace context into the request headers and records the
// upstream request metrics.
type InstrumentedRoundTripper struct {
	next http.RoundTripper
}

func NewInstrumentedRoundTripper(next http.RoundTripper) *InstrumentedRoundTripper {
	return &InstrumentedRoundTripper{next: next}
}

func (t *InstrumentedRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	roundTripName, _ := ctx.Value(request.RoundTripName).(string)

	spanName := "upstream"
	if roundTripName != "" {
		spanName += "." + roundTripName
	}

	ctx, span := NewSpanFromContext(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			KeyHTTPMethod.String(req.Method),
			KeyOrigin.String(req.URL.Host),
			KeyRoundTrip.String(roundTripName),
			KeyServerAddr.String(req.URL.Hostname()),
			KeyURLPath.String(req.URL.EscapedPath()),
			KeyURLScheme.String(req.URL.Scheme),
		),
	)
	defer span.End()

	// RoundTrippers must not modify the given request.
	outreq := req.Clone(ctx)
	if outreq.Header == nil {
		outreq.Header = http.Header{}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(outreq.Header))

	meter := provider.Meter(instrumentation.UpstreamInstrumentationName)
	counter, _ := meter.Int64Counter(instrumentation.UpstreamRequest,
		metric.WithDescription("Number of outgoing requests"))
	duration, _ := meter.Float64Histogram(instrumentation.UpstreamRequestDuration,
		metric.WithDescription("Duration of outgoing requests"), metric.WithUnit("s"))

	attrs := []attribute.KeyValue{
		attribute.String("name", roundTripName),
		attribute.String("method", req.Method),
		attribute.String("origin", req.URL.Host),
	}

	start := time.Now()
	beresp, err := t.next.RoundTrip(outreq)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else if beresp != nil {
		attrs = append(attrs, attribute.Int("code", beresp.StatusCode))
		SetSpanStatus(span, beresp.StatusCode)
	}

	option := metric.WithAttributes(attrs...)
	counter.Add(ctx, 1, option)
	duration.Record(ctx, elapsed, option)

	return beresp, err
}
