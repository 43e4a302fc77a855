package telemetry

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/coupergateway/authproxy/utils"
)

var InstrumentationName = "github.com/coupergateway/authproxy/telemetry"
var InstrumentationVersion = utils.VersionName

// NewSpanFromContext starts a child span with the tracer provider of the
// span found in ctx. Without a parent span the span is a no-op.
func NewSpanFromContext(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	rootSpan := trace.SpanFromContext(ctx)
	return rootSpan.TracerProvider().
		Tracer(
			InstrumentationName,
			trace.WithInstrumentationVersion(InstrumentationVersion),
		).Start(ctx, name, opts...)
}

// ExtractParent returns ctx enriched with a remote parent from the given
// headers, if the global propagator understands them.
func ExtractParent(ctx context.Context, header http.Header) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(header))
}

// SetSpanStatus marks 5xx responses as errors, like the http semantic
// conventions for server and client spans.
func SetSpanStatus(span trace.Span, statusCode int) {
	span.SetAttributes(KeyHTTPStatus.Int(statusCode))
	if statusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(statusCode))
	}
}
