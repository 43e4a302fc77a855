package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/coupergateway/authproxy/config/request"
	"github.com/coupergateway/authproxy/logging"
	"github.com/coupergateway/authproxy/telemetry"
	"github.com/coupergateway/authproxy/telemetry/instrumentation"
	"github.com/coupergateway/authproxy/utils"
)

type TraceHandler struct {
	handler http.Handler
}

// NewTraceHandler starts a SERVER span per request. An inbound traceparent
// becomes the remote parent, so upstream spans continue the callers trace.
func NewTraceHandler() Next {
	return func(handler http.Handler) *NextHandler {
		return NewHandler(&TraceHandler{
			handler: handler,
		}, handler)
	}
}

func (th *TraceHandler) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	spanName := req.Method + " " + req.URL.EscapedPath()

	attrs := []trace.SpanStartOption{
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			telemetry.KeyHTTPMethod.String(req.Method),
			telemetry.KeyURLPath.String(req.URL.EscapedPath()),
			telemetry.KeyServerAddr.String(req.Host),
		),
	}
	if uid, ok := req.Context().Value(request.UID).(string); ok {
		attrs = append(attrs, trace.WithAttributes(telemetry.KeyUID.String(uid)))
	}

	ctx := telemetry.ExtractParent(req.Context(), req.Header)
	tracer := otel.GetTracerProvider().Tracer(
		instrumentation.Name,
		trace.WithInstrumentationVersion(utils.VersionName),
	)
	ctx, span := tracer.Start(ctx, spanName, attrs...)
	defer span.End()

	*req = *req.WithContext(ctx)
	th.handler.ServeHTTP(rw, req)

	if rsw, ok := rw.(logging.RecorderInfo); ok {
		telemetry.SetSpanStatus(span, rsw.StatusCode())
	}
}
