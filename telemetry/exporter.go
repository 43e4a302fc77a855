package telemetry

import (
	"context"
	goerrors "errors"
	"os"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/coupergateway/authproxy/errors"
	"github.com/coupergateway/authproxy/telemetry/provider"
	"github.com/coupergateway/authproxy/utils"
)

const (
	ExporterInvalid uint8 = iota
	ExporterPrometheus
	ExporterOTLP
)

const defaultCollectPeriod = time.Second * 2

// Telemetry holds the configured providers. The zero value is usable and
// exports nothing.
type Telemetry struct {
	gatherer prom.Gatherer
	shutdown []func(context.Context) error
}

// InitExporter configures the global meter and tracer providers according
// to the given options. The returned Telemetry must be shut down to flush
// pending exports.
func InitExporter(ctx context.Context, opts *Options, log *logrus.Entry) (*Telemetry, error) {
	otel.SetErrorHandler(ErrorHandleFunc(func(e error) { // route otel errors into our logger
		if e != nil {
			log.WithError(e).Error("telemetry")
		}
	}))

	t := &Telemetry{}
	if !opts.Metrics && !opts.Traces {
		return t, nil
	}

	res, err := newResource(opts.ServiceName)
	if err != nil {
		return nil, errors.Configuration.Label("telemetry").With(err)
	}

	if opts.Metrics {
		if err = t.initMetricExporter(ctx, opts, res, log); err != nil {
			return nil, err
		}
	}

	if opts.Traces {
		if err = t.initTraceExporter(ctx, opts, res, log); err != nil {
			_ = t.Shutdown(ctx)
			return nil, err
		}
	}

	return t, nil
}

// Gatherer returns the prometheus registry or nil if metrics are pushed
// via otlp or disabled.
func (t *Telemetry) Gatherer() prom.Gatherer {
	return t.gatherer
}

// Shutdown flushes and stops all exporters.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(t.shutdown) - 1; i >= 0; i-- {
		errs = append(errs, t.shutdown[i](ctx))
	}
	t.shutdown = nil
	return goerrors.Join(errs...)
}

func (t *Telemetry) initTraceExporter(ctx context.Context, opts *Options, res *resource.Resource, log *logrus.Entry) error {
	clientOpts := []otlptracegrpc.Option{otlptracegrpc.WithInsecure()}
	if opts.TracesEndpoint != "" {
		clientOpts = append(clientOpts, otlptracegrpc.WithEndpoint(opts.TracesEndpoint))
	}

	traceExp, err := otlptrace.New(ctx, otlptracegrpc.NewClient(clientOpts...))
	if err != nil {
		return errors.Configuration.Label("telemetry").Message("traces").With(err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExp),
	)

	// The default propagator is a no-op, so traceparent headers are only
	// written with traces enabled.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetTracerProvider(tracerProvider)
	t.shutdown = append(t.shutdown, tracerProvider.Shutdown)

	log.WithField("endpoint", opts.TracesEndpoint).Info("authproxy is pushing traces")
	return nil
}

func (t *Telemetry) initMetricExporter(ctx context.Context, opts *Options, res *resource.Resource, log *logrus.Entry) error {
	var reader sdkmetric.Reader

	switch parseExporter(opts.MetricsExporter) {
	case ExporterPrometheus:
		registry := prom.NewRegistry()
		registerer := prom.WrapRegistererWith(prom.Labels{"service_name": opts.ServiceName}, registry)
		registerer.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		promExporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return errors.Configuration.Label("telemetry").Message("prometheus").With(err)
		}
		reader = promExporter
		t.gatherer = registry
	case ExporterOTLP:
		clientOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if opts.MetricsEndpoint != "" {
			clientOpts = append(clientOpts, otlpmetricgrpc.WithEndpoint(opts.MetricsEndpoint))
		}

		metricExp, err := otlpmetricgrpc.New(ctx, clientOpts...)
		if err != nil {
			return errors.Configuration.Label("telemetry").Message("otlp metrics").With(err)
		}

		collectPeriod := opts.MetricsCollectPeriod
		if collectPeriod <= 0 {
			collectPeriod = defaultCollectPeriod
		}
		reader = sdkmetric.NewPeriodicReader(metricExp, sdkmetric.WithInterval(collectPeriod))
		log.WithField("endpoint", opts.MetricsEndpoint).Info("authproxy is pushing metrics")
	default:
		return errors.Configuration.Label("telemetry").Messagef("unknown metrics exporter: %s", opts.MetricsExporter)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)
	provider.SetMeterProvider(meterProvider)
	t.shutdown = append(t.shutdown, meterProvider.Shutdown)

	return nil
}

func newResource(serviceName string) (*resource.Resource, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, err
	}

	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.HostName(hostname),
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(utils.VersionName),
	), nil
}

func parseExporter(e string) uint8 {
	switch e {
	case "prometheus":
		return ExporterPrometheus
	case "otlp":
		return ExporterOTLP
	default:
		return ExporterInvalid
	}
}
