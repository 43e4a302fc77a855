package telemetry

import (
	"time"

	"github.com/coupergateway/authproxy/config"
)

type Options struct {
	Metrics              bool
	MetricsCollectPeriod time.Duration // push interval of the otlp exporter
	MetricsEndpoint      string
	MetricsExporter      string
	MetricsPort          int
	ServiceName          string
	Traces               bool
	TracesEndpoint       string
}

func NewOptions(settings *config.Settings) *Options {
	return &Options{
		Metrics:         settings.Metrics,
		MetricsEndpoint: settings.MetricsEndpoint,
		MetricsExporter: settings.MetricsExporter,
		MetricsPort:     settings.MetricsPort,
		ServiceName:     settings.ServiceName,
		Traces:          settings.Traces,
		TracesEndpoint:  settings.TracesEndpoint,
	}
}
