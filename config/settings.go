package config

import (
	"time"

	"github.com/docker/go-units"
)

const (
	DefaultRoutePrefix      = "metrics"
	DefaultRequestBodyLimit = "64MiB"
)

var DefaultSettings = Settings{
	Address:          "0.0.0.0",
	Port:             3000,
	RoutePrefix:      DefaultRoutePrefix,
	HealthPath:       "/health",
	RequestBodyLimit: DefaultRequestBodyLimit,
	TokenTimeout:     "30s",
	LogFormat:        "common",
	LogLevel:         "info",
	RequestIDFormat:  "common",
	MetricsPort:      9090,
	MetricsExporter:  "prometheus",
	ServiceName:      "authproxy",
}

// Settings represents the <Settings> object.
type Settings struct {
	Address          string `hcl:"address,optional" env:"host"`
	Port             int    `hcl:"port,optional" env:"port"`
	Endpoint         string `hcl:"endpoint,optional" env:"endpoint"`
	RoutePrefix      string `hcl:"route_prefix,optional" env:"route_prefix"`
	HealthPath       string `hcl:"health_path,optional" env:"health_path"`
	RequestBodyLimit string `hcl:"request_body_limit,optional" env:"request_body_limit"`

	UpstreamTimeout    string `hcl:"upstream_timeout,optional" env:"upstream_timeout"`
	TokenTimeout       string `hcl:"token_timeout,optional" env:"oauth2_token_timeout"`
	UpstreamCAFile     string `hcl:"upstream_ca_file,optional" env:"upstream_ca_file"`
	UpstreamSkipVerify bool   `hcl:"upstream_skip_verify,optional" env:"upstream_skip_verify"`
	NoProxyFromEnv     bool   `hcl:"no_proxy_from_env,optional" env:"no_proxy_from_env"`
	UpstreamProxy      string `hcl:"upstream_proxy,optional" env:"upstream_proxy"`

	LogFormat string `hcl:"log_format,optional" env:"log_format"`
	LogLevel  string `hcl:"log_level,optional" env:"log_level"`
	LogPretty bool   `hcl:"log_pretty,optional" env:"log_pretty"`

	RequestIDFormat           string `hcl:"request_id_format,optional" env:"request_id_format"`
	RequestIDAcceptFromHeader string `hcl:"request_id_accept_from_header,optional" env:"request_id_accept_from_header"`
	RequestIDClientHeader     string `hcl:"request_id_client_header,optional" env:"request_id_client_header"`
	RequestIDBackendHeader    string `hcl:"request_id_backend_header,optional" env:"request_id_backend_header"`

	Metrics         bool   `hcl:"metrics,optional" env:"metrics"`
	MetricsPort     int    `hcl:"metrics_port,optional" env:"metrics_port"`
	MetricsExporter string `hcl:"metrics_exporter,optional" env:"metrics_exporter"`
	MetricsEndpoint string `hcl:"metrics_endpoint,optional" env:"metrics_endpoint"`
	Traces          bool   `hcl:"traces,optional" env:"traces"`
	TracesEndpoint  string `hcl:"traces_endpoint,optional" env:"traces_endpoint"`
	ServiceName     string `hcl:"service_name,optional" env:"service_name"`
}

// BodyLimit returns the request body limit in bytes.
func (s *Settings) BodyLimit() (int64, error) {
	limit := s.RequestBodyLimit
	if limit == "" {
		limit = DefaultRequestBodyLimit
	}
	return units.RAMInBytes(limit)
}

func (s *Settings) Timeouts() (upstream, token time.Duration, err error) {
	if upstream, err = ParseDuration("upstream-timeout", s.UpstreamTimeout, 0); err != nil {
		return 0, 0, err
	}
	if token, err = ParseDuration("token-timeout", s.TokenTimeout, 0); err != nil {
		return 0, 0, err
	}
	return upstream, token, nil
}
