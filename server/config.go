package server

import "time"

// HTTPConfig configures the ingress http server.
type HTTPConfig struct {
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// DefaultHTTPConfig sets some defaults for the http server.
var DefaultHTTPConfig = HTTPConfig{
	IdleTimeout:       time.Second * 60,
	ReadHeaderTimeout: time.Second * 10,
	ShutdownTimeout:   time.Second * 10,
}
