package telemetry

import "go.opentelemetry.io/otel/attribute"

var (
	KeyMechanism  = attribute.Key("authproxy.mechanism")
	KeyOrigin     = attribute.Key("authproxy.origin")
	KeyRoundTrip  = attribute.Key("authproxy.round_trip")
	KeyUID        = attribute.Key("authproxy.uid")
	KeyHTTPMethod = attribute.Key("http.request.method")
	KeyHTTPStatus = attribute.Key("http.response.status_code")
	KeyURLPath    = attribute.Key("url.path")
	KeyURLScheme  = attribute.Key("url.scheme")
	KeyServerAddr = attribute.Key("server.address")
)
