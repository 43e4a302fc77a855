package instrumentation

const (
	Name   = "github.com/coupergateway/authproxy/telemetry"
	Prefix = "authproxy_"

	ServerInstrumentationName     = "authproxy/server"
	UpstreamInstrumentationName   = "authproxy/upstream"
	AuthorizerInstrumentationName = "authproxy/authorizer"

	Authorization           = Prefix + "authorization"
	ClientRequest           = Prefix + "client_request"
	ClientRequestDuration   = Prefix + "client_request_duration_seconds"
	TokenExpiry             = Prefix + "token_expiry_seconds"
	UpstreamRequest         = Prefix + "upstream_request"
	UpstreamRequestDuration = Prefix + "upstream_request_duration_seconds"
)
