package config

import (
	"net/url"
	"strings"

	"github.com/coupergateway/authproxy/errors"
)

// Mechanism names the authorization mechanism selected by the configuration.
type Mechanism uint8

const (
	MechanismNone Mechanism = iota
	MechanismOAuth2
	MechanismTLS
)

func (m Mechanism) String() string {
	switch m {
	case MechanismOAuth2:
		return "oauth2"
	case MechanismTLS:
		return "tls"
	default:
		return "none"
	}
}

// AuthProxy is the complete, merged configuration.
type AuthProxy struct {
	Settings *Settings
	OAuth2   *OAuth2
	TLS      *TLS
}

// New returns a configuration populated with all defaults.
func New() *AuthProxy {
	settings := DefaultSettings
	oauth2 := DefaultOAuth2
	tls := DefaultTLS
	return &AuthProxy{
		Settings: &settings,
		OAuth2:   &oauth2,
		TLS:      &tls,
	}
}

// Mechanism resolves the configured credential shape. Exactly one of
// none, complete OAuth2 client credentials or a complete TLS identity
// must be given.
func (a *AuthProxy) Mechanism() (Mechanism, error) {
	cfgErr := errors.Configuration.Label("credentials")

	oauth2Set, tlsSet := a.OAuth2.IsConfigured(), a.TLS.IsConfigured()
	switch {
	case !oauth2Set && !tlsSet:
		return MechanismNone, nil
	case oauth2Set && tlsSet:
		return MechanismNone, cfgErr.Message("oauth2 and tls options are mutually exclusive")
	case oauth2Set:
		if !a.OAuth2.IsComplete() {
			return MechanismNone, cfgErr.Message("oauth2 requires client_id, client_secret, auth_url and token_url")
		}
		if err := absoluteURL(a.OAuth2.AuthURL); err != nil {
			return MechanismNone, cfgErr.Message("oauth2 auth_url").With(err)
		}
		if err := absoluteURL(a.OAuth2.TokenURL); err != nil {
			return MechanismNone, cfgErr.Message("oauth2 token_url").With(err)
		}
		return MechanismOAuth2, nil
	default:
		if !a.TLS.IsComplete() {
			return MechanismNone, cfgErr.Message("tls requires either cert and key or cert_file and key_file")
		}
		return MechanismTLS, nil
	}
}

// Validate checks all settings which can be verified without touching
// the network or the filesystem.
func (a *AuthProxy) Validate() error {
	s := a.Settings
	cfgErr := errors.Configuration.Label("settings")

	if s.Endpoint == "" {
		return cfgErr.Message("missing endpoint")
	}
	if err := absoluteURL(s.Endpoint); err != nil {
		return cfgErr.Message("endpoint").With(err)
	}

	if s.Port < 0 || s.Port > 65535 {
		return cfgErr.Messagef("port must be within 0 and 65535, got: %d", s.Port)
	}

	if s.RoutePrefix == "" || strings.Contains(s.RoutePrefix, "/") {
		return cfgErr.Messagef("route_prefix must be a single path segment: %q", s.RoutePrefix)
	}

	if !strings.HasPrefix(s.HealthPath, "/") {
		return cfgErr.Messagef("health_path must start with a slash: %q", s.HealthPath)
	}
	if strings.TrimPrefix(s.HealthPath, "/") == s.RoutePrefix {
		return cfgErr.Message("health_path must differ from route_prefix")
	}

	if limit, err := s.BodyLimit(); err != nil {
		return cfgErr.Message("request_body_limit").With(err)
	} else if limit <= 0 {
		return cfgErr.Messagef("request_body_limit must be positive: %q", s.RequestBodyLimit)
	}

	if _, _, err := s.Timeouts(); err != nil {
		return err
	}

	if s.UpstreamProxy != "" {
		if err := absoluteURL(s.UpstreamProxy); err != nil {
			return cfgErr.Message("upstream_proxy").With(err)
		}
	}

	switch s.LogFormat {
	case "common", "json":
	default:
		return cfgErr.Messagef("unsupported log_format: %q", s.LogFormat)
	}

	switch s.RequestIDFormat {
	case "common", "uuid4":
	default:
		return cfgErr.Messagef("unsupported request_id_format: %q", s.RequestIDFormat)
	}

	switch s.MetricsExporter {
	case "prometheus", "otlp":
	default:
		return cfgErr.Messagef("unsupported metrics_exporter: %q", s.MetricsExporter)
	}

	switch a.OAuth2.AuthStyle {
	case AuthStyleAuto, AuthStyleHeader, AuthStyleParams:
	default:
		return errors.Configuration.Label("oauth2").Messagef("unsupported auth_style: %q", a.OAuth2.AuthStyle)
	}

	if a.OAuth2.HeaderName == "" {
		return errors.Configuration.Label("oauth2").Message("empty header_name")
	}

	if _, err := ParseTLSMode(a.TLS.Mode); err != nil {
		return err
	}

	_, err := a.Mechanism()
	return err
}

func absoluteURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.Configuration.Messagef("absolute url required: %q", value)
	}
	return nil
}
