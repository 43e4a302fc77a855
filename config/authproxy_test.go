package config_test

import (
	goerrors "errors"
	"testing"

	"github.com/coupergateway/authproxy/config"
	"github.com/coupergateway/authproxy/errors"
)

func TestAuthProxy_Mechanism(t *testing.T) {
	completeOAuth2 := func(o *config.OAuth2) {
		o.ClientID = "client"
		o.ClientSecret = "secret"
		o.AuthURL = "https://auth.example.com/authorize"
		o.TokenURL = "https://auth.example.com/token"
	}

	tests := []struct {
		name    string
		modify  func(c *config.AuthProxy)
		want    config.Mechanism
		wantErr bool
	}{
		{"nothing set", func(c *config.AuthProxy) {}, config.MechanismNone, false},
		{"defaults changed only", func(c *config.AuthProxy) {
			c.OAuth2.HeaderName = "X-Token"
			c.OAuth2.HeaderValue = "{}"
			c.TLS.Mode = config.TLSModeForwardHeaders.String()
		}, config.MechanismNone, false},
		{"oauth2 complete", func(c *config.AuthProxy) {
			completeOAuth2(c.OAuth2)
		}, config.MechanismOAuth2, false},
		{"oauth2 complete with audience", func(c *config.AuthProxy) {
			completeOAuth2(c.OAuth2)
			c.OAuth2.Audience = "metrics"
		}, config.MechanismOAuth2, false},
		{"oauth2 partial", func(c *config.AuthProxy) {
			c.OAuth2.ClientID = "client"
		}, config.MechanismNone, true},
		{"oauth2 audience only", func(c *config.AuthProxy) {
			c.OAuth2.Audience = "metrics"
		}, config.MechanismNone, true},
		{"oauth2 relative token url", func(c *config.AuthProxy) {
			completeOAuth2(c.OAuth2)
			c.OAuth2.TokenURL = "/token"
		}, config.MechanismNone, true},
		{"tls values", func(c *config.AuthProxy) {
			c.TLS.Cert, c.TLS.Key = "cert", "key"
		}, config.MechanismTLS, false},
		{"tls files", func(c *config.AuthProxy) {
			c.TLS.CertFile, c.TLS.KeyFile = "cert.pem", "key.pem"
		}, config.MechanismTLS, false},
		{"tls cert without key", func(c *config.AuthProxy) {
			c.TLS.Cert = "cert"
		}, config.MechanismNone, true},
		{"tls value and file", func(c *config.AuthProxy) {
			c.TLS.Cert, c.TLS.Key = "cert", "key"
			c.TLS.CertFile = "cert.pem"
		}, config.MechanismNone, true},
		{"tls mixed pair", func(c *config.AuthProxy) {
			c.TLS.Cert, c.TLS.KeyFile = "cert", "key.pem"
		}, config.MechanismNone, true},
		{"oauth2 and tls", func(c *config.AuthProxy) {
			completeOAuth2(c.OAuth2)
			c.TLS.Cert, c.TLS.Key = "cert", "key"
		}, config.MechanismNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(subT *testing.T) {
			conf := config.New()
			tt.modify(conf)

			got, err := conf.Mechanism()
			if (err != nil) != tt.wantErr {
				subT.Fatalf("Mechanism() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !goerrors.Is(err, errors.Configuration) {
				subT.Errorf("expected configuration error, got: %#v", err)
			}
			if got != tt.want {
				subT.Errorf("want: %s, got: %s", tt.want, got)
			}
		})
	}
}

func TestAuthProxy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *config.AuthProxy)
		wantErr bool
	}{
		{"valid", func(c *config.AuthProxy) {}, false},
		{"missing endpoint", func(c *config.AuthProxy) { c.Settings.Endpoint = "" }, true},
		{"relative endpoint", func(c *config.AuthProxy) { c.Settings.Endpoint = "some.endpoint" }, true},
		{"invalid port", func(c *config.AuthProxy) { c.Settings.Port = 70000 }, true},
		{"nested route prefix", func(c *config.AuthProxy) { c.Settings.RoutePrefix = "a/b" }, true},
		{"empty route prefix", func(c *config.AuthProxy) { c.Settings.RoutePrefix = "" }, true},
		{"health path without slash", func(c *config.AuthProxy) { c.Settings.HealthPath = "health" }, true},
		{"health path equals route", func(c *config.AuthProxy) { c.Settings.HealthPath = "/metrics" }, true},
		{"body limit units", func(c *config.AuthProxy) { c.Settings.RequestBodyLimit = "1k" }, false},
		{"body limit invalid", func(c *config.AuthProxy) { c.Settings.RequestBodyLimit = "lots" }, true},
		{"upstream timeout invalid", func(c *config.AuthProxy) { c.Settings.UpstreamTimeout = "10" }, true},
		{"upstream proxy relative", func(c *config.AuthProxy) { c.Settings.UpstreamProxy = "proxy:8080" }, true},
		{"log format", func(c *config.AuthProxy) { c.Settings.LogFormat = "xml" }, true},
		{"request id format", func(c *config.AuthProxy) { c.Settings.RequestIDFormat = "uuid4" }, false},
		{"metrics exporter", func(c *config.AuthProxy) { c.Settings.MetricsExporter = "statsd" }, true},
		{"auth style", func(c *config.AuthProxy) { c.OAuth2.AuthStyle = "cookie" }, true},
		{"empty header name", func(c *config.AuthProxy) { c.OAuth2.HeaderName = "" }, true},
		{"tls mode", func(c *config.AuthProxy) { c.TLS.Mode = "both" }, true},
		{"ambiguous credentials", func(c *config.AuthProxy) { c.TLS.Cert = "cert" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(subT *testing.T) {
			conf := config.New()
			conf.Settings.Endpoint = "http://some.endpoint/metrics"
			tt.modify(conf)

			err := conf.Validate()
			if (err != nil) != tt.wantErr {
				var msg string
				if gerr, ok := err.(errors.GoError); ok {
					msg = gerr.LogError()
				}
				subT.Errorf("Validate() error = %v (%s), wantErr %v", err, msg, tt.wantErr)
			}
		})
	}
}

func TestSettings_BodyLimit(t *testing.T) {
	s := config.DefaultSettings
	limit, err := s.BodyLimit()
	if err != nil {
		t.Fatal(err)
	}
	if limit != 64<<20 {
		t.Errorf("want 64MiB, got: %d", limit)
	}
}

func TestOAuth2_HeaderFor(t *testing.T) {
	o := config.DefaultOAuth2
	if got := o.HeaderFor("abc"); got != "Bearer abc" {
		t.Errorf("want %q, got: %q", "Bearer abc", got)
	}

	o.HeaderValue = "token={} again={}"
	if got := o.HeaderFor("abc"); got != "token=abc again=abc" {
		t.Errorf("unexpected header value: %q", got)
	}
}
