package authorizer

import (
	"crypto/tls"
	"net/http"

	"golang.org/x/net/http/httpguts"

	"github.com/coupergateway/authproxy/config"
	"github.com/coupergateway/authproxy/errors"
	itls "github.com/coupergateway/authproxy/internal/tls"
)

const (
	HeaderForwardedClientCert = "X-Forwarded-Client-Cert"
	HeaderForwardedClientKey  = "X-Forwarded-Client-Key"
)

// TLSAuthorizer either presents the client identity within the TLS handshake
// of the upstream connection or forwards the PEM values as request headers.
type TLSAuthorizer struct {
	certificate *tls.Certificate
	creds       *TLSCredentials
	mode        config.TLSMode
}

// NewTLSAuthorizer parses the certificate in transport mode, so invalid
// material fails here instead of per request.
func NewTLSAuthorizer(creds *TLSCredentials, mode config.TLSMode) (*TLSAuthorizer, error) {
	ta := &TLSAuthorizer{creds: creds, mode: mode}

	switch mode {
	case config.TLSModeTransport:
		certificate, err := itls.ParseCertificate(creds.Cert, creds.Key)
		if err != nil {
			return nil, err
		}
		ta.certificate = &certificate
	case config.TLSModeForwardHeaders:
	default:
		return nil, errors.Configuration.Label("tls").Messagef("unsupported mode: %d", mode)
	}

	return ta, nil
}

func (ta *TLSAuthorizer) Mode() config.TLSMode {
	return ta.mode
}

// ClientCertificate returns the identity for the upstream transport,
// nil in forward-headers mode.
func (ta *TLSAuthorizer) ClientCertificate() *tls.Certificate {
	return ta.certificate
}

// HeaderEncodingError reports whether the credentials can be sent as header
// values at all.
func (ta *TLSAuthorizer) HeaderEncodingError() error {
	if !httpguts.ValidHeaderFieldValue(string(ta.creds.Cert)) {
		return errors.AuthorizationEncoding.Label("tls").Messagef("invalid value for header %q", HeaderForwardedClientCert)
	}
	if !httpguts.ValidHeaderFieldValue(string(ta.creds.Key)) {
		return errors.AuthorizationEncoding.Label("tls").Messagef("invalid value for header %q", HeaderForwardedClientKey)
	}
	return nil
}

// Authorize is a no-op in transport mode.
func (ta *TLSAuthorizer) Authorize(req *http.Request) error {
	if ta.mode != config.TLSModeForwardHeaders {
		return nil
	}

	if err := ta.HeaderEncodingError(); err != nil {
		return err
	}

	req.Header.Set(HeaderForwardedClientCert, string(ta.creds.Cert))
	req.Header.Set(HeaderForwardedClientKey, string(ta.creds.Key))
	return nil
}
