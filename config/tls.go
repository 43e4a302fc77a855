package config

import "github.com/coupergateway/authproxy/errors"

// TLSMode selects how the client identity reaches the upstream.
type TLSMode uint8

const (
	TLSModeTransport TLSMode = iota
	TLSModeForwardHeaders
)

func (m TLSMode) String() string {
	switch m {
	case TLSModeTransport:
		return "transport"
	case TLSModeForwardHeaders:
		return "forward-headers"
	default:
		return "unknown"
	}
}

func ParseTLSMode(value string) (TLSMode, error) {
	for _, m := range []TLSMode{TLSModeTransport, TLSModeForwardHeaders} {
		if value == m.String() {
			return m, nil
		}
	}
	return TLSModeTransport, errors.Configuration.Label("tls").Messagef("unsupported mode: %q", value)
}

var DefaultTLS = TLS{Mode: TLSModeTransport.String()}

// TLS represents the client identity. Certificate and key are given either
// as PEM values or as file references, never both.
type TLS struct {
	Cert     string `hcl:"cert,optional" env:"tls_cert"`
	CertFile string `hcl:"cert_file,optional" env:"tls_cert_file"`
	Key      string `hcl:"key,optional" env:"tls_key"`
	KeyFile  string `hcl:"key_file,optional" env:"tls_key_file"`
	Mode     string `hcl:"mode,optional" env:"tls_mode"`
}

func (t *TLS) IsConfigured() bool {
	return t.Cert != "" || t.CertFile != "" || t.Key != "" || t.KeyFile != ""
}

// IsComplete reports whether exactly one of the value pair or the file pair is set.
func (t *TLS) IsComplete() bool {
	values := t.Cert != "" && t.Key != ""
	files := t.CertFile != "" && t.KeyFile != ""
	if values {
		return t.CertFile == "" && t.KeyFile == ""
	}
	if files {
		return t.Cert == "" && t.Key == ""
	}
	return false
}

func (t *TLS) FromFiles() bool {
	return t.CertFile != "" && t.KeyFile != ""
}
