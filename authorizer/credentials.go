package authorizer

import (
	"github.com/coupergateway/authproxy/config"
	"github.com/coupergateway/authproxy/config/reader"
	"github.com/coupergateway/authproxy/errors"
)

// TLSCredentials is the PEM encoded client certificate and private key.
type TLSCredentials struct {
	Cert []byte
	Key  []byte
}

// NewTLSCredentials uses the given PEM values as they are.
func NewTLSCredentials(cert, key string) (*TLSCredentials, error) {
	if cert == "" || key == "" {
		return nil, errors.Configuration.Label("tls").Message("cert and key are required")
	}
	return &TLSCredentials{Cert: []byte(cert), Key: []byte(key)}, nil
}

// NewTLSCredentialsFromFiles reads the PEM values from the given files.
func NewTLSCredentialsFromFiles(certFile, keyFile string) (*TLSCredentials, error) {
	cert, err := reader.ReadFromAttrFile("tls cert_file", "", certFile)
	if err != nil {
		return nil, err
	}
	key, err := reader.ReadFromAttrFile("tls key_file", "", keyFile)
	if err != nil {
		return nil, err
	}
	return &TLSCredentials{Cert: cert, Key: key}, nil
}

func newTLSCredentials(conf *config.TLS) (*TLSCredentials, error) {
	if conf.FromFiles() {
		return NewTLSCredentialsFromFiles(conf.CertFile, conf.KeyFile)
	}
	return NewTLSCredentials(conf.Cert, conf.Key)
}
