package test

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
)

// NewHTTPClient creates a new <http.Client> object.
func NewHTTPClient() *http.Client {
	client := &http.Client{
		Transport: &http.Transport{
			DisableCompression: true,
		},
	}
	return client
}

// NewHTTPSClient trusts the given ca and presents the optional client certificate.
func NewHTTPSClient(ca *x509.Certificate, clientCert *tls.Certificate) *http.Client {
	pool := x509.NewCertPool()
	pool.AddCert(ca)

	tlsConf := &tls.Config{RootCAs: pool}
	if clientCert != nil {
		tlsConf.Certificates = []tls.Certificate{*clientCert}
	}

	return &http.Client{
		Transport: &http.Transport{
			DisableCompression: true,
			TLSClientConfig:    tlsConf,
		},
	}
}
