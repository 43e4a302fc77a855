package transport

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"

	"github.com/coupergateway/authproxy/config"
	"github.com/coupergateway/authproxy/config/reader"
	itls "github.com/coupergateway/authproxy/internal/tls"
)

// Config represents the transport <Config> object.
type Config struct {
	DisableCertValidation bool
	NoProxyFromEnv        bool
	Proxy                 string

	ConnectTimeout time.Duration
	// Timeout limits the complete exchange, zero means no limit.
	Timeout time.Duration

	// CACertificate is an additional PEM or DER encoded root.
	CACertificate []byte
	// ClientCertificate holds the one the upstream gets during the tls handshake if required.
	ClientCertificate *tls.Certificate
}

// NewConfig maps the settings and an optional client identity.
func NewConfig(settings *config.Settings, clientCertificate *tls.Certificate) (*Config, error) {
	upstreamTimeout, _, err := settings.Timeouts()
	if err != nil {
		return nil, err
	}

	conf := &Config{
		DisableCertValidation: settings.UpstreamSkipVerify,
		NoProxyFromEnv:        settings.NoProxyFromEnv,
		Proxy:                 settings.UpstreamProxy,
		ConnectTimeout:        30 * time.Second,
		Timeout:               upstreamTimeout,
		ClientCertificate:     clientCertificate,
	}

	if settings.UpstreamCAFile != "" {
		conf.CACertificate, err = reader.ReadFromAttrFile("upstream_ca_file", "", settings.UpstreamCAFile)
		if err != nil {
			return nil, err
		}
	}

	return conf, nil
}

// NewTransport creates a new <*http.Transport> object by the given <*Config>.
func NewTransport(conf *Config) (*http.Transport, error) {
	tlsConf := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: conf.DisableCertValidation,
	}

	if len(conf.CACertificate) > 0 {
		pool, err := x509.SystemCertPool()
		if err != nil {
			pool = x509.NewCertPool()
		}
		if err = itls.AppendCertificates(pool, conf.CACertificate); err != nil {
			return nil, err
		}
		tlsConf.RootCAs = pool
	}

	if conf.ClientCertificate != nil {
		clientCert := conf.ClientCertificate
		tlsConf.GetClientCertificate = func(info *tls.CertificateRequestInfo) (*tls.Certificate, error) {
			return clientCert, nil
		}
	}

	var proxyFunc func(req *http.Request) (*url.URL, error)
	if conf.Proxy != "" {
		proxyConf := &httpproxy.Config{
			HTTPProxy:  conf.Proxy,
			HTTPSProxy: conf.Proxy,
		}
		fn := proxyConf.ProxyFunc()
		proxyFunc = func(req *http.Request) (*url.URL, error) {
			return fn(req.URL)
		}
	} else if !conf.NoProxyFromEnv {
		proxyFunc = http.ProxyFromEnvironment
	}

	d := &net.Dialer{
		Timeout:   conf.ConnectTimeout,
		KeepAlive: 60 * time.Second,
	}

	return &http.Transport{
		DialContext:           d.DialContext,
		DisableCompression:    true,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		Proxy:                 proxyFunc,
		TLSClientConfig:       tlsConf,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}, nil
}

// NewClient wraps the given round tripper.
func NewClient(rt http.RoundTripper, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: rt,
	}
}
