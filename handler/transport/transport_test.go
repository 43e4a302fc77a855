package transport_test

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coupergateway/authproxy/config"
	"github.com/coupergateway/authproxy/handler/transport"
	"github.com/coupergateway/authproxy/internal/test"
)

func TestNewTransport_ClientCertificate(t *testing.T) {
	helper := test.New(t)

	selfSigned, err := test.NewCertificate(time.Hour)
	helper.Must(err)

	backend := test.NewMTLSBackend(selfSigned)
	defer backend.Close()

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	helper.Must(os.WriteFile(caFile, selfSigned.CACertificate.Certificate, 0600))

	settings := config.DefaultSettings
	settings.UpstreamCAFile = caFile

	tests := []struct {
		name       string
		clientCert bool
		wantErr    bool
	}{
		{"with client certificate", true, false},
		{"without client certificate", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(subT *testing.T) {
			h := test.New(subT)

			conf, cerr := transport.NewConfig(&settings, nil)
			h.Must(cerr)
			if tt.clientCert {
				conf.ClientCertificate = selfSigned.Client
			}

			tr, terr := transport.NewTransport(conf)
			h.Must(terr)

			req, _ := http.NewRequest(http.MethodGet, backend.Addr()+"/metrics", nil)
			res, rerr := transport.NewClient(tr, conf.Timeout).Do(req)
			if (rerr != nil) != tt.wantErr {
				subT.Fatalf("unexpected error: %v", rerr)
			}
			if rerr != nil {
				return
			}
			defer res.Body.Close()

			if res.StatusCode != http.StatusOK {
				subT.Errorf("unexpected status: %d", res.StatusCode)
			}
		})
	}

	requests := backend.Requests()
	if len(requests) != 1 || requests[0].PeerCommon != "authproxy" {
		t.Errorf("expected one request with client identity, got: %#v", requests)
	}
}

func TestNewTransport_SkipVerify(t *testing.T) {
	helper := test.New(t)

	selfSigned, err := test.NewCertificate(time.Hour)
	helper.Must(err)

	backend := test.NewMTLSBackend(selfSigned)
	defer backend.Close()

	tr, err := transport.NewTransport(&transport.Config{
		DisableCertValidation: true,
		ClientCertificate:     selfSigned.Client,
	})
	helper.Must(err)

	res, err := transport.NewClient(tr, 0).Get(backend.Addr())
	helper.Must(err)
	res.Body.Close()

	tr, err = transport.NewTransport(&transport.Config{ClientCertificate: selfSigned.Client})
	helper.Must(err)

	if _, err = transport.NewClient(tr, 0).Get(backend.Addr()); err == nil {
		t.Error("expected an unknown authority error")
	}
}

func TestNewTransport_Proxy(t *testing.T) {
	helper := test.New(t)

	tr, err := transport.NewTransport(&transport.Config{Proxy: "http://proxy.local:8080"})
	helper.Must(err)

	req, _ := http.NewRequest(http.MethodGet, "http://upstream.example.com/metrics", nil)
	proxyURL, err := tr.Proxy(req)
	helper.Must(err)

	want, _ := url.Parse("http://proxy.local:8080")
	if proxyURL == nil || proxyURL.String() != want.String() {
		t.Errorf("want proxy %s, got: %v", want, proxyURL)
	}

	tr, err = transport.NewTransport(&transport.Config{})
	helper.Must(err)
	if tr.Proxy == nil {
		t.Error("expected the environment proxy func")
	}

	tr, err = transport.NewTransport(&transport.Config{NoProxyFromEnv: true})
	helper.Must(err)
	if tr.Proxy != nil {
		t.Error("expected no proxy func")
	}
}

func TestNewConfig(t *testing.T) {
	settings := config.DefaultSettings
	settings.UpstreamTimeout = "5s"
	settings.UpstreamSkipVerify = true

	conf, err := transport.NewConfig(&settings, nil)
	test.New(t).Must(err)

	if conf.Timeout != 5*time.Second || !conf.DisableCertValidation {
		t.Errorf("unexpected config: %#v", conf)
	}

	settings.UpstreamCAFile = filepath.Join(t.TempDir(), "missing.pem")
	if _, err = transport.NewConfig(&settings, nil); err == nil {
		t.Error("expected an error for a missing ca file")
	}

	settings.UpstreamCAFile = ""
	settings.UpstreamTimeout = "soon"
	if _, err = transport.NewConfig(&settings, nil); err == nil {
		t.Error("expected an error for an invalid timeout")
	}
}
