package test

import (
	"crypto/tls"
	"crypto/x509"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// RecordedRequest is a copy of a request which has reached the Backend.
type RecordedRequest struct {
	Method     string
	Path       string
	RawQuery   string
	Header     http.Header
	Body       []byte
	PeerCommon string
}

// Backend is an upstream which records every request and answers
// with a configurable status and body.
type Backend struct {
	srv *httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
	status   int
	body     []byte
}

func NewBackend() *Backend {
	b := &Backend{status: http.StatusOK}
	b.srv = httptest.NewServer(b)
	return b
}

// NewMTLSBackend starts a TLS backend which requires a client certificate
// signed by the given certificate authority.
func NewMTLSBackend(selfSigned *SelfSignedCertificate) *Backend {
	b := &Backend{status: http.StatusOK}
	b.srv = httptest.NewUnstartedServer(b)

	pool := x509.NewCertPool()
	pool.AddCert(selfSigned.CA.Leaf)

	b.srv.TLS = &tls.Config{
		Certificates: []tls.Certificate{*selfSigned.Server},
		ClientAuth:   tls.RequireAndVerifyClientCert,
		ClientCAs:    pool,
	}
	b.srv.StartTLS()
	return b
}

func (b *Backend) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)

	recorded := RecordedRequest{
		Method:   req.Method,
		Path:     req.URL.Path,
		RawQuery: req.URL.RawQuery,
		Header:   req.Header.Clone(),
		Body:     body,
	}
	if req.TLS != nil && len(req.TLS.PeerCertificates) > 0 {
		recorded.PeerCommon = req.TLS.PeerCertificates[0].Subject.CommonName
	}

	b.mu.Lock()
	b.requests = append(b.requests, recorded)
	status, respBody := b.status, b.body
	b.mu.Unlock()

	rw.Header().Set("X-Backend", "test")
	rw.WriteHeader(status)
	_, _ = rw.Write(respBody)
}

// Respond configures the status and body of all following responses.
func (b *Backend) Respond(status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
	b.body = []byte(body)
}

func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

func (b *Backend) Close() {
	b.srv.Close()
}

func (b *Backend) Addr() string {
	return b.srv.URL
}
