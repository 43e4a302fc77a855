package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// TokenServer is an OAuth2 token endpoint for the client credentials grant.
// Tokens are numbered by issuance: token-1, token-2, ...
type TokenServer struct {
	srv *httptest.Server

	issued atomic.Int64

	mu        sync.Mutex
	expiresIn int
	delay     time.Duration
	status    int
	forms     []url.Values
	users     []string
}

func NewTokenServer() *TokenServer {
	ts := &TokenServer{expiresIn: 60, status: http.StatusOK}
	ts.srv = httptest.NewServer(ts)
	return ts
}

func (ts *TokenServer) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		rw.WriteHeader(http.StatusBadRequest)
		return
	}
	user, _, _ := req.BasicAuth()

	ts.mu.Lock()
	ts.forms = append(ts.forms, req.PostForm)
	ts.users = append(ts.users, user)
	expiresIn, delay, status := ts.expiresIn, ts.delay, ts.status
	ts.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	rw.Header().Set("Content-Type", "application/json")

	if status != http.StatusOK {
		rw.WriteHeader(status)
		_, _ = rw.Write([]byte(`{"error":"invalid_client"}`))
		return
	}

	n := ts.issued.Add(1)
	resp := map[string]interface{}{
		"access_token": "token-" + strconv.FormatInt(n, 10),
		"token_type":   "Bearer",
	}
	if expiresIn > 0 {
		resp["expires_in"] = expiresIn
	}
	_ = json.NewEncoder(rw).Encode(resp)
}

// SetExpiresIn configures the expires_in field, zero omits it.
func (ts *TokenServer) SetExpiresIn(seconds int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.expiresIn = seconds
}

// SetDelay delays every response.
func (ts *TokenServer) SetDelay(d time.Duration) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.delay = d
}

// SetStatus lets all following requests fail with the given status unless it is 200.
func (ts *TokenServer) SetStatus(status int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.status = status
}

// Issued returns the number of successful issuances.
func (ts *TokenServer) Issued() int {
	return int(ts.issued.Load())
}

// Forms returns the posted form values of all requests.
func (ts *TokenServer) Forms() []url.Values {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]url.Values(nil), ts.forms...)
}

// Users returns the basic auth user names of all requests.
func (ts *TokenServer) Users() []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]string(nil), ts.users...)
}

func (ts *TokenServer) TokenURL() string {
	return ts.srv.URL + "/oauth/token"
}

func (ts *TokenServer) AuthURL() string {
	return ts.srv.URL + "/oauth/authorize"
}

func (ts *TokenServer) Close() {
	ts.srv.Close()
}
