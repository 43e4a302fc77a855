package authorizer

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http/httpguts"

	"github.com/coupergateway/authproxy/cache"
	"github.com/coupergateway/authproxy/config"
	"github.com/coupergateway/authproxy/errors"
)

// Issuer obtains a new access token.
type Issuer interface {
	Issue(ctx context.Context) (*cache.CachedToken, error)
}

// OAuth2Authorizer writes a cached or freshly issued access token into the
// configured request header.
type OAuth2Authorizer struct {
	conf   *config.OAuth2
	issuer Issuer

	mu    sync.Mutex
	cache *cache.TokenCache
}

func NewOAuth2Authorizer(conf *config.OAuth2, issuer Issuer, tokenCache *cache.TokenCache) (*OAuth2Authorizer, error) {
	if !httpguts.ValidHeaderFieldName(conf.HeaderName) {
		return nil, errors.Configuration.Label("oauth2").Messagef("invalid header_name: %q", conf.HeaderName)
	}
	if tokenCache == nil {
		tokenCache = cache.NewTokenCache(nil)
	}
	return &OAuth2Authorizer{
		conf:   conf,
		issuer: issuer,
		cache:  tokenCache,
	}, nil
}

// Authorize holds the lock for the complete token lookup, a possible
// issuance and the header write. Concurrent requests wait for a running
// issuance instead of starting their own.
func (oa *OAuth2Authorizer) Authorize(req *http.Request) error {
	oa.mu.Lock()
	defer oa.mu.Unlock()

	token, err := oa.token(req.Context())
	if err != nil {
		return err
	}

	value := oa.conf.HeaderFor(token)
	if !httpguts.ValidHeaderFieldValue(value) {
		return errors.AuthorizationEncoding.Label("oauth2").Messagef("invalid value for header %q", oa.conf.HeaderName)
	}

	req.Header.Set(oa.conf.HeaderName, value)
	return nil
}

// Token returns a valid access token.
func (oa *OAuth2Authorizer) Token(ctx context.Context) (string, error) {
	oa.mu.Lock()
	defer oa.mu.Unlock()
	return oa.token(ctx)
}

// token must be called with the lock held. A failed issuance keeps the
// current cache entry.
func (oa *OAuth2Authorizer) token(ctx context.Context) (string, error) {
	if cached, ok := oa.cache.Get(); ok {
		return cached.Value(), nil
	}

	issued, err := oa.issuer.Issue(ctx)
	if err != nil {
		return "", err
	}

	oa.cache.Set(issued)
	return issued.Value(), nil
}

// TokenExpiresAt reports the expiry of the cached token. It does not wait
// for a running issuance and reports false instead.
func (oa *OAuth2Authorizer) TokenExpiresAt() (time.Time, bool) {
	if !oa.mu.TryLock() {
		return time.Time{}, false
	}
	defer oa.mu.Unlock()

	current := oa.cache.Current()
	if current == nil {
		return time.Time{}, false
	}
	return current.ExpiresAt(), true
}
