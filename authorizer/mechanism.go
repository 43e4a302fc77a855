package authorizer

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coupergateway/authproxy/cache"
	"github.com/coupergateway/authproxy/config"
	"github.com/coupergateway/authproxy/oauth2"
)

// Mechanism is exactly one of none, OAuth2 or TLS. It is selected once and
// shared by all request handlers.
type Mechanism struct {
	kind   config.Mechanism
	oauth2 *OAuth2Authorizer
	tls    *TLSAuthorizer
}

func None() *Mechanism {
	return &Mechanism{kind: config.MechanismNone}
}

func NewOAuth2Mechanism(oa *OAuth2Authorizer) *Mechanism {
	return &Mechanism{kind: config.MechanismOAuth2, oauth2: oa}
}

func NewTLSMechanism(ta *TLSAuthorizer) *Mechanism {
	return &Mechanism{kind: config.MechanismTLS, tls: ta}
}

// New creates the mechanism the given configuration resolves to. The
// tokenClient is used for OAuth2 token requests.
func New(conf *config.AuthProxy, tokenClient *http.Client, log *logrus.Entry, clock func() time.Time) (*Mechanism, error) {
	kind, err := conf.Mechanism()
	if err != nil {
		return nil, err
	}

	switch kind {
	case config.MechanismOAuth2:
		_, tokenTimeout, err := conf.Settings.Timeouts()
		if err != nil {
			return nil, err
		}

		opts := []oauth2.Option{oauth2.WithTimeout(tokenTimeout)}
		if clock != nil {
			opts = append(opts, oauth2.WithClock(clock))
		}
		issuer := oauth2.NewClient(conf.OAuth2, tokenClient, log, opts...)

		oa, err := NewOAuth2Authorizer(conf.OAuth2, issuer, cache.NewTokenCache(clock))
		if err != nil {
			return nil, err
		}
		return NewOAuth2Mechanism(oa), nil
	case config.MechanismTLS:
		creds, err := newTLSCredentials(conf.TLS)
		if err != nil {
			return nil, err
		}

		mode, err := config.ParseTLSMode(conf.TLS.Mode)
		if err != nil {
			return nil, err
		}

		ta, err := NewTLSAuthorizer(creds, mode)
		if err != nil {
			return nil, err
		}
		return NewTLSMechanism(ta), nil
	default:
		return None(), nil
	}
}

func (m *Mechanism) Kind() config.Mechanism {
	return m.kind
}

// Authorize prepares the given outgoing request. Only the OAuth2 variant
// touches shared state.
func (m *Mechanism) Authorize(req *http.Request) error {
	switch m.kind {
	case config.MechanismOAuth2:
		return m.oauth2.Authorize(req)
	case config.MechanismTLS:
		return m.tls.Authorize(req)
	default:
		return nil
	}
}

// ClientCertificate returns the identity for the upstream transport if the
// TLS variant runs in transport mode.
func (m *Mechanism) ClientCertificate() *tls.Certificate {
	if m.kind != config.MechanismTLS {
		return nil
	}
	return m.tls.ClientCertificate()
}

// TLS returns the TLS variant or nil.
func (m *Mechanism) TLS() *TLSAuthorizer {
	return m.tls
}

// TokenExpiresAt reports the expiry of the cached OAuth2 token, if any.
func (m *Mechanism) TokenExpiresAt() (time.Time, bool) {
	if m.kind != config.MechanismOAuth2 {
		return time.Time{}, false
	}
	return m.oauth2.TokenExpiresAt()
}
