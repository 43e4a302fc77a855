package oauth2

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/coupergateway/authproxy/cache"
	"github.com/coupergateway/authproxy/config"
	"github.com/coupergateway/authproxy/config/request"
	"github.com/coupergateway/authproxy/errors"
)

const (
	// DefaultExpiresIn applies if the token response lacks an expiry.
	DefaultExpiresIn = time.Hour
	// RoundTripName marks token requests for the upstream log and telemetry.
	RoundTripName = "token"
)

// Client exchanges the configured client credentials for an access token.
type Client struct {
	conf    clientcredentials.Config
	client  *http.Client
	log     *logrus.Entry
	now     func() time.Time
	timeout time.Duration
}

type Option func(c *Client)

// WithClock replaces time.Now for the expiry calculation.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithTimeout limits each token request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func NewClient(conf *config.OAuth2, client *http.Client, log *logrus.Entry, opts ...Option) *Client {
	params := url.Values{}
	if conf.Audience != "" {
		params.Set("audience", conf.Audience)
	}

	c := &Client{
		conf: clientcredentials.Config{
			ClientID:       conf.ClientID,
			ClientSecret:   conf.ClientSecret,
			TokenURL:       conf.TokenURL,
			Scopes:         conf.Scopes,
			EndpointParams: params,
			AuthStyle:      authStyle(conf.AuthStyle),
		},
		client: client,
		log:    log,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue performs the client credentials grant. Every call results in a
// token request, caching is up to the caller.
func (c *Client) Issue(ctx context.Context) (*cache.CachedToken, error) {
	ctx = context.WithValue(ctx, request.RoundTripName, RoundTripName)
	if c.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	issuedAt := c.now()
	tok, err := c.conf.Token(ctx)
	if err != nil {
		tokenErr := errors.TokenRequest.Label("oauth2")
		if rerr, ok := err.(*oauth2.RetrieveError); ok && rerr.Response != nil {
			return nil, tokenErr.Messagef("token endpoint responded with status %d", rerr.Response.StatusCode)
		}
		return nil, tokenErr.With(err)
	}

	expiresAt := expiry(tok, issuedAt)

	c.log.WithField("expires_at", expiresAt.Format(time.RFC3339)).Debug("oauth2: token issued")

	return cache.NewCachedToken(tok.AccessToken, expiresAt), nil
}

// expiry prefers the relative expires_in value and falls back to the
// default lifetime if the issuer omits it or sends zero.
func expiry(tok *oauth2.Token, issuedAt time.Time) time.Time {
	if seconds := expiresIn(tok); seconds > 0 {
		return issuedAt.Add(time.Duration(seconds) * time.Second)
	}
	if !tok.Expiry.IsZero() {
		return tok.Expiry
	}
	return issuedAt.Add(DefaultExpiresIn)
}

func authStyle(style string) oauth2.AuthStyle {
	switch style {
	case config.AuthStyleParams:
		return oauth2.AuthStyleInParams
	case config.AuthStyleAuto:
		return oauth2.AuthStyleAutoDetect
	default:
		return oauth2.AuthStyleInHeader
	}
}

func expiresIn(tok *oauth2.Token) int64 {
	if tok.ExpiresIn > 0 {
		return tok.ExpiresIn
	}
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return int64(v)
	case string: // form encoded responses
		seconds, _ := strconv.ParseInt(v, 10, 64)
		return seconds
	}
	return 0
}
