package cache

import "time"

// CachedToken is an issued access token with its absolute expiry.
// It is never modified after creation.
type CachedToken struct {
	value     string
	expiresAt time.Time
}

func NewCachedToken(value string, expiresAt time.Time) *CachedToken {
	return &CachedToken{value: value, expiresAt: expiresAt}
}

func (ct *CachedToken) Value() string {
	return ct.value
}

func (ct *CachedToken) ExpiresAt() time.Time {
	return ct.expiresAt
}

// ValidAt reports whether now is before the expiry.
func (ct *CachedToken) ValidAt(now time.Time) bool {
	return ct != nil && now.Before(ct.expiresAt)
}

// TokenCache holds at most one CachedToken. It does not synchronize access,
// the owner serializes all calls.
type TokenCache struct {
	now   func() time.Time
	token *CachedToken
}

// NewTokenCache creates an empty cache. A nil clock defaults to time.Now.
func NewTokenCache(clock func() time.Time) *TokenCache {
	if clock == nil {
		clock = time.Now
	}
	return &TokenCache{now: clock}
}

// Get returns the cached token if it is still valid.
func (tc *TokenCache) Get() (*CachedToken, bool) {
	if tc.token.ValidAt(tc.now()) {
		return tc.token, true
	}
	return nil, false
}

// Set replaces the cached token.
func (tc *TokenCache) Set(token *CachedToken) {
	tc.token = token
}

// Current returns the cached token regardless of its expiry, or nil.
func (tc *TokenCache) Current() *CachedToken {
	return tc.token
}

func (tc *TokenCache) Now() time.Time {
	return tc.now()
}
