package config

import "strings"

const (
	DefaultHeaderName  = "Authorization"
	DefaultHeaderValue = "Bearer {}"
	DefaultAuthStyle   = AuthStyleHeader
)

const (
	AuthStyleAuto   = "auto"
	AuthStyleHeader = "header"
	AuthStyleParams = "params"
)

// TokenPlaceholder gets replaced with the access token within the HeaderValue.
const TokenPlaceholder = "{}"

var DefaultOAuth2 = OAuth2{
	HeaderName:  DefaultHeaderName,
	HeaderValue: DefaultHeaderValue,
	AuthStyle:   DefaultAuthStyle,
}

// OAuth2 represents the <OAuth2> client credentials object.
type OAuth2 struct {
	ClientID     string   `hcl:"client_id,optional" env:"oauth2_client_id"`
	ClientSecret string   `hcl:"client_secret,optional" env:"oauth2_client_secret"`
	AuthURL      string   `hcl:"auth_url,optional" env:"oauth2_auth_url"`
	TokenURL     string   `hcl:"token_url,optional" env:"oauth2_token_url"`
	Audience     string   `hcl:"audience,optional" env:"oauth2_audience"`
	Scopes       []string `hcl:"scopes,optional" env:"oauth2_scopes"`
	HeaderName   string   `hcl:"header_name,optional" env:"oauth2_header_name"`
	HeaderValue  string   `hcl:"header_value,optional" env:"oauth2_header_format"`
	AuthStyle    string   `hcl:"auth_style,optional" env:"oauth2_auth_style"`
}

// IsConfigured reports whether any credential related field is set.
// Fields with defaults are not taken into account.
func (o *OAuth2) IsConfigured() bool {
	return o.ClientID != "" || o.ClientSecret != "" ||
		o.AuthURL != "" || o.TokenURL != "" ||
		o.Audience != "" || len(o.Scopes) > 0
}

func (o *OAuth2) IsComplete() bool {
	return o.ClientID != "" && o.ClientSecret != "" && o.AuthURL != "" && o.TokenURL != ""
}

// HeaderFor returns the configured header value with the placeholder
// replaced by the given token.
func (o *OAuth2) HeaderFor(token string) string {
	format := o.HeaderValue
	if format == "" {
		format = DefaultHeaderValue
	}
	return strings.ReplaceAll(format, TokenPlaceholder, token)
}
