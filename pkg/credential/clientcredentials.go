package credential

import (
	"context"
	"net/url"

	"golang.org/x/oauth2/clientcredentials"
)

// Config is the OAuth2 client credentials grant used by the server to
// authenticate as itself.
type Config struct {
	TokenURL     string   `env:"AUTH_TOKEN_URL"`
	ClientID     string   `env:"AUTH_CLIENT_ID"`
	ClientSecret string   `env:"AUTH_CLIENT_SECRET"`
	Scopes       []string `env:"AUTH_SCOPES" envSeparator:","`
	Audience     string   `env:"AUTH_AUDIENCE"`
}

// Enabled reports whether cfg carries enough to request tokens.
func (c Config) Enabled() bool {
	return c.TokenURL != "" && c.ClientID != "" && c.ClientSecret != ""
}

// ClientCredentials returns a provider that fetches and caches tokens until
// they expire. ctx scopes the token requests; an *http.Client stored under
// oauth2.HTTPClient in ctx is used for them.
func ClientCredentials(ctx context.Context, cfg Config) (Provider, error) {
	if !cfg.Enabled() {
		return nil, ErrMissingConfig
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}
	if cfg.Audience != "" {
		cc.EndpointParams = url.Values{"audience": {cfg.Audience}}
	}
	return FromTokenSource(cc.TokenSource(ctx)), nil
}
