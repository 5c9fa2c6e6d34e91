package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/storekit/pkg/isomorphic"
	"github.com/dmitrymomot/storekit/pkg/logger"
)

// Provider returns the access token for the current caller.
type Provider interface {
	Token(ctx context.Context) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (string, error)

// Token calls f.
func (f ProviderFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// Static always returns token. An empty token means ErrNoSession.
func Static(token string) Provider {
	return ProviderFunc(func(context.Context) (string, error) {
		if token == "" {
			return "", ErrNoSession
		}
		return token, nil
	})
}

// FromTokenSource returns the access token of ts. Wrap ts with
// oauth2.ReuseTokenSource if it does not cache tokens itself.
func FromTokenSource(ts oauth2.TokenSource) Provider {
	return ProviderFunc(func(context.Context) (string, error) {
		if ts == nil {
			return "", ErrNoSession
		}
		tok, err := ts.Token()
		if err != nil {
			return "", fmt.Errorf("credential: fetch token: %w", err)
		}
		if tok.AccessToken == "" {
			return "", ErrEmptyToken
		}
		return tok.AccessToken, nil
	})
}

// Isomorphic uses client on the client side and server on the server side,
// decided on every call.
func Isomorphic(client, server Provider) Provider {
	return ProviderFunc(isomorphic.Func2(client.Token, server.Token))
}

// Get returns the token of p, or "" if there is none. Errors are logged and
// never returned: a missing credential must not stop the request.
func Get(ctx context.Context, p Provider, log *slog.Logger) string {
	if p == nil {
		return ""
	}
	token, err := p.Token(ctx)
	switch {
	case errors.Is(err, ErrNoSession):
		logger.OrDiscard(log).DebugContext(ctx, "no session, sending request without credentials")
		return ""
	case err != nil:
		logger.OrDiscard(log).WarnContext(ctx, "credential unavailable", logger.Error(err))
		return ""
	}
	return token
}

// Chain returns the first token any provider yields. ErrNoSession from a
// provider moves on to the next one; other errors are kept and returned only
// if no provider has a token.
func Chain(providers ...Provider) Provider {
	return ProviderFunc(func(ctx context.Context) (string, error) {
		var errs []error
		for _, p := range providers {
			token, err := p.Token(ctx)
			switch {
			case err == nil && token != "":
				return token, nil
			case err != nil && !errors.Is(err, ErrNoSession):
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			return "", errors.Join(errs...)
		}
		return "", ErrNoSession
	})
}
