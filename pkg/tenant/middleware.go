package tenant

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/storekit/pkg/isomorphic"
	"github.com/dmitrymomot/storekit/pkg/logger"
)

// Middleware resolves the store selected by the request cookie, or by the
// request host when the resolver has WithHostFallback. Every request gets its
// own Store from newStore, so no tenant state is shared between requests.
// The tenant and the store are added to the request context.
//
// Requests without a selected store pass through untouched, and so do
// requests whose host is not the domain of any store. When the store named by
// the cookie cannot be fetched the cookie is forgotten and the error handler
// runs; by default it redirects to the select-store page.
func Middleware(resolver *Resolver, newStore func() *Store, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		selectStorePath: DefaultSelectStorePath,
		logger:          logger.Discard(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.errorHandler == nil {
		redirect := redirectTo(cfg.selectStorePath)
		cfg.errorHandler = func(w http.ResponseWriter, r *http.Request, _ error) {
			redirect(w, r)
		}
	}
	log := cfg.logger.With(logger.Component("tenant.middleware"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx := WithHost(isomorphic.WithSide(r.Context(), isomorphic.Server), r.Host)

			identifier, ok := resolver.Identifier(ctx)
			if !ok {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			store := newStore()
			t, err := store.FetchAndSet(ctx, identifier)
			if err != nil {
				_, fromCookie := resolver.cookieIdentifier(ctx)
				if !fromCookie && errors.Is(err, ErrTenantNotFound) {
					log.DebugContext(ctx, "host is not a store domain", logger.Identifier(identifier))
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}

				log.WarnContext(ctx, "selected store could not be resolved",
					logger.Identifier(identifier),
					logger.Error(err),
				)
				if fromCookie {
					if ferr := resolver.Forget(ctx); ferr != nil {
						log.ErrorContext(ctx, "failed to forget store cookie", logger.Error(ferr))
					}
				}
				cfg.errorHandler(w, r.WithContext(ctx), err)
				return
			}

			ctx = WithStore(WithTenant(ctx, t), store)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTenant rejects requests that carry no tenant. A nil onMissing
// redirects to DefaultSelectStorePath.
func RequireTenant(onMissing http.Handler) func(http.Handler) http.Handler {
	if onMissing == nil {
		onMissing = redirectTo(DefaultSelectStorePath)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				onMissing.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
