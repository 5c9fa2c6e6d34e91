package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/storekit/pkg/cookie"
	"github.com/dmitrymomot/storekit/pkg/isomorphic"
	"github.com/dmitrymomot/storekit/pkg/logger"
)

// DefaultCookieName is the cookie holding the selected store slug on the server side.
const DefaultCookieName = "store"

// Resolver answers "which store is this request for?" on both execution sides.
// On the client side it reads the Store. On the server side it looks at the
// request being served only: the tenant already resolved for it, then the
// store cookie, then (with WithHostFallback) the request host.
// It never touches shared state there.
type Resolver struct {
	store        *Store
	cookieName   string
	cookieMaxAge int
	hostFallback bool
	logger       *slog.Logger

	identifier func(context.Context) (string, bool)
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCookieName overrides DefaultCookieName.
func WithCookieName(name string) ResolverOption {
	return func(r *Resolver) {
		if name != "" {
			r.cookieName = name
		}
	}
}

// WithCookieMaxAge sets the lifetime of the store cookie in seconds.
// Zero, the default, makes it a session cookie.
func WithCookieMaxAge(seconds int) ResolverOption {
	return func(r *Resolver) {
		r.cookieMaxAge = seconds
	}
}

// WithHostFallback resolves requests without a store cookie by their host,
// so custom domains such as shop.example.com select their store directly.
func WithHostFallback() ResolverOption {
	return func(r *Resolver) {
		r.hostFallback = true
	}
}

// WithResolverLogger sets the resolver logger.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver. store is the client-side state and may be
// nil for server-only resolvers.
func NewResolver(store *Store, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:      store,
		cookieName: DefaultCookieName,
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.identifier = isomorphic.Func2(r.clientIdentifier, r.serverIdentifier)
	return r
}

// CookieName returns the name of the store cookie.
func (r *Resolver) CookieName() string {
	return r.cookieName
}

// Identifier returns the slug of the selected store. ok is false when no
// store is selected; that is a normal state, not an error.
func (r *Resolver) Identifier(ctx context.Context) (string, bool) {
	return r.identifier(ctx)
}

func (r *Resolver) clientIdentifier(context.Context) (string, bool) {
	if r.store == nil {
		return "", false
	}
	slug := r.store.Slug()
	return slug, slug != ""
}

func (r *Resolver) serverIdentifier(ctx context.Context) (string, bool) {
	if t, ok := FromContext(ctx); ok && t.Slug != "" {
		return t.Slug, true
	}
	if slug, ok := r.cookieIdentifier(ctx); ok {
		return slug, true
	}
	if r.hostFallback {
		if host, ok := HostFromContext(ctx); ok && IsDomain(host) {
			return strings.ToLower(host), true
		}
	}
	return "", false
}

// cookieIdentifier reads the store cookie. The cookie is signed whenever the
// cookie manager has secrets; unsigned or tampered values are ignored then.
func (r *Resolver) cookieIdentifier(ctx context.Context) (string, bool) {
	jar, ok := cookie.JarFromContext(ctx)
	if !ok {
		return "", false
	}

	var (
		slug string
		err  error
	)
	if jar.CanSign() {
		slug, err = jar.GetSigned(r.cookieName)
	} else {
		slug, err = jar.Get(r.cookieName)
	}
	if err != nil {
		if !errors.Is(err, cookie.ErrCookieNotFound) {
			r.logger.DebugContext(ctx, "ignoring unreadable store cookie", logger.Error(err))
		}
		return "", false
	}
	if !ValidSlug(slug) {
		r.logger.DebugContext(ctx, "ignoring malformed store cookie", logger.Identifier(slug))
		return "", false
	}
	return slug, true
}

// Persist records slug as the selected store of the current server request.
// The cookie is always written with the Secure flag, and signed when the
// cookie manager has secrets.
func (r *Resolver) Persist(ctx context.Context, slug string) error {
	jar, err := r.serverJar(ctx)
	if err != nil {
		return err
	}
	if !ValidSlug(slug) {
		return ErrInvalidIdentifier
	}

	opts := []cookie.Option{cookie.WithSecure(true)}
	if r.cookieMaxAge > 0 {
		opts = append(opts, cookie.WithMaxAge(r.cookieMaxAge))
	}
	set := jar.Set
	if jar.CanSign() {
		set = jar.SetSigned
	}
	if err := set(r.cookieName, slug, opts...); err != nil {
		return fmt.Errorf("tenant: persist store cookie: %w", err)
	}
	return nil
}

// Forget removes the store cookie of the current server request.
func (r *Resolver) Forget(ctx context.Context) error {
	jar, err := r.serverJar(ctx)
	if err != nil {
		return err
	}
	jar.Delete(r.cookieName)
	return nil
}

func (r *Resolver) serverJar(ctx context.Context) (*cookie.Jar, error) {
	if !isomorphic.IsServer(ctx) {
		return nil, ErrServerOnly
	}
	jar, ok := cookie.JarFromContext(ctx)
	if !ok {
		return nil, ErrNoCookieJar
	}
	return jar, nil
}
