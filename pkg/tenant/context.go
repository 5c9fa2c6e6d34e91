package tenant

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/storekit/pkg/logger"
)

type (
	tenantKey struct{}
	storeKey  struct{}
	hostKey   struct{}
)

// WithTenant adds a tenant to the context.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, tenantKey{}, t)
}

// FromContext returns the tenant stored in ctx.
func FromContext(ctx context.Context) (*Tenant, bool) {
	t, ok := ctx.Value(tenantKey{}).(*Tenant)
	return t, ok && t != nil
}

// MustFromContext panics if ctx carries no tenant. Use it only behind RequireTenant.
func MustFromContext(ctx context.Context) *Tenant {
	t, ok := FromContext(ctx)
	if !ok {
		panic(ErrNoTenantInContext)
	}
	return t
}

// WithStore adds a per-request store to the context.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// StoreFromContext returns the store built for the current request.
func StoreFromContext(ctx context.Context) (*Store, bool) {
	s, ok := ctx.Value(storeKey{}).(*Store)
	return s, ok && s != nil
}

// WithHost records the host the current request was sent to.
func WithHost(ctx context.Context, host string) context.Context {
	return context.WithValue(ctx, hostKey{}, host)
}

// HostFromContext returns the host recorded by WithHost.
func HostFromContext(ctx context.Context) (string, bool) {
	host, ok := ctx.Value(hostKey{}).(string)
	return host, ok && host != ""
}

// LoggerExtractor adds the slug of the context tenant to log records.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if t, ok := FromContext(ctx); ok {
			return logger.Tenant(t.Slug), true
		}
		return slog.Attr{}, false
	}
}
