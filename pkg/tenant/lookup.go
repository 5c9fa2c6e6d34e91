package tenant

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is how long CachedLookup keeps a resolved tenant.
const DefaultCacheTTL = 5 * time.Minute

// CachedLookup caches successful lookups of another Lookup. Concurrent misses
// for the same identifier share one backend call. Failures are never cached.
type CachedLookup struct {
	next  Lookup
	cache Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewCachedLookup wraps next. A nil cache means an in-memory cache;
// a zero ttl means DefaultCacheTTL.
func NewCachedLookup(next Lookup, cache Cache, ttl time.Duration) *CachedLookup {
	if cache == nil {
		cache = NewInMemoryCache()
	}
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedLookup{next: next, cache: cache, ttl: ttl}
}

// ByDomain looks the domain up through the cache. Cache keys ignore case.
func (l *CachedLookup) ByDomain(ctx context.Context, domain string) (*Tenant, error) {
	return l.get(ctx, domainKey(domain), func(ctx context.Context) (*Tenant, error) {
		return l.next.ByDomain(ctx, domain)
	})
}

// BySlug looks the slug up through the cache.
func (l *CachedLookup) BySlug(ctx context.Context, slug string) (*Tenant, error) {
	return l.get(ctx, slugKey(slug), func(ctx context.Context) (*Tenant, error) {
		return l.next.BySlug(ctx, slug)
	})
}

// Invalidate drops cached entries for t's slug and custom domain.
func (l *CachedLookup) Invalidate(ctx context.Context, t *Tenant) {
	if t == nil {
		return
	}
	l.cache.Delete(ctx, slugKey(t.Slug))
	if t.CustomDomain != "" {
		l.cache.Delete(ctx, domainKey(t.CustomDomain))
	}
}

// Close closes the underlying cache.
func (l *CachedLookup) Close() error {
	return l.cache.Close()
}

func (l *CachedLookup) get(ctx context.Context, key string, load func(context.Context) (*Tenant, error)) (*Tenant, error) {
	if t, ok := l.cache.Get(ctx, key); ok {
		return t, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		// The shared call must not be cancelled by whichever caller started it.
		t, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, ErrTenantNotFound
		}
		l.cache.Set(ctx, key, t, l.ttl)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Tenant).Clone(), nil
}

func domainKey(domain string) string { return "domain:" + strings.ToLower(domain) }
func slugKey(slug string) string     { return "slug:" + slug }
