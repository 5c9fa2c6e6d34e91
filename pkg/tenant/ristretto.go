package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

type ristrettoCache struct {
	c *ristretto.Cache[string, *Tenant]
}

// NewRistrettoCache creates a Cache backed by ristretto holding about maxItems
// tenants. Admission is probabilistic: a Set may be dropped under contention,
// which only costs an extra lookup.
func NewRistrettoCache(maxItems int64) (Cache, error) {
	if maxItems <= 0 {
		maxItems = DefaultCacheSize
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, *Tenant]{
		NumCounters:        maxItems * 10,
		MaxCost:            maxItems,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("tenant: create ristretto cache: %w", err)
	}
	return &ristrettoCache{c: c}, nil
}

func (r *ristrettoCache) Get(_ context.Context, key string) (*Tenant, bool) {
	t, ok := r.c.Get(key)
	if !ok || t == nil {
		return nil, false
	}
	return t.Clone(), true
}

func (r *ristrettoCache) Set(_ context.Context, key string, t *Tenant, ttl time.Duration) {
	if t == nil {
		return
	}
	if ttl < 0 {
		ttl = 0
	}
	r.c.SetWithTTL(key, t.Clone(), 1, ttl)
	r.c.Wait()
}

func (r *ristrettoCache) Delete(_ context.Context, key string) {
	r.c.Del(key)
}

func (r *ristrettoCache) Close() error {
	r.c.Close()
	return nil
}
