package tenant

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Cache stores looked-up tenants.
type Cache interface {
	Get(ctx context.Context, key string) (*Tenant, bool)
	// Set stores t for ttl. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, t *Tenant, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Close() error
}

// DefaultCacheSize is the default maximum number of cached tenants.
const DefaultCacheSize = 1000

const cacheCleanupInterval = time.Minute

type cacheEntry struct {
	key       string
	tenant    *Tenant
	expiresAt time.Time
}

func (e *cacheEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// inMemoryCache is a TTL cache with LRU eviction.
type inMemoryCache struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List // front is most recently used
	maxSize int

	stop   chan struct{}
	done   chan struct{}
	closed bool
}

// NewInMemoryCache creates an in-memory cache holding up to DefaultCacheSize tenants.
func NewInMemoryCache() Cache {
	return NewInMemoryCacheWithSize(DefaultCacheSize)
}

// NewInMemoryCacheWithSize creates an in-memory cache with the given size limit.
// Expired entries are swept by a background goroutine until Close.
func NewInMemoryCacheWithSize(maxSize int) Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}

	c := &inMemoryCache{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.cleanup()
	return c
}

func (c *inMemoryCache) Get(_ context.Context, key string) (*Tenant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*cacheEntry)
	if entry.expired(time.Now()) {
		c.remove(elem)
		return nil, false
	}
	c.order.MoveToFront(elem)
	return entry.tenant.Clone(), true
}

func (c *inMemoryCache) Set(_ context.Context, key string, t *Tenant, ttl time.Duration) {
	if t == nil {
		return
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.tenant = t.Clone()
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
	c.items[key] = c.order.PushFront(&cacheEntry{
		key:       key,
		tenant:    t.Clone(),
		expiresAt: expiresAt,
	})
}

func (c *inMemoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

// remove must be called with mu held.
func (c *inMemoryCache) remove(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*cacheEntry).key)
}

func (c *inMemoryCache) cleanup() {
	ticker := time.NewTicker(cacheCleanupInterval)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *inMemoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		if elem.Value.(*cacheEntry).expired(now) {
			c.remove(elem)
		}
		elem = next
	}
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *inMemoryCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	<-c.done
	return nil
}

type noOpCache struct{}

// NewNoOpCache creates a cache that stores nothing.
func NewNoOpCache() Cache {
	return noOpCache{}
}

func (noOpCache) Get(context.Context, string) (*Tenant, bool)         { return nil, false }
func (noOpCache) Set(context.Context, string, *Tenant, time.Duration) {}
func (noOpCache) Delete(context.Context, string)                      {}
func (noOpCache) Close() error                                        { return nil }
