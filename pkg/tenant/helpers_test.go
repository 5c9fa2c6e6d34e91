package tenant_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/storekit/pkg/tenant"
)

type mockLookup struct {
	mu       sync.Mutex
	bySlug   map[string]*tenant.Tenant
	byDomain map[string]*tenant.Tenant
	err      error
	gate     chan struct{} // when set, lookups block until it is closed

	slugCalls   atomic.Int32
	domainCalls atomic.Int32
	lastDomain  atomic.Value
	lastSlug    atomic.Value
}

func newMockLookup(tenants ...*tenant.Tenant) *mockLookup {
	m := &mockLookup{
		bySlug:   make(map[string]*tenant.Tenant),
		byDomain: make(map[string]*tenant.Tenant),
	}
	for _, t := range tenants {
		m.add(t)
	}
	return m
}

func (m *mockLookup) add(t *tenant.Tenant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bySlug[t.Slug] = t
	if t.CustomDomain != "" {
		m.byDomain[t.CustomDomain] = t
	}
}

func (m *mockLookup) wait(ctx context.Context) error {
	if m.gate == nil {
		return nil
	}
	select {
	case <-m.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockLookup) ByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	m.domainCalls.Add(1)
	m.lastDomain.Store(domain)
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	t, ok := m.byDomain[domain]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return t.Clone(), nil
}

func (m *mockLookup) BySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	m.slugCalls.Add(1)
	m.lastSlug.Store(slug)
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	t, ok := m.bySlug[slug]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return t.Clone(), nil
}

func acmeTenant() *tenant.Tenant {
	return &tenant.Tenant{
		ID:           "st_1",
		Name:         "Acme",
		Slug:         "acme",
		CustomDomain: "shop.example.com",
		Email:        "hello@acme.test",
	}
}

func localTenant() *tenant.Tenant {
	return &tenant.Tenant{ID: "st_2", Name: "Local", Slug: "local", CustomDomain: "localhost:3000"}
}
