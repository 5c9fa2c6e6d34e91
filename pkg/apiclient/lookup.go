package apiclient

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dmitrymomot/storekit/pkg/tenant"
)

// StoreLookup resolves stores through the backend store endpoints.
// It implements tenant.Lookup.
type StoreLookup struct {
	client *Client
}

// NewStoreLookup uses client, which should not be tenant scoped.
func NewStoreLookup(client *Client) *StoreLookup {
	return &StoreLookup{client: client}
}

// ByDomain calls GET /stores/by-domain/{domain}.
func (l *StoreLookup) ByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	return l.get(ctx, "/stores/by-domain/"+url.PathEscape(domain), domain)
}

// BySlug calls GET /stores/by-slug/{slug}.
func (l *StoreLookup) BySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	return l.get(ctx, "/stores/by-slug/"+url.PathEscape(slug), slug)
}

func (l *StoreLookup) get(ctx context.Context, path, identifier string) (*tenant.Tenant, error) {
	var t tenant.Tenant
	if err := l.client.Get(ctx, path, nil, &t); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: %q: %w", tenant.ErrTenantNotFound, identifier, err)
		}
		return nil, err
	}
	if t.Slug == "" {
		return nil, fmt.Errorf("%w: %q: empty store in response", tenant.ErrTenantNotFound, identifier)
	}
	return &t, nil
}
