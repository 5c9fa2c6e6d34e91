package tenant

import (
	"context"
	"regexp"
	"strings"
)

// MaxSlugLength keeps slugs DNS-label compatible.
const MaxSlugLength = 63

var (
	slugPattern   = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	domainPattern = regexp.MustCompile(`^([A-Za-z0-9-]+\.)+[A-Za-z]{2,}(:\d+)?$`)
)

// Tenant is a store as returned by the backend API.
type Tenant struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	CustomDomain string `json:"customDomain,omitempty"`
	LogoURL      string `json:"logoUrl,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
}

// Clone returns a copy that callers may modify freely.
func (t *Tenant) Clone() *Tenant {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Lookup fetches stores from the backend API.
// Implementations return an error wrapping ErrTenantNotFound for unknown identifiers.
type Lookup interface {
	ByDomain(ctx context.Context, domain string) (*Tenant, error)
	BySlug(ctx context.Context, slug string) (*Tenant, error)
}

// ValidSlug reports whether s is a URL-safe store slug.
func ValidSlug(s string) bool {
	return len(s) <= MaxSlugLength && slugPattern.MatchString(s)
}

// IsDomain reports whether identifier is looked up by domain rather than slug.
func IsDomain(identifier string) bool {
	return domainPattern.MatchString(identifier) || strings.Contains(identifier, "localhost")
}
