package tenant

import "errors"

var (
	// ErrTenantNotFound is returned by lookups when no store matches the identifier.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrResolutionFailed wraps every failed FetchAndSet.
	ErrResolutionFailed = errors.New("tenant resolution failed")

	// ErrInvalidIdentifier is returned for empty or malformed identifiers.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrNoTenantInContext is returned when a required tenant is missing from context.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrServerOnly is returned when a server-side operation runs on the client side.
	ErrServerOnly = errors.New("tenant: operation is only available on the server side")

	// ErrNoCookieJar is returned when a server context carries no cookie jar.
	ErrNoCookieJar = errors.New("tenant: no cookie jar in context")

	// ErrNotFound is returned by Storage.Load for missing keys.
	ErrNotFound = errors.New("tenant: storage key not found")

	// ErrCorruptSnapshot is returned by Store.Restore when saved state cannot be decoded.
	ErrCorruptSnapshot = errors.New("tenant: corrupt persisted snapshot")
)
