// Package tenant resolves and holds the active store (tenant) of a storefront.
//
// Every request the storefront sends to the backend API must be scoped to one
// store. This package owns the pieces that decide which store that is:
//
//   - Store: an injectable state container holding the current Tenant and its
//     resolution Status. It fetches tenants by domain or slug through a Lookup,
//     persists settled state to a Storage and restores it on startup.
//   - Resolver: answers "which store identifier applies here?" on both
//     execution sides. On the client side it reads the Store; on the server
//     side it reads the "store" cookie of the request being served.
//   - Middleware and RequireTenant: server request integration and route guard.
//   - CachedLookup: caching and call coalescing in front of a Lookup.
//
// # Status lifecycle
//
//	idle ──FetchAndSet──▶ loading ──ok──▶ success
//	                         └────fail──▶ error   (tenant cleared, error returned)
//	any  ──Clear────────▶ cleared
//	any  ──Set──────────▶ success
//
// Status is success if and only if a tenant is set. Tenant and status are
// always replaced together, so readers never observe a mixed state. While a
// fetch is in flight, Store.Slug keeps returning the last known store so that
// concurrent requests stay scoped instead of waiting.
//
// # Domain or slug
//
// FetchAndSet classifies the identifier with IsDomain: an identifier made of
// dot-separated labels ending in an alphabetic label of two or more letters,
// or one that contains "localhost", is looked up by domain; anything else by
// slug. A slug containing a dot-TLD shape or "localhost" is therefore looked up
// as a domain.
//
// # Server side
//
// On the server every request gets its own Store (see Middleware) and the
// Resolver reads the cookie jar of that request only, so tenants never leak
// between concurrent requests. The browser-like client side uses one shared
// Store restored from Storage before first use.
//
// # Errors
//
//   - ErrResolutionFailed wraps any failed lookup returned by FetchAndSet;
//     the underlying error (for example ErrTenantNotFound) stays reachable
//     through errors.Is.
//   - A missing identifier is not an error: Resolver.Identifier reports
//     ok == false and callers proceed without tenant scoping.
package tenant
