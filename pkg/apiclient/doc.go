// Package apiclient talks JSON to the storefront backend API.
//
// Every outgoing request runs through an ordered chain of interceptors before
// it is sent. Caller interceptors run first, then the built-ins of the client
// variant:
//
//   - New: RequestID only.
//   - NewAuthenticated: RequestID, BearerAuth and TenantScope fed by a
//     tenant.Resolver, for code that may run on either execution side.
//   - NewAnonymous: RequestID and TenantScope fed by a hydrated tenant.Store.
//
// Interceptors never fail. A missing token or store means the request goes
// out without that attribute and the backend decides.
//
//	client, err := apiclient.NewAuthenticated(cfg.BaseURL, provider, resolver,
//		apiclient.WithTimeout(cfg.Timeout),
//		apiclient.WithLogger(log),
//	)
//	var products []Product
//	err = client.Get(ctx, "/products", url.Values{"page": {"2"}}, &products)
//	// GET /products?page=2&store=acme
//
// Non-2xx responses are returned as *Error. StoreLookup implements
// tenant.Lookup on top of a Client.
package apiclient
