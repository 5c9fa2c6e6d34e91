package apiclient

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/storekit/pkg/credential"
	"github.com/dmitrymomot/storekit/pkg/requestid"
)

// TenantParam is the query parameter carrying the store identifier.
const TenantParam = "store"

// Interceptor augments an outgoing request. It returns the request to pass
// on, usually req itself. Interceptors must not fail.
type Interceptor func(req *http.Request) *http.Request

func chain(req *http.Request, interceptors []Interceptor) *http.Request {
	for _, ic := range interceptors {
		if next := ic(req); next != nil {
			req = next
		}
	}
	return req
}

// BearerAuth sets "Authorization: Bearer <token>" when p has a token.
// Provider errors are logged and the request continues without the header.
func BearerAuth(p credential.Provider, log *slog.Logger) Interceptor {
	return func(req *http.Request) *http.Request {
		if token := credential.Get(req.Context(), p, log); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req
	}
}

// TenantScope adds store=<identifier> to the query when resolve finds one.
// Other parameters are kept; an existing store parameter is replaced.
func TenantScope(resolve func(ctx context.Context) (string, bool)) Interceptor {
	return func(req *http.Request) *http.Request {
		id, ok := resolve(req.Context())
		if !ok || id == "" {
			return req
		}
		q := req.URL.Query()
		q.Set(TenantParam, id)
		req.URL.RawQuery = q.Encode()
		return req
	}
}

// RequestID forwards the request id found in the request context.
func RequestID() Interceptor {
	return func(req *http.Request) *http.Request {
		if id := requestid.FromContext(req.Context()); id != "" && req.Header.Get(requestid.Header) == "" {
			req.Header.Set(requestid.Header, id)
		}
		return req
	}
}

// Header sets a fixed header.
func Header(key, value string) Interceptor {
	return func(req *http.Request) *http.Request {
		req.Header.Set(key, value)
		return req
	}
}

type transport struct {
	base         http.RoundTripper
	interceptors []Interceptor
}

// Transport applies interceptors to every request sent through base, so that
// any *http.Client can be scoped. A nil base means http.DefaultTransport.
func Transport(base http.RoundTripper, interceptors ...Interceptor) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &transport{base: base, interceptors: interceptors}
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	return t.base.RoundTrip(chain(req.Clone(req.Context()), t.interceptors))
}
