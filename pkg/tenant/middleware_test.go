package tenant_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storekit/pkg/tenant"
)

func newTestChain(t *testing.T, lookup tenant.Lookup, next http.Handler, opts ...tenant.Option) http.Handler {
	t.Helper()
	resolver := tenant.NewResolver(nil)
	newStore := func() *tenant.Store { return tenant.NewStore(lookup) }
	return newCookies(t).Middleware(tenant.Middleware(resolver, newStore, opts...)(next))
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("adds tenant and store to context", func(t *testing.T) {
		t.Parallel()

		handler := newTestChain(t, newMockLookup(acmeTenant()), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := tenant.FromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, acmeTenant(), got)

			store, ok := tenant.StoreFromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, "acme", store.Slug())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		req.AddCookie(&http.Cookie{Name: "store", Value: "acme"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("continues without tenant when no store is selected", func(t *testing.T) {
		t.Parallel()

		lookup := newMockLookup(acmeTenant())
		handler := newTestChain(t, lookup, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := tenant.FromContext(r.Context())
			assert.False(t, ok)
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int32(0), lookup.slugCalls.Load())
	})

	t.Run("unknown store redirects and forgets cookie", func(t *testing.T) {
		t.Parallel()

		handler := newTestChain(t, newMockLookup(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("next handler must not run")
		}))

		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		req.AddCookie(&http.Cookie{Name: "store", Value: "gone"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, tenant.DefaultSelectStorePath, rec.Header().Get("Location"))
		c := findCookie(rec, "store")
		require.NotNil(t, c)
		assert.Negative(t, c.MaxAge)
	})

	t.Run("custom error handler and select path", func(t *testing.T) {
		t.Parallel()

		var gotErr error
		handler := newTestChain(t, newMockLookup(), http.NotFoundHandler(),
			tenant.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
				gotErr = err
				w.WriteHeader(http.StatusServiceUnavailable)
			}),
		)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "store", Value: "gone"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.ErrorIs(t, gotErr, tenant.ErrResolutionFailed)
		assert.ErrorIs(t, gotErr, tenant.ErrTenantNotFound)

		redirecting := newTestChain(t, newMockLookup(), http.NotFoundHandler(), tenant.WithSelectStorePath("/choose"))
		rec = httptest.NewRecorder()
		redirecting.ServeHTTP(rec, req)
		assert.Equal(t, "/choose", rec.Header().Get("Location"))
	})

	t.Run("skip paths", func(t *testing.T) {
		t.Parallel()

		lookup := newMockLookup()
		handler := newTestChain(t, lookup, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}), tenant.WithSkipPaths("/healthz", "/static/"))

		req := httptest.NewRequest(http.MethodGet, "/static/app.css", nil)
		req.AddCookie(&http.Cookie{Name: "store", Value: "gone"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, int32(0), lookup.slugCalls.Load())
	})

	t.Run("every request gets its own store", func(t *testing.T) {
		t.Parallel()

		lookup := newMockLookup(acmeTenant(), localTenant())

		var (
			mu     sync.Mutex
			stores = make(map[*tenant.Store]string)
		)
		handler := newTestChain(t, lookup, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store, ok := tenant.StoreFromContext(r.Context())
			if !assert.True(t, ok) {
				return
			}
			got := tenant.MustFromContext(r.Context())

			mu.Lock()
			stores[store] = got.Slug
			mu.Unlock()
			_, _ = w.Write([]byte(got.Slug))
		}))

		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				slug := "acme"
				if i%2 == 1 {
					slug = "local"
				}
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				req.AddCookie(&http.Cookie{Name: "store", Value: slug})
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, req)
				assert.Equal(t, slug, rec.Body.String())
			}()
		}
		wg.Wait()

		assert.Len(t, stores, 20)
	})
}

func TestMiddleware_HostFallback(t *testing.T) {
	t.Parallel()

	newHostChain := func(t *testing.T, lookup tenant.Lookup, next http.Handler) http.Handler {
		t.Helper()
		resolver := tenant.NewResolver(nil, tenant.WithHostFallback())
		newStore := func() *tenant.Store { return tenant.NewStore(lookup) }
		return newCookies(t).Middleware(tenant.Middleware(resolver, newStore)(next))
	}
	slugHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got, ok := tenant.FromContext(r.Context()); ok {
			_, _ = w.Write([]byte(got.Slug))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("custom domain resolves without a cookie", func(t *testing.T) {
		t.Parallel()

		lookup := newMockLookup(acmeTenant(), localTenant())
		handler := newHostChain(t, lookup, slugHandler)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://shop.example.com/store", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "acme", rec.Body.String())
		assert.Equal(t, "shop.example.com", lookup.lastDomain.Load())

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://localhost:3000/", nil))
		assert.Equal(t, "local", rec.Body.String())
	})

	t.Run("unknown host continues without tenant", func(t *testing.T) {
		t.Parallel()

		handler := newHostChain(t, newMockLookup(acmeTenant()), slugHandler)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://platform.example.org/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Nil(t, findCookie(rec, "store"))
	})

	t.Run("cookie takes precedence over host", func(t *testing.T) {
		t.Parallel()

		lookup := newMockLookup(acmeTenant(), localTenant())
		handler := newHostChain(t, lookup, slugHandler)

		req := httptest.NewRequest(http.MethodGet, "http://shop.example.com/", nil)
		req.AddCookie(&http.Cookie{Name: "store", Value: "local"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "local", rec.Body.String())
		assert.Equal(t, int32(0), lookup.domainCalls.Load())
	})
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("redirects without tenant", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		tenant.RequireTenant(nil)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/select-store", rec.Header().Get("Location"))
	})

	t.Run("custom handler", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		tenant.RequireTenant(http.NotFoundHandler())(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("passes with tenant", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(tenant.WithTenant(req.Context(), acmeTenant()))
		rec := httptest.NewRecorder()
		tenant.RequireTenant(nil)(ok).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := req.Context()

	_, ok := tenant.FromContext(ctx)
	assert.False(t, ok)
	assert.Panics(t, func() { tenant.MustFromContext(ctx) })

	attr, ok := tenant.LoggerExtractor()(ctx)
	assert.False(t, ok)
	assert.Empty(t, attr.Key)

	ctx = tenant.WithTenant(ctx, acmeTenant())
	attr, ok = tenant.LoggerExtractor()(ctx)
	require.True(t, ok)
	assert.Equal(t, "tenant", attr.Key)
	assert.Equal(t, "acme", attr.Value.String())
}
