package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/storekit/pkg/apiclient"
	"github.com/dmitrymomot/storekit/pkg/cookie"
	"github.com/dmitrymomot/storekit/pkg/credential"
	"github.com/dmitrymomot/storekit/pkg/httpserver"
	"github.com/dmitrymomot/storekit/pkg/isomorphic"
	"github.com/dmitrymomot/storekit/pkg/logger"
	"github.com/dmitrymomot/storekit/pkg/requestid"
	"github.com/dmitrymomot/storekit/pkg/tenant"
)

type storefront struct {
	log           *slog.Logger
	cookies       *cookie.Manager
	resolver      *tenant.Resolver
	newStore      func() *tenant.Store
	api           *apiclient.Client // user token, scoped by the store cookie
	catalog       *apiclient.Client // anonymous, scoped by the home store
	home          *tenant.Store
	sessionCookie string
	checks        map[string]httpserver.Check
}

func (sf *storefront) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(requestid.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(isomorphic.ServerMiddleware)
	r.Use(sf.cookies.Middleware)
	r.Use(credential.Middleware(credential.BearerExtractor(), credential.CookieExtractor(sf.sessionCookie)))
	r.Use(tenant.Middleware(sf.resolver, sf.newStore,
		tenant.WithSkipPaths("/healthz", "/readyz", tenant.DefaultSelectStorePath, "/stores/", "/catalog/"),
		tenant.WithMiddlewareLogger(sf.log),
	))

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(sf.log, sf.checks))

	r.Get(tenant.DefaultSelectStorePath, sf.selectStorePage)
	r.Post("/stores/{identifier}/select", sf.selectStore)
	r.Post("/stores/forget", sf.forgetStore)
	r.Get("/catalog/*", sf.catalogProxy)

	r.Group(func(r chi.Router) {
		r.Use(tenant.RequireTenant(nil))
		r.Get("/store", sf.currentStore)
		r.Get("/api/*", sf.apiProxy)
	})

	return r
}

func (sf *storefront) selectStorePage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "no_store_selected",
		"message": "Select a store to continue",
	})
}

// selectStore resolves the identifier (slug or domain) and remembers the
// store in the cookie of this browser.
func (sf *storefront) selectStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identifier := chi.URLParam(r, "identifier")

	t, err := sf.newStore().FetchAndSet(ctx, identifier)
	switch {
	case errors.Is(err, tenant.ErrTenantNotFound), errors.Is(err, tenant.ErrInvalidIdentifier):
		writeError(w, http.StatusNotFound, "store not found")
		return
	case err != nil:
		sf.log.ErrorContext(ctx, "store selection failed", logger.Identifier(identifier), logger.Error(err))
		writeError(w, http.StatusBadGateway, "store lookup unavailable")
		return
	}

	if err := sf.resolver.Persist(ctx, t.Slug); err != nil {
		sf.log.ErrorContext(ctx, "failed to persist store selection", logger.Tenant(t.Slug), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to select store")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (sf *storefront) forgetStore(w http.ResponseWriter, r *http.Request) {
	if err := sf.resolver.Forget(r.Context()); err != nil {
		sf.log.ErrorContext(r.Context(), "failed to forget store", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to switch store")
		return
	}
	http.Redirect(w, r, tenant.DefaultSelectStorePath, http.StatusSeeOther)
}

func (sf *storefront) currentStore(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tenant.MustFromContext(r.Context()))
}

// apiProxy forwards GET /api/<path> to the backend as the signed-in user,
// scoped to the selected store.
func (sf *storefront) apiProxy(w http.ResponseWriter, r *http.Request) {
	sf.proxy(w, r, sf.api)
}

// catalogProxy forwards GET /catalog/<path> anonymously, scoped to the home store.
func (sf *storefront) catalogProxy(w http.ResponseWriter, r *http.Request) {
	if sf.home.Slug() == "" {
		writeError(w, http.StatusServiceUnavailable, "catalog store not configured")
		return
	}
	sf.proxy(w, r, sf.catalog)
}

func (sf *storefront) proxy(w http.ResponseWriter, r *http.Request, client *apiclient.Client) {
	ctx := r.Context()

	var body json.RawMessage
	err := client.Get(ctx, "/"+chi.URLParam(r, "*"), r.URL.Query(), &body)

	var apiErr *apiclient.Error
	switch {
	case errors.As(err, &apiErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(apiErr.StatusCode)
		_, _ = w.Write(apiErr.Body)
	case err != nil:
		sf.log.ErrorContext(ctx, "backend request failed", logger.Error(err))
		writeError(w, http.StatusBadGateway, "backend unavailable")
	case body == nil:
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusOK, body)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
