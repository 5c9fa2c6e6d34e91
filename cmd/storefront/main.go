package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/dmitrymomot/storekit/pkg/apiclient"
	"github.com/dmitrymomot/storekit/pkg/config"
	"github.com/dmitrymomot/storekit/pkg/cookie"
	"github.com/dmitrymomot/storekit/pkg/credential"
	"github.com/dmitrymomot/storekit/pkg/httpserver"
	"github.com/dmitrymomot/storekit/pkg/logger"
	"github.com/dmitrymomot/storekit/pkg/redis"
	"github.com/dmitrymomot/storekit/pkg/requestid"
	"github.com/dmitrymomot/storekit/pkg/tenant"
)

func main() {
	var app appConfig
	config.MustLoad(&app)

	log := logger.New(
		logger.WithEnvironment(app.Env, app.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor(), tenant.LoggerExtractor()),
	)
	slog.SetDefault(log)

	if err := run(context.Background(), app, log); err != nil {
		log.Error("storefront stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, app appConfig, log *slog.Logger) error {
	var (
		apiCfg    apiclient.Config
		authCfg   credential.Config
		cookieCfg cookie.Config
		httpCfg   httpserver.Config
	)
	if err := errors.Join(
		config.Load(&apiCfg),
		config.Load(&authCfg),
		config.Load(&cookieCfg),
		config.Load(&httpCfg),
	); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// --- Clients ---

	var (
		service credential.Provider
		err     error
	)
	if authCfg.Enabled() {
		if service, err = credential.ClientCredentials(ctx, authCfg); err != nil {
			return fmt.Errorf("client credentials: %w", err)
		}
	}

	resolverOpts := []tenant.ResolverOption{
		tenant.WithCookieMaxAge(app.StoreCookieMaxAge),
		tenant.WithResolverLogger(log),
	}
	if app.ResolveByHost {
		resolverOpts = append(resolverOpts, tenant.WithHostFallback())
	}
	resolver := tenant.NewResolver(nil, resolverOpts...)

	clients, err := newClients(apiCfg.BaseURL, service, resolver, log, apiCfg.Options(apiclient.WithLogger(log))...)
	if err != nil {
		return fmt.Errorf("api client: %w", err)
	}

	// --- Store lookup ---

	cache, err := tenant.NewRistrettoCache(app.TenantCacheSize)
	if err != nil {
		return err
	}
	lookup := tenant.NewCachedLookup(apiclient.NewStoreLookup(clients.backend), cache, app.TenantCacheTTL)
	defer lookup.Close()

	// --- Persisted home store ---

	checks := map[string]httpserver.Check{}
	storage, err := newStorage(ctx, app, checks)
	if err != nil {
		return err
	}
	home := tenant.NewStore(lookup,
		tenant.WithPersistence(storage, tenant.DefaultStorageKey),
		tenant.WithLogger(log),
	)
	if err := home.Restore(ctx); err != nil {
		log.WarnContext(ctx, "discarding persisted store state", logger.Error(err))
	}
	if app.DefaultStore != "" {
		if _, err := home.FetchAndSet(ctx, app.DefaultStore); err != nil {
			log.WarnContext(ctx, "default store unavailable", logger.Identifier(app.DefaultStore), logger.Error(err))
		}
	}

	catalog, err := apiclient.NewAnonymous(apiCfg.BaseURL, home, apiCfg.Options(apiclient.WithLogger(log))...)
	if err != nil {
		return fmt.Errorf("api client: %w", err)
	}

	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return fmt.Errorf("cookies: %w", err)
	}

	sf := &storefront{
		log:      log,
		cookies:  cookies,
		resolver: resolver,
		newStore: func() *tenant.Store {
			return tenant.NewStore(lookup, tenant.WithLogger(log))
		},
		api:           clients.api,
		catalog:       catalog,
		home:          home,
		sessionCookie: app.SessionCookie,
		checks:        checks,
	}

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, sf.routes())
}

type backendClients struct {
	backend *apiclient.Client // storefront identity, store lookups only
	api     *apiclient.Client // visitor identity, scoped by the resolved store
}

// newClients builds the backend clients. service authenticates the storefront
// itself and may be nil. It is attached to store lookups only: visitor
// requests carry the visitor's own token or none at all.
func newClients(baseURL string, service credential.Provider, resolver *tenant.Resolver, log *slog.Logger, opts ...apiclient.Option) (backendClients, error) {
	backendOpts := opts
	if service != nil {
		backendOpts = append(slices.Clone(opts), apiclient.WithInterceptors(apiclient.BearerAuth(service, log)))
	}
	backend, err := apiclient.New(baseURL, backendOpts...)
	if err != nil {
		return backendClients{}, err
	}
	api, err := apiclient.NewAuthenticated(baseURL, credential.FromIncomingRequest(), resolver, opts...)
	if err != nil {
		return backendClients{}, err
	}
	return backendClients{backend: backend, api: api}, nil
}

// newStorage picks where the home store snapshot lives: Redis when enabled,
// a state directory when configured, memory otherwise.
func newStorage(ctx context.Context, app appConfig, checks map[string]httpserver.Check) (tenant.Storage, error) {
	switch {
	case app.RedisEnabled:
		var cfg redis.Config
		if err := config.Load(&cfg); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		client, err := redis.Connect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		checks["redis"] = redis.Healthcheck(client)
		return redis.NewStorageFromConfig(client, cfg), nil
	case app.StateDir != "":
		return tenant.NewFileStorage(app.StateDir)
	default:
		return tenant.NewMemoryStorage(), nil
	}
}
