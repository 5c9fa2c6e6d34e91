package main

import "time"

type appConfig struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Name string `env:"APP_NAME" envDefault:"storefront"`

	// DefaultStore is the store of a single-tenant deployment. It backs the
	// public /catalog routes and is kept in the persisted home store.
	DefaultStore string `env:"DEFAULT_STORE"`
	StateDir     string `env:"STATE_DIR"`
	RedisEnabled bool   `env:"REDIS_ENABLED" envDefault:"false"`

	// ResolveByHost lets custom domains select their store without a cookie.
	ResolveByHost bool `env:"TENANT_RESOLVE_BY_HOST" envDefault:"true"`

	TenantCacheTTL    time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`
	TenantCacheSize   int64         `env:"TENANT_CACHE_SIZE" envDefault:"10000"`
	StoreCookieMaxAge int           `env:"STORE_COOKIE_MAX_AGE" envDefault:"2592000"`
	SessionCookie     string        `env:"SESSION_COOKIE" envDefault:"session"`
}
