// Package redis connects to Redis and stores tenant store snapshots in it.
//
// Storage implements tenant.Storage, which lets storefront processes behind a
// load balancer share the persisted store selection:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	store := tenant.NewStore(lookup,
//		tenant.WithPersistence(redis.NewStorageFromConfig(client, cfg), tenant.DefaultStorageKey),
//	)
//
// Configuration is read from REDIS_* environment variables (see Config).
// Healthcheck plugs the connection into the server health endpoint.
package redis
