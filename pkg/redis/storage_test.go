package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storekit/pkg/redis"
	"github.com/dmitrymomot/storekit/pkg/tenant"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestStorage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("save load delete", func(t *testing.T) {
		t.Parallel()

		mr, client := newClient(t)
		storage := redis.NewStorage(client, redis.WithKeyPrefix("sk:"))

		_, err := storage.Load(ctx, "store-storage")
		assert.ErrorIs(t, err, tenant.ErrNotFound)

		require.NoError(t, storage.Save(ctx, "store-storage", []byte(`{"status":"cleared"}`)))
		assert.True(t, mr.Exists("sk:store-storage"))

		data, err := storage.Load(ctx, "store-storage")
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"cleared"}`, string(data))

		require.NoError(t, storage.Delete(ctx, "store-storage"))
		_, err = storage.Load(ctx, "store-storage")
		assert.ErrorIs(t, err, tenant.ErrNotFound)
	})

	t.Run("ttl", func(t *testing.T) {
		t.Parallel()

		mr, client := newClient(t)
		storage := redis.NewStorage(client, redis.WithTTL(time.Hour))

		require.NoError(t, storage.Save(ctx, "k", []byte("v")))
		mr.FastForward(2 * time.Hour)

		_, err := storage.Load(ctx, "k")
		assert.ErrorIs(t, err, tenant.ErrNotFound)
	})

	t.Run("empty key", func(t *testing.T) {
		t.Parallel()

		_, client := newClient(t)
		storage := redis.NewStorage(client)

		_, err := storage.Load(ctx, "")
		assert.ErrorIs(t, err, redis.ErrEmptyKey)
		assert.ErrorIs(t, storage.Save(ctx, "", nil), redis.ErrEmptyKey)
	})

	t.Run("backs a tenant store", func(t *testing.T) {
		t.Parallel()

		_, client := newClient(t)
		storage := redis.NewStorageFromConfig(client, redis.Config{KeyPrefix: "app:"})
		acme := &tenant.Tenant{ID: "st_1", Name: "Acme", Slug: "acme"}

		first := tenant.NewStore(nil, tenant.WithPersistence(storage, ""))
		first.Set(ctx, acme)

		second := tenant.NewStore(nil, tenant.WithPersistence(storage, ""))
		require.NoError(t, second.Restore(ctx))
		assert.Equal(t, tenant.Snapshot{Tenant: acme, Status: tenant.StatusSuccess}, second.Snapshot())
	})
}

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("connects", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		client, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:  "redis://" + mr.Addr() + "/0",
			RetryAttempts:  1,
			ConnectTimeout: time.Second,
		})
		require.NoError(t, err)
		defer client.Close()

		assert.NoError(t, redis.Healthcheck(client)(context.Background()))
	})

	t.Run("invalid url", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: "http://nope"})
		assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)

		_, err = redis.Connect(context.Background(), redis.Config{})
		assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
	})

	t.Run("server down", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:  "redis://" + addr + "/0",
			RetryAttempts:  2,
			RetryInterval:  10 * time.Millisecond,
			ConnectTimeout: time.Second,
		})
		assert.ErrorIs(t, err, redis.ErrRedisNotReady)
	})
}
