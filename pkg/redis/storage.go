package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/storekit/pkg/tenant"
)

// Storage keeps tenant store snapshots in Redis so that several storefront
// processes restore the same state. It implements tenant.Storage.
type Storage struct {
	db     redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// StorageOption configures a Storage.
type StorageOption func(*Storage)

// WithKeyPrefix namespaces every key.
func WithKeyPrefix(prefix string) StorageOption {
	return func(s *Storage) { s.prefix = prefix }
}

// WithTTL expires saved snapshots after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) StorageOption {
	return func(s *Storage) { s.ttl = ttl }
}

// NewStorage wraps client as a snapshot storage.
func NewStorage(client redis.UniversalClient, opts ...StorageOption) *Storage {
	s := &Storage{db: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStorageFromConfig applies the prefix and TTL from cfg.
func NewStorageFromConfig(client redis.UniversalClient, cfg Config) *Storage {
	return NewStorage(client, WithKeyPrefix(cfg.KeyPrefix), WithTTL(cfg.SnapshotTTL))
}

// Load returns tenant.ErrNotFound for missing keys.
func (s *Storage) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	data, err := s.db.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, tenant.ErrNotFound
	}
	return data, err
}

// Save sets the prefixed key, with the configured TTL if any.
func (s *Storage) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.db.Set(ctx, s.prefix+key, data, s.ttl).Err()
}

// Delete removes the prefixed key.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.db.Del(ctx, s.prefix+key).Err()
}

// Conn returns the underlying client.
func (s *Storage) Conn() redis.UniversalClient {
	return s.db
}
