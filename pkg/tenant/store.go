package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/storekit/pkg/logger"
)

// DefaultStorageKey is the storage key of the persisted snapshot.
const DefaultStorageKey = "store-storage"

// Store holds the active tenant and its resolution status.
// The zero value is not usable; create stores with NewStore.
type Store struct {
	lookup  Lookup
	storage Storage
	key     string
	logger  *slog.Logger

	mu       sync.RWMutex
	snap     Snapshot
	lastGood *Tenant // served by Slug while a fetch is in flight
	gen      uint64

	persistMu  sync.Mutex
	persistGen uint64

	listenersMu sync.Mutex
	listeners   map[uint64]func(Snapshot)
	nextID      uint64

	notifyMu  sync.Mutex
	notifying bool
	pending   *queuedSnapshot
	delivered uint64
}

type queuedSnapshot struct {
	gen  uint64
	snap Snapshot
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPersistence saves settled snapshots to storage under key.
// An empty key means DefaultStorageKey.
func WithPersistence(storage Storage, key string) StoreOption {
	return func(s *Store) {
		if key == "" {
			key = DefaultStorageKey
		}
		s.storage = storage
		s.key = key
	}
}

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates an idle store that fetches tenants through lookup.
func NewStore(lookup Lookup, opts ...StoreOption) *Store {
	s := &Store{
		lookup:    lookup,
		key:       DefaultStorageKey,
		logger:    logger.Discard(),
		snap:      Snapshot{Status: StatusIdle},
		listeners: make(map[uint64]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("tenant.store"))
	return s
}

// Snapshot returns the current state. The tenant is a copy.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Tenant: s.snap.Tenant.Clone(), Status: s.snap.Status}
}

// Tenant returns a copy of the current tenant.
func (s *Store) Tenant() (*Tenant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap.Tenant == nil {
		return nil, false
	}
	return s.snap.Tenant.Clone(), true
}

// Status returns the current resolution status.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Status
}

// Slug returns the slug requests should be scoped to: the current tenant's,
// or while a fetch is in flight, the last successfully resolved one.
// Returns "" when no store is selected.
func (s *Store) Slug() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.snap.Tenant != nil:
		return s.snap.Tenant.Slug
	case s.snap.Status == StatusLoading && s.lastGood != nil:
		return s.lastGood.Slug
	}
	return ""
}

// FetchAndSet looks identifier up by domain or slug (see IsDomain) and makes
// the result the current tenant. On failure the current tenant is cleared,
// the status becomes StatusError and the lookup error is returned wrapped in
// ErrResolutionFailed.
//
// If Set, Clear or another FetchAndSet runs while this lookup is in flight,
// the newer state wins and this result is not applied.
func (s *Store) FetchAndSet(ctx context.Context, identifier string) (*Tenant, error) {
	gen, _ := s.transition(ctx, 0, Snapshot{Status: StatusLoading})

	t, err := s.fetch(ctx, identifier)
	if err != nil {
		if _, applied := s.transition(ctx, gen, Snapshot{Status: StatusError}); applied {
			s.logger.WarnContext(ctx, "tenant resolution failed",
				logger.Identifier(identifier),
				logger.Error(err),
			)
		}
		return nil, fmt.Errorf("%w: %q: %w", ErrResolutionFailed, identifier, err)
	}

	if _, applied := s.transition(ctx, gen, Snapshot{Tenant: t, Status: StatusSuccess}); !applied {
		s.logger.DebugContext(ctx, "tenant fetch superseded", logger.Identifier(identifier))
	}
	return t.Clone(), nil
}

func (s *Store) fetch(ctx context.Context, identifier string) (*Tenant, error) {
	if identifier == "" {
		return nil, ErrInvalidIdentifier
	}
	if s.lookup == nil {
		return nil, errors.New("tenant: store has no lookup")
	}

	var (
		t   *Tenant
		err error
	)
	if IsDomain(identifier) {
		t, err = s.lookup.ByDomain(ctx, identifier)
	} else {
		t, err = s.lookup.BySlug(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTenantNotFound
	}
	return t.Clone(), nil
}

// Set makes t the current tenant without a lookup. A nil tenant clears the store.
func (s *Store) Set(ctx context.Context, t *Tenant) {
	if t == nil {
		s.Clear(ctx)
		return
	}
	s.transition(ctx, 0, Snapshot{Tenant: t.Clone(), Status: StatusSuccess})
}

// Clear unsets the tenant; the status becomes StatusCleared.
func (s *Store) Clear(ctx context.Context) {
	s.transition(ctx, 0, Snapshot{Status: StatusCleared})
}

// Subscribe registers fn to be called with new snapshots, in the order the
// transitions happened. Under concurrent updates intermediate snapshots may be
// skipped, but the last call always carries the current state.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

// transition is the only place state changes. It replaces tenant and status
// together. When expect is non-zero the change is applied only if no other
// transition happened since generation expect.
func (s *Store) transition(ctx context.Context, expect uint64, next Snapshot) (uint64, bool) {
	s.mu.Lock()
	if expect != 0 && expect != s.gen {
		gen := s.gen
		s.mu.Unlock()
		return gen, false
	}
	s.gen++
	gen := s.gen
	s.snap = next

	switch next.Status {
	case StatusSuccess:
		s.lastGood = next.Tenant
	case StatusLoading:
	default:
		s.lastGood = nil
	}
	s.mu.Unlock()

	if next.Status.settled() {
		s.persist(ctx, gen, next)
	}
	s.notify(gen, Snapshot{Tenant: next.Tenant.Clone(), Status: next.Status})
	return gen, true
}

// notify delivers snapshots in generation order. Only one goroutine delivers
// at a time; others queue their snapshot and return. A queued snapshot that is
// superseded before delivery is dropped, so listeners always end on the
// latest state.
func (s *Store) notify(gen uint64, snap Snapshot) {
	s.notifyMu.Lock()
	if gen <= s.delivered || (s.pending != nil && gen <= s.pending.gen) {
		s.notifyMu.Unlock()
		return
	}
	s.pending = &queuedSnapshot{gen: gen, snap: snap}
	if s.notifying {
		s.notifyMu.Unlock()
		return
	}
	s.notifying = true
	s.notifyMu.Unlock()

	done := false
	defer func() {
		// a panicking listener must not leave the queue stuck
		if !done {
			s.notifyMu.Lock()
			s.notifying = false
			s.notifyMu.Unlock()
		}
	}()

	for {
		s.notifyMu.Lock()
		next := s.pending
		s.pending = nil
		if next == nil {
			s.notifying = false
			done = true
			s.notifyMu.Unlock()
			return
		}
		s.delivered = next.gen
		s.notifyMu.Unlock()

		s.deliver(next.snap)
	}
}

func (s *Store) deliver(snap Snapshot) {
	s.listenersMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn(Snapshot{Tenant: snap.Tenant.Clone(), Status: snap.Status})
	}
}
