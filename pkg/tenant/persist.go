package tenant

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrymomot/storekit/pkg/logger"
)

// Storage persists store snapshots.
type Storage interface {
	// Load returns the saved bytes, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Restore loads the persisted snapshot, if any, and makes it current.
// Call it once at startup before the store is used. A missing snapshot leaves
// the store idle. A snapshot that cannot be decoded leaves the store idle and
// returns ErrCorruptSnapshot.
func (s *Store) Restore(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}

	data, err := s.storage.Load(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("tenant: load snapshot: %w", err)
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}

	snap = snap.normalize()
	if snap.Status == StatusIdle {
		return nil
	}
	s.transition(ctx, 0, snap)
	return nil
}

// persist saves snap unless a newer generation has already been written.
// Failures are logged; persistence never fails a state change.
func (s *Store) persist(ctx context.Context, gen uint64, snap Snapshot) {
	if s.storage == nil {
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if gen < s.persistGen {
		return
	}
	s.persistGen = gen

	data, err := encodeSnapshot(snap)
	if err == nil {
		err = s.storage.Save(context.WithoutCancel(ctx), s.key, data)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to persist tenant snapshot",
			logger.Status(snap.Status.String()),
			logger.Error(err),
		)
	}
}

// MemoryStorage keeps snapshots in process memory.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string][]byte)}
}

// Load returns a copy of the saved value or ErrNotFound.
func (m *MemoryStorage) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data.
func (m *MemoryStorage) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = append([]byte(nil), data...)
	return nil
}

// Delete removes key; missing keys are ignored.
func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// FileStorage keeps one JSON file per key in a directory. It plays the role
// of browser local storage for long-running clients.
type FileStorage struct {
	dir string
	mu  sync.Mutex
}

// NewFileStorage creates the directory if needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("tenant: create storage dir: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.dir, filepath.Base(key)+".json")
}

// Load reads <dir>/<key>.json, returning ErrNotFound when it does not exist.
func (f *FileStorage) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Save writes through a temporary file and rename so readers never see a partial file.
func (f *FileStorage) Save(_ context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

// Delete removes the file of key. A missing file is not an error.
func (f *FileStorage) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
