package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type entry struct {
	once  sync.Once
	value any
	err   error
}

var (
	cache      sync.Map // reflect.Type -> *entry
	dotenvOnce sync.Once
)

// Load parses environment variables into v. Each config type is parsed once;
// later calls copy the cached value. A failed parse is cached too, so a broken
// environment is reported consistently.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenvOnce.Do(func() {
		// a missing .env file is fine
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()
	raw, _ := cache.LoadOrStore(key, &entry{})
	e := raw.(*entry)

	e.once.Do(func() {
		var parsed T
		if err := env.Parse(&parsed); err != nil {
			e.err = errors.Join(ErrParsingConfig, err)
			return
		}
		e.value = parsed
	})

	if e.err != nil {
		return e.err
	}
	*v = e.value.(T)
	return nil
}

// MustLoad is Load that panics on failure. Use it for configuration the
// service cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// Parse parses environment variables into v without caching.
// Files, when given, are loaded into the environment first without
// overriding variables that are already set.
func Parse[T any](v *T, files ...string) error {
	if v == nil {
		return ErrNilPointer
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return errors.Join(ErrParsingConfig, err)
		}
	}
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}
