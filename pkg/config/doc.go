// Package config loads env-tagged configuration structs.
//
// Load reads a .env file from the working directory once per process (a
// missing file is fine), then parses environment variables into the struct
// with github.com/caarlos0/env. The parsed value is cached per type, so every
// package asking for the same config type sees the same values.
//
//	type Config struct {
//		BaseURL string        `env:"API_BASE_URL,required"`
//		Timeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// Parse skips the cache and is useful in tests.
package config
