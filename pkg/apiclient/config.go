package apiclient

import "time"

// Config is the env-driven backend API configuration.
type Config struct {
	BaseURL string        `env:"API_BASE_URL,required"`
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
	Tracing bool          `env:"API_TRACING" envDefault:"false"`
}

// Options converts cfg into client options; extra options are appended.
func (cfg Config) Options(extra ...Option) []Option {
	opts := []Option{WithTimeout(cfg.Timeout)}
	if cfg.Tracing {
		opts = append(opts, WithTracing())
	}
	return append(opts, extra...)
}
