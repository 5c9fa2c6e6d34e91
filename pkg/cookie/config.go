package cookie

import (
	"net/http"
	"strings"
)

// Config holds cookie manager configuration.
type Config struct {
	Secrets  string        `env:"COOKIE_SECRETS" envDefault:""` // comma separated, first one signs
	Path     string        `env:"COOKIE_PATH" envDefault:"/"`
	Domain   string        `env:"COOKIE_DOMAIN" envDefault:""`
	MaxAge   int           `env:"COOKIE_MAX_AGE" envDefault:"0"`
	Secure   bool          `env:"COOKIE_SECURE" envDefault:"true"`
	HttpOnly bool          `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	SameSite http.SameSite `env:"COOKIE_SAME_SITE" envDefault:"2"` // 2 = SameSiteLaxMode
}

func (c Config) secrets() []string {
	if c.Secrets == "" {
		return nil
	}
	parts := strings.Split(c.Secrets, ",")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// NewFromConfig creates a Manager from cfg. Extra options override the config.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	configOpts := []Option{
		WithSecure(cfg.Secure),
		WithHTTPOnly(cfg.HttpOnly),
	}
	if cfg.Path != "" {
		configOpts = append(configOpts, WithPath(cfg.Path))
	}
	if cfg.Domain != "" {
		configOpts = append(configOpts, WithDomain(cfg.Domain))
	}
	if cfg.MaxAge != 0 {
		configOpts = append(configOpts, WithMaxAge(cfg.MaxAge))
	}
	if cfg.SameSite != 0 {
		configOpts = append(configOpts, WithSameSite(cfg.SameSite))
	}
	return New(cfg.secrets(), append(configOpts, opts...)...)
}
