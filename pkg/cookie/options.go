package cookie

import "net/http"

// Options are the attributes applied to a written cookie.
type Options struct {
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

// Option overrides one cookie attribute.
type Option func(*Options)

// WithPath sets the cookie path.
func WithPath(path string) Option {
	return func(o *Options) { o.Path = path }
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(o *Options) { o.Domain = domain }
}

// WithMaxAge sets the lifetime in seconds. Zero makes a session cookie.
func WithMaxAge(seconds int) Option {
	return func(o *Options) { o.MaxAge = seconds }
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option {
	return func(o *Options) { o.Secure = secure }
}

// WithHTTPOnly sets the HttpOnly flag.
func WithHTTPOnly(httpOnly bool) Option {
	return func(o *Options) { o.HttpOnly = httpOnly }
}

// WithSameSite sets the SameSite mode.
func WithSameSite(sameSite http.SameSite) Option {
	return func(o *Options) { o.SameSite = sameSite }
}

// apply returns a copy of base with opts applied; base is left untouched.
func (base Options) apply(opts []Option) Options {
	result := base
	for _, opt := range opts {
		if opt != nil {
			opt(&result)
		}
	}
	return result
}
