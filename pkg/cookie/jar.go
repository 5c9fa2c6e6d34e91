package cookie

import (
	"context"
	"net/http"
	"sync"
)

// Jar is the cookie view of a single request: reads come from the request,
// writes go to the response and are remembered for later reads.
type Jar struct {
	m *Manager
	w http.ResponseWriter
	r *http.Request

	mu      sync.Mutex
	pending map[string]*string // nil marks a deleted cookie
}

// Jar binds the manager to one request/response pair.
func (m *Manager) Jar(w http.ResponseWriter, r *http.Request) *Jar {
	return &Jar{m: m, w: w, r: r, pending: make(map[string]*string)}
}

// Get returns the cookie value written earlier in this request, or the one
// sent by the client.
func (j *Jar) Get(name string) (string, error) {
	j.mu.Lock()
	v, written := j.pending[name]
	j.mu.Unlock()

	if written {
		if v == nil {
			return "", ErrCookieNotFound
		}
		return *v, nil
	}
	return j.m.Get(j.r, name)
}

// Set writes the cookie and remembers it for the rest of the request.
func (j *Jar) Set(name, value string, opts ...Option) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.m.Set(j.w, name, value, opts...); err != nil {
		return err
	}
	j.pending[name] = &value
	return nil
}

// Delete expires the cookie.
func (j *Jar) Delete(name string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.m.Delete(j.w, name)
	j.pending[name] = nil
}

// CanSign reports whether signed cookies are available.
func (j *Jar) CanSign() bool {
	return j.m.CanSign()
}

// SetSigned is Set with an HMAC-signed value.
func (j *Jar) SetSigned(name, value string, opts ...Option) error {
	signed, err := j.m.sign(value)
	if err != nil {
		return err
	}
	return j.Set(name, signed, opts...)
}

// GetSigned is Get for cookies written by SetSigned.
func (j *Jar) GetSigned(name string) (string, error) {
	signed, err := j.Get(name)
	if err != nil {
		return "", err
	}
	return j.m.verify(signed)
}

type jarKey struct{}

// WithJar stores jar in ctx.
func WithJar(ctx context.Context, jar *Jar) context.Context {
	return context.WithValue(ctx, jarKey{}, jar)
}

// JarFromContext returns the jar of the request being served.
func JarFromContext(ctx context.Context) (*Jar, bool) {
	if ctx == nil {
		return nil, false
	}
	jar, ok := ctx.Value(jarKey{}).(*Jar)
	return jar, ok && jar != nil
}

// Middleware installs a fresh Jar into every request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithJar(r.Context(), m.Jar(w, r))))
	})
}
