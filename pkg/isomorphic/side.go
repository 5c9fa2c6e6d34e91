package isomorphic

import (
	"context"
	"net/http"
)

// Side identifies where an operation executes.
type Side uint8

const (
	// Client is the browser / single-tenant bootstrap side. It is the default.
	Client Side = iota
	// Server is the request-handling side where every request has its own cookie jar.
	Server
)

func (s Side) String() string {
	switch s {
	case Server:
		return "server"
	default:
		return "client"
	}
}

type contextKey struct{}

// WithSide returns a copy of ctx marked with the given execution side.
func WithSide(ctx context.Context, side Side) context.Context {
	return context.WithValue(ctx, contextKey{}, side)
}

// SideOf reports the execution side recorded in ctx, defaulting to Client.
func SideOf(ctx context.Context) Side {
	if ctx == nil {
		return Client
	}
	if side, ok := ctx.Value(contextKey{}).(Side); ok {
		return side
	}
	return Client
}

// IsServer reports whether ctx belongs to server request handling.
func IsServer(ctx context.Context) bool {
	return SideOf(ctx) == Server
}

// ServerMiddleware marks every request context as server side.
func ServerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithSide(r.Context(), Server)))
	})
}
