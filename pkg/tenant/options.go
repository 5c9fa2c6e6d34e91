package tenant

import (
	"log/slog"
	"net/http"
)

// DefaultSelectStorePath is where requests without a usable store are sent.
const DefaultSelectStorePath = "/select-store"

// ErrorHandler handles errors that occur during tenant resolution.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type config struct {
	errorHandler    ErrorHandler
	skipPaths       []string
	selectStorePath string
	logger          *slog.Logger
}

// Option configures Middleware.
type Option func(*config)

// WithErrorHandler sets the handler called when the selected store cannot be resolved.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) {
		c.errorHandler = handler
	}
}

// WithSkipPaths sets path prefixes that bypass tenant resolution.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// WithSelectStorePath overrides DefaultSelectStorePath for the default error handler.
func WithSelectStorePath(path string) Option {
	return func(c *config) {
		if path != "" {
			c.selectStorePath = path
		}
	}
}

// WithMiddlewareLogger sets the middleware logger.
func WithMiddlewareLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func redirectTo(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, path, http.StatusFound)
	}
}
