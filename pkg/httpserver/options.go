package httpserver

import (
	"context"
	"log/slog"
	"time"
)

// Option configures the HTTP server.
type Option func(*config)

// Hook runs when the server starts listening or after it stopped.
type Hook func(ctx context.Context, log *slog.Logger)

// WithAddr sets the listen address. ":0" picks a free port; see Server.Addr.
func WithAddr(addr string) Option {
	if addr == "" {
		panic("httpserver: WithAddr: empty address")
	}
	return func(c *config) { c.addr = addr }
}

// WithReadHeaderTimeout sets http.Server.ReadHeaderTimeout.
func WithReadHeaderTimeout(d time.Duration) Option {
	return durationOption("WithReadHeaderTimeout", d, func(c *config) { c.readHeaderTimeout = d })
}

// WithReadTimeout sets http.Server.ReadTimeout.
func WithReadTimeout(d time.Duration) Option {
	return durationOption("WithReadTimeout", d, func(c *config) { c.readTimeout = d })
}

// WithWriteTimeout sets http.Server.WriteTimeout.
func WithWriteTimeout(d time.Duration) Option {
	return durationOption("WithWriteTimeout", d, func(c *config) { c.writeTimeout = d })
}

// WithIdleTimeout sets http.Server.IdleTimeout.
func WithIdleTimeout(d time.Duration) Option {
	return durationOption("WithIdleTimeout", d, func(c *config) { c.idleTimeout = d })
}

// WithShutdownTimeout bounds how long in-flight requests may finish after a stop signal.
func WithShutdownTimeout(d time.Duration) Option {
	return durationOption("WithShutdownTimeout", d, func(c *config) { c.shutdownTimeout = d })
}

func durationOption(name string, d time.Duration, set Option) Option {
	if d <= 0 {
		panic("httpserver: " + name + ": duration must be > 0")
	}
	return set
}

// WithLogger sets the server logger. Nil keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStartHook registers h to run once the listener is open.
func WithStartHook(h Hook) Option {
	if h == nil {
		panic("httpserver: WithStartHook: nil hook")
	}
	return func(c *config) { c.startHooks = append(c.startHooks, h) }
}

// WithStopHook registers h to run after shutdown, for example to close
// caches and connections the handlers used.
func WithStopHook(h Hook) Option {
	if h == nil {
		panic("httpserver: WithStopHook: nil hook")
	}
	return func(c *config) { c.stopHooks = append(c.stopHooks, h) }
}
