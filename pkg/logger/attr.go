package logger

import (
	"log/slog"
	"time"
)

// Error records err under the key "error". A nil error yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the emitting component under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Tenant records a store slug under the key "tenant".
func Tenant(slug string) slog.Attr {
	return slog.String("tenant", slug)
}

// Identifier records a raw tenant identifier (slug or domain) under the key "identifier".
func Identifier(id string) slog.Attr {
	return slog.String("identifier", id)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	return slog.String("request_id", id)
}

// Method records an HTTP method.
func Method(m string) slog.Attr {
	return slog.String("method", m)
}

// URL records a request URL.
func URL(u string) slog.Attr {
	return slog.String("url", u)
}

// StatusCode records an HTTP status code.
func StatusCode(code int) slog.Attr {
	return slog.Int("status", code)
}

// Status records a state name under the key "status".
func Status(s string) slog.Attr {
	return slog.String("status", s)
}

// Duration records an elapsed time.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
