package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/dmitrymomot/storekit/pkg/logger"
)

// Check reports whether one dependency of the server is usable.
type Check func(ctx context.Context) error

const checkTimeout = 3 * time.Second

// LivenessHandler always answers 200 "ALIVE".
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
	}
}

// ReadinessHandler runs every check with the request context and reports
// {"status":"ready"|"not_ready","checks":{name:"ok"|"error"}}. Any failure
// answers 503.
func ReadinessHandler(log *slog.Logger, checks map[string]Check) http.HandlerFunc {
	log = logger.OrDiscard(log)

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(names))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", slog.String("check", name), logger.Error(err))
				results[name] = "error"
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		body := struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks,omitempty"`
		}{Status: "ready", Checks: results}
		if status != http.StatusOK {
			body.Status = "not_ready"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
