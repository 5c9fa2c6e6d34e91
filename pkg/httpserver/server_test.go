package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storekit/pkg/httpserver"
)

func waitReady(t *testing.T, srv *httpserver.Server) {
	t.Helper()
	select {
	case <-srv.Ready():
	case <-time.After(2 * time.Second):
		require.FailNow(t, "server did not start")
	}
}

func TestRunAndShutdown(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithShutdownTimeout(100*time.Millisecond),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}))
	}()
	waitReady(t, srv)

	resp, err := http.Get("http://" + srv.Addr())
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "run did not finish")
	}
	require.NoError(t, srv.Shutdown(context.Background()))
}

func TestManualShutdownAndHooks(t *testing.T) {
	t.Parallel()

	var started, stopped atomic.Bool
	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithStartHook(func(context.Context, *slog.Logger) { started.Store(true) }),
		httpserver.WithStopHook(func(context.Context, *slog.Logger) { stopped.Store(true) }),
	)

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background(), nil) }()
	waitReady(t, srv)

	require.NoError(t, srv.Shutdown(context.Background()))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "run did not finish")
	}
	assert.True(t, started.Load())
	assert.True(t, stopped.Load())

	err := srv.Run(context.Background(), nil)
	assert.ErrorIs(t, err, httpserver.ErrAlreadyRunning)
}

func TestStartError(t *testing.T) {
	t.Parallel()

	err := httpserver.New(httpserver.WithAddr(":invalid")).Run(context.Background(), nil)
	assert.ErrorIs(t, err, httpserver.ErrStart)
}

func TestOptionsPanic(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { httpserver.WithAddr("") })
	assert.Panics(t, func() { httpserver.WithReadTimeout(0) })
	assert.Panics(t, func() { httpserver.WithShutdownTimeout(-time.Second) })
	assert.Panics(t, func() { httpserver.WithStartHook(nil) })
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	srv := httpserver.NewFromConfig(httpserver.Config{Addr: "127.0.0.1:0", ReadTimeout: time.Second})
	go func() { _ = srv.Run(context.Background(), nil) }()
	waitReady(t, srv)
	assert.NotEmpty(t, srv.Addr())
	require.NoError(t, srv.Shutdown(context.Background()))
}

func TestHealthHandlers(t *testing.T) {
	t.Parallel()

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		httpserver.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ALIVE", rec.Body.String())
	})

	t.Run("ready", func(t *testing.T) {
		t.Parallel()

		h := httpserver.ReadinessHandler(nil, map[string]httpserver.Check{
			"redis": func(context.Context) error { return nil },
		})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ready","checks":{"redis":"ok"}}`, rec.Body.String())
	})

	t.Run("not ready", func(t *testing.T) {
		t.Parallel()

		h := httpserver.ReadinessHandler(slog.New(slog.DiscardHandler), map[string]httpserver.Check{
			"redis": func(context.Context) error { return errors.New("down") },
			"api":   func(context.Context) error { return nil },
		})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "not_ready", body.Status)
		assert.Equal(t, map[string]string{"redis": "error", "api": "ok"}, body.Checks)
	})
}
