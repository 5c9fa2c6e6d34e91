package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storekit/pkg/cookie"
)

const (
	secret    = "this-is-a-very-long-secret-key-32-chars-long"
	oldSecret = "this-is-old-very-long-secret-key-32-chars-ok"
)

func responseCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	require.Failf(t, "cookie not written", "name %q", name)
	return nil
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secrets []string
		wantErr error
	}{
		{"no secrets", nil, nil},
		{"empty secrets are dropped", []string{"", ""}, nil},
		{"secret too short", []string{"short"}, cookie.ErrSecretTooShort},
		{"valid secret", []string{secret}, nil},
		{"rotation", []string{secret, oldSecret}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := cookie.New(tt.secrets)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestManager_SetGet(t *testing.T) {
	t.Parallel()

	m, err := cookie.New(nil, cookie.WithSecure(true))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Set(rec, "store", "acme"))

	c := responseCookie(t, rec, "store")
	assert.Equal(t, "acme", c.Value)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	v, err := m.Get(req, "store")
	require.NoError(t, err)
	assert.Equal(t, "acme", v)

	_, err = m.Get(req, "missing")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)

	assert.ErrorIs(t, m.Set(rec, "", "x"), cookie.ErrInvalidName)
}

func TestManager_PerCallOptions(t *testing.T) {
	t.Parallel()

	m, err := cookie.New(nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Set(rec, "store", "acme", cookie.WithMaxAge(60), cookie.WithPath("/shop")))

	c := responseCookie(t, rec, "store")
	assert.Equal(t, 60, c.MaxAge)
	assert.Equal(t, "/shop", c.Path)
	assert.Equal(t, "/", m.Defaults().Path, "defaults must not change")
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()

	m, err := cookie.New(nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Delete(rec, "store")

	c := responseCookie(t, rec, "store")
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
}

func TestManager_Signed(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		m, err := cookie.New([]string{secret})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(rec, "store", "acme"))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(responseCookie(t, rec, "store"))

		v, err := m.GetSigned(req, "store")
		require.NoError(t, err)
		assert.Equal(t, "acme", v)
	})

	t.Run("rejects tampering", func(t *testing.T) {
		t.Parallel()
		m, err := cookie.New([]string{secret})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(rec, "store", "acme"))
		c := responseCookie(t, rec, "store")

		_, sig, _ := strings.Cut(c.Value, "|")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "store", Value: "ZXZpbA==|" + sig})

		_, err = m.GetSigned(req, "store")
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("rejects malformed value", func(t *testing.T) {
		t.Parallel()
		m, err := cookie.New([]string{secret})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "store", Value: "no-separator"})

		_, err = m.GetSigned(req, "store")
		assert.ErrorIs(t, err, cookie.ErrInvalidFormat)
	})

	t.Run("verifies with rotated secret", func(t *testing.T) {
		t.Parallel()
		old, err := cookie.New([]string{oldSecret})
		require.NoError(t, err)
		rotated, err := cookie.New([]string{secret, oldSecret})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		require.NoError(t, old.SetSigned(rec, "store", "acme"))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(responseCookie(t, rec, "store"))

		v, err := rotated.GetSigned(req, "store")
		require.NoError(t, err)
		assert.Equal(t, "acme", v)
	})

	t.Run("requires secret", func(t *testing.T) {
		t.Parallel()
		m, err := cookie.New(nil)
		require.NoError(t, err)
		assert.ErrorIs(t, m.SetSigned(httptest.NewRecorder(), "store", "acme"), cookie.ErrNoSecret)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	m, err := cookie.NewFromConfig(cookie.Config{
		Secrets:  " " + secret + " , ",
		Path:     "/",
		Domain:   "example.com",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	require.NoError(t, err)

	d := m.Defaults()
	assert.Equal(t, "example.com", d.Domain)
	assert.True(t, d.Secure)
	assert.Equal(t, http.SameSiteStrictMode, d.SameSite)

	require.NoError(t, m.SetSigned(httptest.NewRecorder(), "store", "acme"))

	_, err = cookie.NewFromConfig(cookie.Config{Secrets: "short"})
	assert.ErrorIs(t, err, cookie.ErrSecretTooShort)
}
