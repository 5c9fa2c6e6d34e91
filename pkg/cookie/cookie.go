package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"
)

const minSecretLength = 32

// Manager writes and reads cookies using shared defaults.
type Manager struct {
	secrets  []string
	defaults Options
}

// New creates a Manager. Secrets are optional; without them signed cookies are
// unavailable (ErrNoSecret). Every non-empty secret must be at least 32 chars.
func New(secrets []string, opts ...Option) (*Manager, error) {
	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	for i, s := range secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
	}

	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		secrets:  secrets,
		defaults: defaults.apply(opts),
	}, nil
}

// CanSign reports whether the manager has secrets for signed cookies.
func (m *Manager) CanSign() bool {
	return len(m.secrets) > 0
}

// Defaults returns the attributes applied to every cookie.
func (m *Manager) Defaults() Options {
	return m.defaults
}

// Set writes a plain cookie using the manager defaults overridden by opts.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) error {
	if name == "" {
		return ErrInvalidName
	}
	o := m.defaults.apply(opts)
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	})
	return nil
}

// Get returns the value of the named request cookie or ErrCookieNotFound.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Delete expires the cookie on the client.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     m.defaults.Path,
		Domain:   m.defaults.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   m.defaults.Secure,
		HttpOnly: m.defaults.HttpOnly,
		SameSite: m.defaults.SameSite,
	})
}

// SetSigned writes value with an HMAC signature made with the newest secret.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) error {
	signed, err := m.sign(value)
	if err != nil {
		return err
	}
	return m.Set(w, name, signed, opts...)
}

// GetSigned returns the value of a signed cookie. Every configured secret is
// tried, so old cookies survive a key rotation.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	signed, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.verify(signed)
}

func (m *Manager) sign(value string) (string, error) {
	if len(m.secrets) == 0 {
		return "", ErrNoSecret
	}
	return base64.URLEncoding.EncodeToString([]byte(value)) + "|" + mac(m.secrets[0], []byte(value)), nil
}

func (m *Manager) verify(signed string) (string, error) {
	if len(m.secrets) == 0 {
		return "", ErrNoSecret
	}

	encoded, signature, ok := strings.Cut(signed, "|")
	if !ok {
		return "", ErrInvalidFormat
	}
	value, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidFormat
	}

	// every secret is tried so cookies signed before a rotation stay valid
	for _, secret := range m.secrets {
		if subtle.ConstantTimeCompare([]byte(signature), []byte(mac(secret, value))) == 1 {
			return string(value), nil
		}
	}
	return "", ErrInvalidSignature
}

func mac(secret string, value []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(value)
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}
