package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dmitrymomot/storekit/pkg/credential"
	"github.com/dmitrymomot/storekit/pkg/logger"
	"github.com/dmitrymomot/storekit/pkg/tenant"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 64 << 10
)

// Client sends JSON requests to the backend API.
type Client struct {
	baseURL      *url.URL
	http         *http.Client
	interceptors []Interceptor
	builtins     []Interceptor
	logger       *slog.Logger
	tracing      bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient uses a copy of hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			cp := *hc
			c.http = &cp
		}
	}
}

// WithTimeout sets the timeout of the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithInterceptors adds interceptors that run before the built-in ones.
func WithInterceptors(interceptors ...Interceptor) Option {
	return func(c *Client) {
		c.interceptors = append(c.interceptors, interceptors...)
	}
}

// WithLogger sets the logger used for request logging and credential warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracing instruments outgoing requests with OpenTelemetry.
func WithTracing() Option {
	return func(c *Client) {
		c.tracing = true
	}
}

// New creates an unscoped client. baseURL must be absolute.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL:  u,
		http:     &http.Client{Timeout: defaultTimeout},
		builtins: []Interceptor{RequestID()},
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracing {
		c.http.Transport = otelhttp.NewTransport(c.transport())
	}
	c.logger = c.logger.With(logger.Component("apiclient"))
	return c, nil
}

// NewAuthenticated creates a client that sends the token of provider and
// scopes requests to the store resolver identifies.
func NewAuthenticated(baseURL string, provider credential.Provider, resolver *tenant.Resolver, opts ...Option) (*Client, error) {
	c, err := New(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	c.builtins = append(c.builtins, BearerAuth(provider, c.logger))
	if resolver != nil {
		c.builtins = append(c.builtins, TenantScope(resolver.Identifier))
	}
	return c, nil
}

// NewAnonymous creates a client without credentials, scoped to the store held
// by store. Use it where store is already hydrated.
func NewAnonymous(baseURL string, store *tenant.Store, opts ...Option) (*Client, error) {
	c, err := New(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	if store != nil {
		c.builtins = append(c.builtins, TenantScope(func(context.Context) (string, bool) {
			slug := store.Slug()
			return slug, slug != ""
		}))
	}
	return c, nil
}

func (c *Client) transport() http.RoundTripper {
	if c.http.Transport != nil {
		return c.http.Transport
	}
	return http.DefaultTransport
}

// Do sends a request to path relative to the base URL. A non-nil body is
// encoded as JSON. A non-nil out receives the decoded JSON response.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrEncodeRequest, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	req = chain(req, c.interceptors)
	req = chain(req, c.builtins)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "api request failed",
			logger.Method(method),
			logger.URL(req.URL.Redacted()),
			logger.Error(err),
		)
		return fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "api request",
		logger.Method(method),
		logger.URL(req.URL.Redacted()),
		logger.StatusCode(resp.StatusCode),
		logger.Duration(time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{StatusCode: resp.StatusCode, Method: method, Path: path, Body: data}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s %s: %w", ErrDecodeResponse, method, path, err)
	}
	return nil
}

// Get sends a GET with query and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends body as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put is Post with the PUT method.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Patch is Post with the PATCH method.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete sends a DELETE; out may be nil.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}
