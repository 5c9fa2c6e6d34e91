package credential

import (
	"context"
	"net/http"
	"strings"
)

type tokenKey struct{}

// WithToken stores the caller's token in ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token stored by WithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

// FromIncomingRequest forwards the token of the request being served.
func FromIncomingRequest() Provider {
	return ProviderFunc(func(ctx context.Context) (string, error) {
		if token, ok := TokenFromContext(ctx); ok {
			return token, nil
		}
		return "", ErrNoSession
	})
}

// Extractor reads a token from an incoming request.
type Extractor func(r *http.Request) (string, bool)

// BearerExtractor reads "Authorization: Bearer <token>".
func BearerExtractor() Extractor {
	return func(r *http.Request) (string, bool) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return "", false
		}
		token = strings.TrimSpace(token)
		return token, token != ""
	}
}

// CookieExtractor reads the session token from the named cookie.
func CookieExtractor(name string) Extractor {
	return func(r *http.Request) (string, bool) {
		c, err := r.Cookie(name)
		if err != nil || c.Value == "" {
			return "", false
		}
		return c.Value, true
	}
}

// Middleware stores the first token found by extractors in the request
// context. With no extractors it uses BearerExtractor.
func Middleware(extractors ...Extractor) func(http.Handler) http.Handler {
	if len(extractors) == 0 {
		extractors = []Extractor{BearerExtractor()}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, extract := range extractors {
				if token, ok := extract(r); ok {
					r = r.WithContext(WithToken(r.Context(), token))
					break
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
