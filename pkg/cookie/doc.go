// Package cookie reads and writes HTTP cookies with shared defaults and
// optional HMAC signing.
//
// A Manager holds the defaults (path, domain, max age, secure, http-only,
// same-site) and, when secrets are configured, signs values with HMAC-SHA256.
// The first secret signs; every secret verifies, which allows key rotation.
//
// A Jar binds a Manager to one request/response pair. Values written through
// the jar are visible to later reads within the same request, before the
// browser ever sends them back. Manager.Middleware installs a fresh jar into
// every request context, so server code reads and writes cookies of the request
// it is serving and never shares state between requests:
//
//	m, err := cookie.NewFromConfig(cfg)
//	router.Use(m.Middleware)
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		jar, _ := cookie.JarFromContext(r.Context())
//		_ = jar.Set("store", "acme", cookie.WithSecure(true))
//		v, _ := jar.Get("store") // "acme"
//	}
package cookie
