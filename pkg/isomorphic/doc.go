// Package isomorphic selects between a client-side and a server-side
// implementation of the same operation at call time.
//
// The execution side is an explicit value carried by context.Context. Server
// request handling marks its contexts with ServerMiddleware (or WithSide), and
// client bootstrap code uses WithSide(ctx, Client). An unmarked context is
// treated as the client side.
//
// # Usage
//
//	identifier := isomorphic.Func2(
//		func(ctx context.Context) (string, bool) { return store.Slug(), store.Slug() != "" },
//		func(ctx context.Context) (string, bool) { return slugFromCookie(ctx) },
//	)
//
//	// Server: router.Use(isomorphic.ServerMiddleware)
//	id, ok := identifier(r.Context())
//
// The side is looked up on every call and never cached, so one process can
// serve both sides for different concurrent callers.
package isomorphic
