package isomorphic

import "context"

// Func combines a client and a server implementation into one callable.
// The implementation is chosen on every invocation from the side recorded in ctx.
// Panics if either implementation is nil.
func Func[T any](client, server func(context.Context) T) func(context.Context) T {
	if client == nil || server == nil {
		panic("isomorphic: nil implementation")
	}
	return func(ctx context.Context) T {
		if SideOf(ctx) == Server {
			return server(ctx)
		}
		return client(ctx)
	}
}

// Func2 is Func for operations returning two values, such as (value, ok) or (value, error).
func Func2[T, U any](client, server func(context.Context) (T, U)) func(context.Context) (T, U) {
	if client == nil || server == nil {
		panic("isomorphic: nil implementation")
	}
	return func(ctx context.Context) (T, U) {
		if SideOf(ctx) == Server {
			return server(ctx)
		}
		return client(ctx)
	}
}
