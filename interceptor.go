package rpcchan

import "context"

// CallInfo describes the in-flight call an interceptor chain is wrapping:
// the dotted method path and the (already validated, callback-resolved)
// argument tuple.
type CallInfo struct {
	Method string
	Args   []any
}

// Next invokes the remainder of the interceptor chain (or, for the last
// interceptor, the handler itself) and returns its result.
type Next func(ctx context.Context) (any, error)

// Interceptor wraps a dispatched call, the same onion shape as
// middleware.Middleware in the reference RPC server: call next(ctx) to
// continue the chain, or return before calling it to short-circuit.
type Interceptor func(ctx context.Context, info CallInfo, next Next) (any, error)

// chain composes interceptors so the first one wraps everything else:
// i0(ctx, () => i1(ctx, () => ... handler(args))).
func chain(interceptors []Interceptor, info CallInfo, handler func(ctx context.Context) (any, error)) Next {
	next := handler
	for i := len(interceptors) - 1; i >= 0; i-- {
		ic := interceptors[i]
		prev := next
		next = func(ctx context.Context) (any, error) {
			return ic(ctx, info, prev)
		}
	}
	return next
}
