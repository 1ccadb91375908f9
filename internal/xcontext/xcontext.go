package xcontext

import "context"

type (
	requestIDKey struct{}
	clientIPKey  struct{}
)

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func GetRequestID(ctx context.Context) (string, bool) {
	return lookup[string](ctx, requestIDKey{})
}

// SetClientIP records the address a request is attributed to for rate
// limiting and logging.
func SetClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func GetClientIP(ctx context.Context) (string, bool) {
	return lookup[string](ctx, clientIPKey{})
}

func lookup[T comparable](ctx context.Context, key any) (T, bool) {
	var zero T
	v, ok := ctx.Value(key).(T)
	if !ok || v == zero {
		return zero, false
	}
	return v, true
}
