package middleware

import (
	"net/http"

	"github.com/garrettladley/folio/internal/xcontext"
	"github.com/garrettladley/folio/internal/xhttp"
	"github.com/google/uuid"
)

type RequestIDMiddleware struct {
	IDFunc func(*http.Request) string
}

func newRequestID(_ *http.Request) string {
	return uuid.New().String()
}

type RequestIDOption func(*RequestIDMiddleware)

// WithIncomingRequestID reuses a well-formed X-Request-ID sent by the caller.
func WithIncomingRequestID() RequestIDOption {
	return func(m *RequestIDMiddleware) {
		m.IDFunc = func(r *http.Request) string {
			if id, err := uuid.Parse(r.Header.Get(xhttp.XRequestID)); err == nil {
				return id.String()
			}
			return newRequestID(r)
		}
	}
}

func RequestID(opts ...RequestIDOption) func(http.Handler) http.Handler {
	middleware := &RequestIDMiddleware{IDFunc: newRequestID}

	for _, opt := range opts {
		opt(middleware)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := middleware.IDFunc(r)
			ctx := xcontext.SetRequestID(r.Context(), id)
			xhttp.SetHeaderRequestID(w, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
