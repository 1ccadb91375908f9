package middleware

import (
	"log/slog"
	"net/http"

	"github.com/garrettladley/folio/internal/xcontext"
	"github.com/garrettladley/folio/internal/xhttp"
	"github.com/garrettladley/folio/internal/xslog"
)

// Logger injects a logger tagged with the client address and request id.
// Must run after RequestID and ClientIP.
func Logger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := xhttp.GetRequestIP(r)

			attrs := []any{xslog.IP(ip)}
			if id, ok := xcontext.GetRequestID(ctx); ok {
				attrs = append(attrs, xslog.RequestID(id))
			}
			ctx = xslog.WithLogger(ctx, base.With(attrs...))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
