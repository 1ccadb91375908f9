package middleware

import (
	"net/http"

	"github.com/garrettladley/folio/internal/xcontext"
	"github.com/garrettladley/folio/internal/xhttp"
)

// ClientIP stores the resolved client address in the request context. A nil
// resolver trusts no proxies, so the connection peer is always used.
func ClientIP(resolver *xhttp.ClientIPResolver) func(http.Handler) http.Handler {
	if resolver == nil {
		resolver = xhttp.NewClientIPResolver(nil)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := xcontext.SetClientIP(r.Context(), resolver.Resolve(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
