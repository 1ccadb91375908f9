package middleware

import (
	"net/http"

	"github.com/garrettladley/folio/internal/xhttp"
)

// SecurityHeaders sets the headers for a JSON-only API. Nothing it serves is
// meant to be framed, rendered or cached.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set(xhttp.XContentTypeOpts, "nosniff")
		h.Set(xhttp.XFrameOpts, "DENY")
		h.Set(xhttp.ContentSecurity, "default-src 'none'; frame-ancestors 'none'")
		h.Set(xhttp.ReferrerPolicy, "no-referrer")
		h.Set(xhttp.CacheControl, "no-store")
		next.ServeHTTP(w, r)
	})
}
