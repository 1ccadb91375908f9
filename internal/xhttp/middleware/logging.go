package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/garrettladley/folio/internal/xslog"
)

type responseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

func (rw *responseWriter) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

// Logging writes one line per request. Rejected deliveries log at warn and
// server failures at error.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		level := slog.LevelInfo
		switch {
		case wrapped.status >= http.StatusInternalServerError:
			level = slog.LevelError
		case wrapped.status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		ctx := r.Context()
		xslog.FromContext(ctx).LogAttrs(ctx, level, "http request",
			xslog.RequestGroup(r),
			xslog.ResponseGroup(wrapped.status, time.Since(start)),
			slog.Int("bytes", wrapped.bytes),
		)
	})
}
