package middleware

import (
	"net/http"

	"github.com/garrettladley/folio/internal/xerrors"
	"github.com/garrettladley/folio/internal/xslog"
)

// Recovery turns a handler panic into a JSON 500. http.ErrAbortHandler is
// re-raised so the server can drop the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			ctx := r.Context()
			xslog.FromContext(ctx).ErrorContext(ctx, "panic recovered",
				xslog.RequestGroup(r),
				xslog.ErrorGroupWithStack(rec),
			)
			xerrors.WriteError(ctx, w, xerrors.Internal())
		}()
		next.ServeHTTP(w, r)
	})
}
