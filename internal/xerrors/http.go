package xerrors

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/garrettladley/folio/internal/xcontext"
	"github.com/garrettladley/folio/internal/xhttp"
	"github.com/garrettladley/folio/internal/xslog"
)

// errorResponse is the body of every non-2xx response. The request id lets a
// sender correlate a rejected delivery with our logs.
type errorResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteError logs err and writes it as JSON. Errors that are not *Error become
// a 500 whose message does not leak the cause.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	appErr := As(err)
	if appErr == nil {
		appErr = Internal(WithCause(err))
	}

	logError(ctx, appErr)

	if rl := appErr.RateLimit; rl != nil {
		if rl.RetryAfter > 0 {
			xhttp.SetHeaderRetryAfter(w, rl.RetryAfter)
		}
		if rl.Reason != "" {
			w.Header().Set(xhttp.XRateLimitReason, rl.Reason)
		}
	}

	requestID, _ := xcontext.GetRequestID(ctx)
	xhttp.WriteJSON(w, appErr.StatusCode, errorResponse{
		Message:   appErr.Message,
		RequestID: requestID,
	})
}

// NotFoundHandler and MethodNotAllowedHandler keep router fallbacks on the
// JSON error shape.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(r.Context(), w, NotFound())
}

func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(r.Context(), w, MethodNotAllowed())
}

func logError(ctx context.Context, err *Error) {
	attrs := []slog.Attr{
		xslog.HTTPStatus(err.StatusCode),
		slog.String("message", err.Message),
	}
	if err.Cause != nil {
		attrs = append(attrs, xslog.Error(err.Cause))
	}
	if rl := err.RateLimit; rl != nil {
		attrs = append(attrs, slog.Group("rate_limit",
			slog.Duration("retry_after", rl.RetryAfter),
			slog.String("reason", rl.Reason),
		))
	}

	level, msg := slog.LevelInfo, "error response"
	switch err.StatusCode / 100 {
	case 5:
		level, msg = slog.LevelError, "server error"
	case 4:
		level, msg = slog.LevelWarn, "client error"
	}
	xslog.FromContext(ctx).LogAttrs(ctx, level, msg, attrs...)
}
