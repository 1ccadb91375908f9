package xslog

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/garrettladley/folio/internal/version"
	"github.com/garrettladley/folio/internal/xhttp"
)

const (
	keyError = "error"
)

func Error(err error) slog.Attr {
	return slog.String(keyError, err.Error())
}

func RequestID(requestID string) slog.Attr {
	const requestIDKey = "request_id"
	return slog.String(requestIDKey, requestID)
}

func Stack() slog.Attr {
	const stackKey = "stack"
	return slog.String(stackKey, string(debug.Stack()))
}

func HTTPStatus(status int) slog.Attr {
	const statusKey = "status"
	return slog.Int(statusKey, status)
}

func Duration(duration time.Duration) slog.Attr {
	const durationKey = "duration"
	return slog.Duration(durationKey, duration)
}

func RequestMethod(r *http.Request) slog.Attr {
	const methodKey = "method"
	return slog.String(methodKey, r.Method)
}

func RequestPath(r *http.Request) slog.Attr {
	const pathKey = "path"
	return slog.String(pathKey, r.URL.Path)
}

func IP(ip string) slog.Attr {
	const ipKey = "ip"
	return slog.String(ipKey, ip)
}

func RequestIP(r *http.Request) slog.Attr {
	return IP(xhttp.GetRequestIP(r))
}

func Version() slog.Attr {
	const versionKey = "version"
	return slog.String(versionKey, version.Get())
}

func EventType(eventType string) slog.Attr {
	const eventTypeKey = "event_type"
	return slog.String(eventTypeKey, eventType)
}

func EventID(id string) slog.Attr {
	const eventIDKey = "event_id"
	return slog.String(eventIDKey, id)
}

func ObjectID(id string) slog.Attr {
	const objectIDKey = "object_id"
	return slog.String(objectIDKey, id)
}

func CustomerID(id string) slog.Attr {
	const customerIDKey = "customer_id"
	return slog.String(customerIDKey, id)
}

func SignedAt(t time.Time) slog.Attr {
	const signedAtKey = "signed_at"
	return slog.Time(signedAtKey, t)
}

func Tolerance(d time.Duration) slog.Attr {
	const toleranceKey = "tolerance"
	return slog.Duration(toleranceKey, d)
}

// SecretHint identifies a secret in logs without revealing it.
func SecretHint(secret string) slog.Attr {
	const secretKey = "webhook_secret"
	const visible = 4
	hint := "<empty>"
	if len(secret) > visible*2 {
		hint = secret[:visible] + "…"
	} else if secret != "" {
		hint = "…"
	}
	return slog.Group(secretKey,
		slog.String("hint", hint),
		slog.Int("length", len(secret)),
	)
}
