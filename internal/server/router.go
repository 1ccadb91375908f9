package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/garrettladley/folio/internal/server/handler"
	"github.com/garrettladley/folio/internal/service/billing"
	"github.com/garrettladley/folio/internal/storage"
	"github.com/garrettladley/folio/internal/xerrors"
	"github.com/garrettladley/folio/internal/xhttp"
	"github.com/garrettladley/folio/internal/xhttp/middleware"
)

type Deps struct {
	Logger       *slog.Logger
	Billing      billing.Service
	Limiter      storage.RateLimiter
	MaxBodyBytes int64
	// ClientIP decides which address a request is attributed to. Nil trusts
	// no proxies.
	ClientIP *xhttp.ClientIPResolver
}

// NewRouter mounts the public routes. The webhook route is unauthenticated
// and relies on signature verification plus per-IP rate limiting.
func NewRouter(deps Deps) http.Handler {
	webhookHandler := handler.NewWebhook(deps.Billing, deps.MaxBodyBytes)

	r := chi.NewRouter()
	r.NotFound(xerrors.NotFoundHandler)
	r.MethodNotAllowed(xerrors.MethodNotAllowedHandler)
	r.Use(
		middleware.RequestID(middleware.WithIncomingRequestID()),
		middleware.ClientIP(deps.ClientIP),
		middleware.Logger(deps.Logger),
		middleware.Recovery,
		middleware.Logging,
		middleware.SecurityHeaders,
	)

	r.Get("/health", handler.HandleHealth)

	var webhookMiddleware []func(http.Handler) http.Handler
	if deps.Limiter != nil {
		webhookMiddleware = append(webhookMiddleware, middleware.RateLimit(deps.Limiter))
	}
	r.Method(http.MethodPost, "/webhooks/stripe",
		middleware.Chain(http.HandlerFunc(webhookHandler.HandleStripe), webhookMiddleware...),
	)

	return r
}
