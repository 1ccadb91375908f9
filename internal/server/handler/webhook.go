package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/garrettladley/folio/internal/service/billing"
	"github.com/garrettladley/folio/internal/xerrors"
	"github.com/garrettladley/folio/internal/xhttp"
	"github.com/garrettladley/folio/internal/xslog"
)

const (
	HeaderStripeSignature = "Stripe-Signature"

	DefaultMaxBodyBytes = 64 * 1024
)

type Webhook struct {
	service      billing.Service
	maxBodyBytes int64
}

func NewWebhook(service billing.Service, maxBodyBytes int64) *Webhook {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Webhook{service: service, maxBodyBytes: maxBodyBytes}
}

// HandleStripe handles POST /webhooks/stripe requests.
// The body is passed to the billing service exactly as received.
func (h *Webhook) HandleStripe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := xslog.FromContext(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			xerrors.WriteError(ctx, w, xerrors.PayloadTooLarge(xerrors.WithMessage("payload too large")))
			return
		}
		logger.ErrorContext(ctx, "failed to read webhook body", xslog.Error(err))
		xerrors.WriteError(ctx, w, xerrors.BadRequest(xerrors.WithMessage("failed to read request body")))
		return
	}

	outcome := h.service.HandleWebhook(ctx, body, r.Header.Get(HeaderStripeSignature))
	if !outcome.Success {
		xerrors.WriteError(ctx, w, xerrors.BadRequest(xerrors.WithMessage(outcome.Message)))
		return
	}

	xhttp.WriteOK(w, outcome)
}
