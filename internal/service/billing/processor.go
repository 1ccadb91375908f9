package billing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/garrettladley/folio/internal/telemetry"
	"github.com/garrettladley/folio/internal/xslog"
)

type Processor struct {
	secrets   SecretProvider
	tracker   telemetry.Tracker
	tolerance time.Duration
	now       func() time.Time
}

var _ Service = (*Processor)(nil)

type Option func(*Processor)

// WithTolerance overrides DefaultTolerance.
func WithTolerance(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.tolerance = d
		}
	}
}

func WithTracker(t telemetry.Tracker) Option {
	return func(p *Processor) {
		if t != nil {
			p.tracker = t
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

func NewProcessor(secrets SecretProvider, opts ...Option) *Processor {
	p := &Processor{
		secrets:   secrets,
		tracker:   telemetry.Nop{},
		tolerance: DefaultTolerance,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) HandleWebhook(ctx context.Context, payload []byte, signature string) (outcome Outcome) {
	logger := xslog.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "panic while processing webhook", xslog.ErrorGroupWithStack(r))
			outcome = Outcome{Success: false, Message: MessageInternalError}
		}
	}()

	if len(payload) == 0 {
		return Outcome{Success: false, Message: MessageEmptyPayload}
	}
	if signature == "" {
		return Outcome{Success: false, Message: MessageMissingSignature}
	}

	secret, err := p.secrets.WebhookSecret(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load webhook secret", xslog.Error(err))
		return Outcome{Success: false, Message: MessageSecretUnavailable}
	}

	signedAt, err := Verify(secret, payload, signature, p.now(), p.tolerance)
	if err != nil {
		// the specific kind is only logged; callers always see the same message
		logger.WarnContext(ctx, "webhook signature rejected",
			xslog.Error(err),
			xslog.Tolerance(p.tolerance),
		)
		return Outcome{Success: false, Message: messageFor(err)}
	}

	event, err := ParseEnvelope(payload)
	if err != nil {
		logger.WarnContext(ctx, "verified webhook has malformed envelope", xslog.Error(err))
		return Outcome{Success: false, Message: MessageInvalidPayload}
	}

	event.CustomerID = ExtractCustomerID(event.Object)

	route := RouteEvent(event.Type, event.ObjectID)

	ctx = xslog.WithAttrs(ctx, xslog.EventGroup(event.Type, event.ID, event.ObjectID))
	xslog.FromContext(ctx).InfoContext(ctx, "processed webhook",
		xslog.CustomerID(event.CustomerID),
		xslog.SignedAt(signedAt),
		slog.Bool("handled", route.Handled),
	)

	p.report(ctx, event, route)

	return Outcome{Success: true, Message: route.Message, CustomerID: event.CustomerID}
}

// report hands the event to the tracker. Tracker failures never change the outcome.
func (p *Processor) report(ctx context.Context, event Event, route Route) {
	logger := xslog.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "telemetry tracker panicked", xslog.ErrorGroupWithStack(r))
		}
	}()

	refs := ExtractReferences(event.Object)
	if refs.CustomerID == "" {
		refs.CustomerID = event.CustomerID
	}

	err := p.tracker.TrackWebhookEvent(ctx, telemetry.WebhookEvent{
		EventID:         event.ID,
		EventType:       event.Type,
		ObjectID:        event.ObjectID,
		CustomerID:      refs.CustomerID,
		SubscriptionID:  refs.SubscriptionID,
		InvoiceID:       refs.InvoiceID,
		PaymentIntentID: refs.PaymentIntentID,
		PriceID:         refs.PriceID,
		Handled:         route.Handled,
		Livemode:        event.Livemode,
		ReceivedAt:      p.now(),
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to track webhook event",
			xslog.Error(err),
			xslog.EventType(event.Type),
		)
	}
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, ErrEmptyPayload):
		return MessageEmptyPayload
	case errors.Is(err, ErrMissingSignature):
		return MessageMissingSignature
	default:
		return MessageInvalidSignature
	}
}
