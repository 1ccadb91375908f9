package telemetry

import (
	"context"
	"log/slog"

	"github.com/garrettladley/folio/internal/xslog"
)

// Log writes each event as a structured log line on the context logger.
type Log struct {
	Level slog.Level
}

var _ Tracker = Log{}

func (l Log) TrackWebhookEvent(ctx context.Context, event WebhookEvent) error {
	attrs := []slog.Attr{
		xslog.EventType(event.EventType),
		xslog.ObjectID(event.ObjectID),
		slog.Bool("handled", event.Handled),
		slog.Bool("livemode", event.Livemode),
	}
	if event.EventID != "" {
		attrs = append(attrs, xslog.EventID(event.EventID))
	}
	if event.CustomerID != "" {
		attrs = append(attrs, xslog.CustomerID(event.CustomerID))
	}
	if event.SubscriptionID != "" {
		attrs = append(attrs, slog.String("subscription_id", event.SubscriptionID))
	}
	if event.InvoiceID != "" {
		attrs = append(attrs, slog.String("invoice_id", event.InvoiceID))
	}
	if event.PaymentIntentID != "" {
		attrs = append(attrs, slog.String("payment_intent_id", event.PaymentIntentID))
	}
	if event.PriceID != "" {
		attrs = append(attrs, slog.String("price_id", event.PriceID))
	}

	xslog.FromContext(ctx).LogAttrs(ctx, l.Level, "webhook event", attrs...)
	return nil
}
