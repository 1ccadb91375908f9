package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// WebhookEvent is the telemetry record for one verified delivery. Empty id
// fields mean the reference could not be extracted.
type WebhookEvent struct {
	EventID         string    `json:"event_id,omitempty"`
	EventType       string    `json:"event_type"`
	ObjectID        string    `json:"object_id"`
	CustomerID      string    `json:"customer_id,omitempty"`
	SubscriptionID  string    `json:"subscription_id,omitempty"`
	InvoiceID       string    `json:"invoice_id,omitempty"`
	PaymentIntentID string    `json:"payment_intent_id,omitempty"`
	PriceID         string    `json:"price_id,omitempty"`
	Handled         bool      `json:"handled"`
	Livemode        bool      `json:"livemode"`
	ReceivedAt      time.Time `json:"received_at"`
}

type Tracker interface {
	TrackWebhookEvent(ctx context.Context, event WebhookEvent) error
}

// Nop discards every event.
type Nop struct{}

var _ Tracker = Nop{}

func (Nop) TrackWebhookEvent(context.Context, WebhookEvent) error { return nil }

// Multi forwards each event to every tracker and joins their errors.
type Multi []Tracker

var _ Tracker = Multi(nil)

func (m Multi) TrackWebhookEvent(ctx context.Context, event WebhookEvent) error {
	var errs []error
	for _, t := range m {
		if err := t.TrackWebhookEvent(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", t, err))
		}
	}
	return errors.Join(errs...)
}

// nullable maps "" to a SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
