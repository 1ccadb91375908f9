package billing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/garrettladley/folio/internal/telemetry"
)

type recordingTracker struct {
	mu     sync.Mutex
	events []telemetry.WebhookEvent
	err    error
	panics bool
}

func (r *recordingTracker) TrackWebhookEvent(_ context.Context, event telemetry.WebhookEvent) error {
	if r.panics {
		panic("tracker exploded")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

type failingSecret struct{}

func (failingSecret) WebhookSecret(context.Context) (string, error) {
	return "", errors.New("vault unreachable")
}

type panickingSecret struct{}

func (panickingSecret) WebhookSecret(context.Context) (string, error) {
	panic("nil map")
}

func newTestProcessor(now time.Time, tracker telemetry.Tracker) *Processor {
	return NewProcessor(StaticSecret(testSecret),
		WithClock(func() time.Time { return now }),
		WithTracker(tracker),
	)
}

func TestProcessor_HandleWebhook(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	sign := func(payload string) string { return Sign(testSecret, []byte(payload), now) }

	paid := `{"type":"invoice.paid","data":{"object":{"id":"in_1"}}}`
	product := `{"type":"product.created","data":{"object":{"id":"prod_1"}}}`
	withCustomer := `{"type":"invoice.paid","data":{"object":{"id":"in_42","customer":"cus_abc"}}}`
	expanded := `{"type":"customer.subscription.deleted","data":{"object":{"id":"sub_1","customer":{"id":"cus_xyz"}}}}`

	tests := []struct {
		name       string
		payload    []byte
		signature  string
		want       Outcome
		wantPrefix string
	}{
		{
			name:      "handled event",
			payload:   []byte(paid),
			signature: sign(paid),
			want:      Outcome{Success: true, Message: "invoice.paid: in_1"},
		},
		{
			name:      "unhandled event is acknowledged",
			payload:   []byte(product),
			signature: sign(product),
			want:      Outcome{Success: true, Message: "Unhandled: product.created"},
		},
		{
			name:      "customer id extracted",
			payload:   []byte(withCustomer),
			signature: sign(withCustomer),
			want:      Outcome{Success: true, Message: "invoice.paid: in_42", CustomerID: "cus_abc"},
		},
		{
			name:      "expanded customer",
			payload:   []byte(expanded),
			signature: sign(expanded),
			want:      Outcome{Success: true, Message: "customer.subscription.deleted: sub_1", CustomerID: "cus_xyz"},
		},
		{
			name:      "verified but missing type",
			payload:   []byte(`{}`),
			signature: sign(`{}`),
			want:      Outcome{Success: true, Message: "Unhandled: "},
		},
		{
			name:       "digest mismatch",
			payload:    []byte(paid),
			signature:  "t=100,v1=deadbeef",
			wantPrefix: "Invalid signature",
		},
		{
			name:       "stale but correctly signed",
			payload:    []byte(paid),
			signature:  Sign(testSecret, []byte(paid), now.Add(-time.Hour)),
			wantPrefix: "Invalid signature",
		},
		{
			name:       "malformed header",
			payload:    []byte(paid),
			signature:  "sig",
			wantPrefix: "Invalid signature",
		},
		{
			name:       "nil payload",
			payload:    nil,
			signature:  "sig",
			wantPrefix: "Empty payload",
		},
		{
			name:       "empty payload with valid looking header",
			payload:    []byte{},
			signature:  sign(paid),
			wantPrefix: "Empty payload",
		},
		{
			name:       "missing signature",
			payload:    []byte(`{}`),
			signature:  "",
			wantPrefix: "Missing Stripe-Signature",
		},
		{
			name:       "verified but not an object",
			payload:    []byte(`[1]`),
			signature:  sign(`[1]`),
			wantPrefix: "Invalid payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tracker := &recordingTracker{}
			got := newTestProcessor(now, tracker).HandleWebhook(t.Context(), tt.payload, tt.signature)

			if tt.wantPrefix != "" {
				if got.Success {
					t.Fatalf("HandleWebhook() = %+v, want failure", got)
				}
				if !strings.HasPrefix(got.Message, tt.wantPrefix) {
					t.Errorf("Message = %q, want prefix %q", got.Message, tt.wantPrefix)
				}
				if len(tracker.events) != 0 {
					t.Errorf("tracker received %d events for a rejected delivery", len(tracker.events))
				}
				return
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("HandleWebhook() mismatch (-want +got):\n%s", diff)
			}
			if len(tracker.events) != 1 {
				t.Fatalf("tracker received %d events, want 1", len(tracker.events))
			}
		})
	}
}

func TestProcessor_StaleAndMismatchShareMessage(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	payload := []byte(`{"type":"invoice.paid","data":{"object":{"id":"in_1"}}}`)
	p := newTestProcessor(now, nil)

	stale := p.HandleWebhook(t.Context(), payload, Sign(testSecret, payload, now.Add(-time.Hour)))
	mismatch := p.HandleWebhook(t.Context(), payload, Sign("whsec_other", payload, now))
	malformed := p.HandleWebhook(t.Context(), payload, "t=abc,v1=00")

	if stale != mismatch || mismatch != malformed {
		t.Errorf("outcomes differ: stale=%+v mismatch=%+v malformed=%+v", stale, mismatch, malformed)
	}
}

func TestProcessor_TrackerReceivesReferences(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	payload := `{"id":"evt_9","type":"invoice.payment_failed","livemode":true,"data":{"object":{"id":"in_5","object":"invoice","customer":{"id":"cus_5"},"subscription":"sub_5","payment_intent":"pi_5","lines":{"data":[{"price":{"id":"price_5"}}]}}}}`

	tracker := &recordingTracker{}
	got := newTestProcessor(now, tracker).HandleWebhook(t.Context(), []byte(payload), Sign(testSecret, []byte(payload), now))
	if !got.Success {
		t.Fatalf("HandleWebhook() = %+v", got)
	}

	want := []telemetry.WebhookEvent{{
		EventID:         "evt_9",
		EventType:       "invoice.payment_failed",
		ObjectID:        "in_5",
		CustomerID:      "cus_5",
		SubscriptionID:  "sub_5",
		InvoiceID:       "in_5",
		PaymentIntentID: "pi_5",
		PriceID:         "price_5",
		Handled:         true,
		Livemode:        true,
		ReceivedAt:      now,
	}}
	if diff := cmp.Diff(want, tracker.events); diff != "" {
		t.Errorf("tracked events mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessor_TrackerFailureDoesNotChangeOutcome(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	payload := []byte(`{"type":"invoice.paid","data":{"object":{"id":"in_1","customer":"cus_1"}}}`)
	want := Outcome{Success: true, Message: "invoice.paid: in_1", CustomerID: "cus_1"}

	for name, tracker := range map[string]*recordingTracker{
		"error": {err: errors.New("redis down")},
		"panic": {panics: true},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := newTestProcessor(now, tracker).HandleWebhook(t.Context(), payload, Sign(testSecret, payload, now))
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("HandleWebhook() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProcessor_SecretProviderFailures(t *testing.T) {
	t.Parallel()

	payload := []byte(`{}`)
	header := Sign(testSecret, payload, time.Now())

	got := NewProcessor(failingSecret{}).HandleWebhook(t.Context(), payload, header)
	if got.Success || got.Message != MessageSecretUnavailable {
		t.Errorf("failing provider: HandleWebhook() = %+v", got)
	}

	got = NewProcessor(panickingSecret{}).HandleWebhook(t.Context(), payload, header)
	if got.Success || got.Message != MessageInternalError {
		t.Errorf("panicking provider: HandleWebhook() = %+v", got)
	}

	got = NewProcessor(StaticSecret("")).HandleWebhook(t.Context(), payload, header)
	if got.Success || got.Message != MessageSecretUnavailable {
		t.Errorf("empty static secret: HandleWebhook() = %+v", got)
	}
}

func TestProcessor_WithTolerance(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	payload := []byte(`{"type":"invoice.paid"}`)
	header := Sign(testSecret, payload, now.Add(-10*time.Minute))

	strict := newTestProcessor(now, nil)
	if got := strict.HandleWebhook(t.Context(), payload, header); got.Success {
		t.Errorf("default tolerance accepted a 10 minute old signature")
	}

	lenient := NewProcessor(StaticSecret(testSecret),
		WithClock(func() time.Time { return now }),
		WithTolerance(15*time.Minute),
	)
	if got := lenient.HandleWebhook(t.Context(), payload, header); !got.Success {
		t.Errorf("15 minute tolerance rejected a 10 minute old signature: %+v", got)
	}
}
