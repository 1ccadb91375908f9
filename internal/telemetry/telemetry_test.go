package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/garrettladley/folio/internal/xslog"
)

type recorder struct {
	mu     sync.Mutex
	events []WebhookEvent
	err    error
}

func (r *recorder) TrackWebhookEvent(_ context.Context, event WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recorder) recorded() []WebhookEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]WebhookEvent(nil), r.events...)
}

var sampleEvent = WebhookEvent{
	EventID:    "evt_1",
	EventType:  "invoice.paid",
	ObjectID:   "in_1",
	CustomerID: "cus_1",
	InvoiceID:  "in_1",
	Handled:    true,
	ReceivedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
}

func TestMulti(t *testing.T) {
	t.Parallel()

	ok := &recorder{}
	failing := &recorder{err: errors.New("sink down")}
	after := &recorder{}

	err := Multi{ok, failing, after}.TrackWebhookEvent(context.Background(), sampleEvent)

	if err == nil || !strings.Contains(err.Error(), "sink down") {
		t.Fatalf("err = %v, want joined sink error", err)
	}
	for name, r := range map[string]*recorder{"first": ok, "failing": failing, "after": after} {
		if diff := cmp.Diff([]WebhookEvent{sampleEvent}, r.recorded()); diff != "" {
			t.Errorf("%s tracker mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestMulti_Empty(t *testing.T) {
	t.Parallel()

	if err := (Multi{}).TrackWebhookEvent(context.Background(), sampleEvent); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}

func TestLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := xslog.WithLogger(context.Background(), logger)

	if err := (Log{Level: slog.LevelInfo}).TrackWebhookEvent(ctx, sampleEvent); err != nil {
		t.Fatalf("err = %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"event_type":"invoice.paid"`, `"customer_id":"cus_1"`, `"invoice_id":"in_1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %s missing %s", out, want)
		}
	}
	if strings.Contains(out, "subscription_id") {
		t.Errorf("log line %s should omit empty subscription_id", out)
	}
}

type blockingTracker struct {
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingTracker) TrackWebhookEvent(ctx context.Context, _ WebhookEvent) error {
	b.calls.Add(1)
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestAsync_Delivers(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	a := NewAsync(r, 2, time.Second)

	for range 3 {
		// a full queue drops, so retry until accepted
		for a.TrackWebhookEvent(context.Background(), sampleEvent) != nil {
			time.Sleep(time.Millisecond)
		}
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := len(r.recorded()); got != 3 {
		t.Errorf("delivered %d events, want 3", got)
	}
}

func TestAsync_DropsWhenFull(t *testing.T) {
	t.Parallel()

	b := &blockingTracker{release: make(chan struct{})}
	a := NewAsync(b, 1, time.Second)

	if err := a.TrackWebhookEvent(context.Background(), sampleEvent); err != nil {
		t.Fatalf("first event: %v", err)
	}
	err := a.TrackWebhookEvent(context.Background(), sampleEvent)
	if !errors.Is(err, ErrDropped) {
		t.Errorf("second event err = %v, want ErrDropped", err)
	}

	close(b.release)
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := b.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestAsync_DetachedFromRequestContext(t *testing.T) {
	t.Parallel()

	b := &blockingTracker{release: make(chan struct{})}
	a := NewAsync(b, 1, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	if err := a.TrackWebhookEvent(ctx, sampleEvent); err != nil {
		t.Fatalf("TrackWebhookEvent: %v", err)
	}
	cancel()

	// the delivery must still be waiting on release, not on the canceled request
	time.Sleep(20 * time.Millisecond)
	close(b.release)
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestAsync_TimeoutAndPanicContained(t *testing.T) {
	t.Parallel()

	a := NewAsync(panicTracker{}, 1, 10*time.Millisecond)
	if err := a.TrackWebhookEvent(context.Background(), sampleEvent); err != nil {
		t.Fatalf("TrackWebhookEvent: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	slow := NewAsync(&blockingTracker{release: make(chan struct{})}, 1, 10*time.Millisecond)
	if err := slow.TrackWebhookEvent(context.Background(), sampleEvent); err != nil {
		t.Fatalf("TrackWebhookEvent: %v", err)
	}
	done := make(chan struct{})
	go func() {
		_ = slow.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery did not time out")
	}
}

type panicTracker struct{}

func (panicTracker) TrackWebhookEvent(context.Context, WebhookEvent) error {
	panic("tracker bug")
}
