package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garrettladley/folio/internal/xslog"
	"golang.org/x/sync/errgroup"
)

var ErrDropped = errors.New("telemetry queue full, event dropped")

const (
	DefaultConcurrency = 8
	DefaultTimeout     = 5 * time.Second
)

// Async delivers events to the wrapped tracker in the background. At most
// concurrency deliveries run at once; beyond that events are dropped rather
// than blocking the caller.
type Async struct {
	next    Tracker
	timeout time.Duration
	group   errgroup.Group
}

var _ Tracker = (*Async)(nil)

func NewAsync(next Tracker, concurrency int, timeout time.Duration) *Async {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	a := &Async{next: next, timeout: timeout}
	a.group.SetLimit(concurrency)
	return a
}

// TrackWebhookEvent schedules delivery and returns immediately. The request
// context's values are kept but its cancellation is not.
func (a *Async) TrackWebhookEvent(ctx context.Context, event WebhookEvent) error {
	logger := xslog.FromContext(ctx)
	detached := context.WithoutCancel(ctx)

	started := a.group.TryGo(func() error {
		ctx, cancel := context.WithTimeout(detached, a.timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "telemetry tracker panicked", xslog.ErrorGroupWithStack(r))
			}
		}()

		if err := a.next.TrackWebhookEvent(ctx, event); err != nil {
			logger.WarnContext(ctx, "failed to deliver telemetry",
				xslog.Error(err),
				xslog.EventType(event.EventType),
			)
		}
		return nil
	})
	if !started {
		return fmt.Errorf("%w: %s", ErrDropped, event.EventType)
	}
	return nil
}

// Close waits for in-flight deliveries.
func (a *Async) Close() error {
	return a.group.Wait()
}
