package telemetry

import (
	"context"
	"fmt"

	go_json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const DefaultRedisChannel = "billing:webhooks"

// Redis publishes each event as JSON on a pub/sub channel.
type Redis struct {
	client  *redis.Client
	channel string
}

var _ Tracker = (*Redis)(nil)

func NewRedis(client *redis.Client, channel string) *Redis {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &Redis{client: client, channel: channel}
}

func (r *Redis) TrackWebhookEvent(ctx context.Context, event WebhookEvent) error {
	data, err := go_json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal webhook event: %w", err)
	}

	if err := r.client.Publish(ctx, r.channel, string(data)).Err(); err != nil {
		return fmt.Errorf("publish webhook event: %w", err)
	}

	return nil
}

// Subscribe streams events published on the channel until ctx is done or the
// returned function is called.
func (r *Redis) Subscribe(ctx context.Context) (<-chan WebhookEvent, func(), error) {
	pubsub := r.client.Subscribe(ctx, r.channel)

	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe: %w", err)
	}

	events := make(chan WebhookEvent)
	stop := context.AfterFunc(ctx, func() { _ = pubsub.Close() })

	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var event WebhookEvent
			if err := go_json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}

			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	unsubscribe := func() {
		stop()
		_ = pubsub.Close()
	}

	return events, unsubscribe, nil
}
