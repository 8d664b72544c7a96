package events

import (
	"context"
	"fmt"
	"log/slog"

	go_json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/garrettladley/pulse/internal/xslog"
)

const DefaultChannel = "pulse:events"

var _ Bus = (*RedisBridge)(nil)

// RedisBridge mirrors a local bus onto a Redis pub/sub channel so that
// processes sharing one store see each other's events.
type RedisBridge struct {
	local   *MemoryBus
	client  *redis.Client
	channel string
	origin  string
	logger  *slog.Logger
}

func NewRedisBridge(local *MemoryBus, client *redis.Client, logger *slog.Logger) *RedisBridge {
	return &RedisBridge{
		local:   local,
		client:  client,
		channel: DefaultChannel,
		origin:  uuid.NewString(),
		logger:  logger,
	}
}

func (b *RedisBridge) Subscribe(topics ...Topic) (<-chan Event, func()) {
	return b.local.Subscribe(topics...)
}

// Publish delivers locally first. A Redis failure is returned but the
// local subscribers have already seen the event.
func (b *RedisBridge) Publish(ctx context.Context, e Event) error {
	if err := b.local.Publish(ctx, e); err != nil {
		return err
	}
	if e.Topic == SettingsChanged {
		return nil
	}

	e.Origin = b.origin
	data, err := go_json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, string(data)).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Run relays events published by other processes into the local bus until
// ctx is done.
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer func() { _ = pubsub.Close() }()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			e, remote := b.decode(msg.Payload)
			if !remote {
				continue
			}
			_ = b.local.Publish(ctx, e)
		}
	}
}

func (b *RedisBridge) decode(payload string) (Event, bool) {
	var e Event
	if err := go_json.Unmarshal([]byte(payload), &e); err != nil {
		b.logger.Warn("discarding malformed event", xslog.Error(err))
		return Event{}, false
	}
	return e, e.Origin != b.origin
}
