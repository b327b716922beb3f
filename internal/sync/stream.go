package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Handler consumes one raw event payload.
type Handler func(payload []byte)

// Stream is the long-lived event channel the engine subscribes to. It is
// owned outside the engine; Subscribe returns a disposer so acquisition
// and release stay scoped to the engine's lifecycle.
type Stream interface {
	Subscribe(ctx context.Context, channel string, h Handler) (func(), error)
	Publish(ctx context.Context, channel string, payload interface{}) error
}

// RedisStream adapts redis pub/sub to the Stream capability.
type RedisStream struct {
	client *redis.Client
}

func NewRedisStream(client *redis.Client) *RedisStream {
	return &RedisStream{client: client}
}

func (s *RedisStream) Subscribe(ctx context.Context, channel string, h Handler) (func(), error) {
	sub := s.client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	go func() {
		for msg := range sub.Channel() {
			h([]byte(msg.Payload))
		}
	}()

	return func() { sub.Close() }, nil
}

func (s *RedisStream) Publish(ctx context.Context, channel string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event for %s: %w", channel, err)
	}
	if err := s.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}
