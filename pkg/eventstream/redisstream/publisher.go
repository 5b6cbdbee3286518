// Package redisstream publishes session events onto a Redis Stream.
package redisstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/papercomputeco/bridge/pkg/eventstream"
)

// DefaultStream is the stream key used when none is configured.
const DefaultStream = "bridge:sessions"

// Config is the Redis Stream publisher configuration.
type Config struct {
	// Addr is the Redis server address ("host:port").
	Addr string

	// Stream is the stream key events are appended to.
	Stream string

	// MaxLen caps the stream length with approximate trimming. Zero means
	// no trimming.
	MaxLen int64
}

// Publisher appends session events to a Redis Stream with XADD.
type Publisher struct {
	client redis.UniversalClient
	stream string
	maxLen int64
	owned  bool
}

// NewPublisher connects to cfg.Addr and returns a publisher that owns the
// client.
func NewPublisher(ctx context.Context, cfg Config) (*Publisher, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis stream publisher requires an address")
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	p := NewPublisherWithClient(client, cfg.Stream, cfg.MaxLen)
	p.owned = true
	return p, nil
}

// NewPublisherWithClient returns a publisher over an existing client. The
// client is not closed by Close.
func NewPublisherWithClient(client redis.UniversalClient, stream string, maxLen int64) *Publisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &Publisher{client: client, stream: stream, maxLen: maxLen}
}

// PublishSession encodes event as JSON and appends it under the "data" field.
func (p *Publisher) PublishSession(ctx context.Context, event *eventstream.SessionCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilSessionEvent
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal session event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		ID:     "*",
		Values: map[string]any{
			"event_type": event.EventType,
			"message_id": event.Session.ID,
			"data":       data,
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd to %s: %w", p.stream, err)
	}
	return nil
}

// Close closes the client if the publisher created it.
func (p *Publisher) Close() error {
	if p.owned {
		return p.client.Close()
	}
	return nil
}
