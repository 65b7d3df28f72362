// Package events publishes domain events to Redis Streams.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher emits a message on a topic. Delivery order is guaranteed for
// messages sharing a partition key.
type Publisher interface {
	Publish(ctx context.Context, topic string, message any, partitionKey string) error
}

// StreamPublisher appends events to a Redis Stream per topic. A stream is
// append-ordered, so per-partition-key ordering holds for every consumer
// reading the stream in sequence.
type StreamPublisher struct {
	client *redis.Client
	maxLen int64
}

// NewStreamPublisher constructs a publisher. maxLen caps stream length
// (approximate trimming); zero disables trimming.
func NewStreamPublisher(client *redis.Client, maxLen int64) *StreamPublisher {
	return &StreamPublisher{client: client, maxLen: maxLen}
}

// Publish serialises the message and appends it to the topic stream.
func (p *StreamPublisher) Publish(ctx context.Context, topic string, message any, partitionKey string) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", topic, err)
	}
	args := &redis.XAddArgs{
		Stream: topic,
		Values: map[string]any{
			"partition_key": partitionKey,
			"payload":       payload,
			"published_at":  time.Now().UTC().Format(time.RFC3339Nano),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("events: publish %s: %w", topic, err)
	}
	return nil
}
