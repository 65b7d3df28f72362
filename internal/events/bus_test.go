package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	PeriodID int64  `json:"period_id"`
	Status   string `json:"status"`
}

func newTestPublisher(t *testing.T) (*StreamPublisher, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStreamPublisher(client, 0), client
}

func TestStreamPublisherAppendsInOrder(t *testing.T) {
	publisher, client := newTestPublisher(t)
	ctx := context.Background()

	require.NoError(t, publisher.Publish(ctx, "booking.period.updated", testEvent{PeriodID: 1, Status: "UNPAID"}, "42"))
	require.NoError(t, publisher.Publish(ctx, "booking.period.updated", testEvent{PeriodID: 1, Status: "PAID"}, "42"))

	entries, err := client.XRange(ctx, "booking.period.updated", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var first, second testEvent
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["payload"].(string)), &first))
	require.NoError(t, json.Unmarshal([]byte(entries[1].Values["payload"].(string)), &second))
	require.Equal(t, "UNPAID", first.Status)
	require.Equal(t, "PAID", second.Status)
	require.Equal(t, "42", entries[0].Values["partition_key"])
}

func TestStreamPublisherSeparatesTopics(t *testing.T) {
	publisher, client := newTestPublisher(t)
	ctx := context.Background()

	require.NoError(t, publisher.Publish(ctx, "topic.a", testEvent{PeriodID: 1}, "1"))
	require.NoError(t, publisher.Publish(ctx, "topic.b", testEvent{PeriodID: 2}, "2"))

	a, err := client.XLen(ctx, "topic.a").Result()
	require.NoError(t, err)
	b, err := client.XLen(ctx, "topic.b").Result()
	require.NoError(t, err)
	require.EqualValues(t, 1, a)
	require.EqualValues(t, 1, b)
}

func TestStreamPublisherMarshalsTimestamps(t *testing.T) {
	publisher, client := newTestPublisher(t)
	ctx := context.Background()

	require.NoError(t, publisher.Publish(ctx, "topic.a", testEvent{PeriodID: 1}, "1"))

	entries, err := client.XRange(ctx, "topic.a", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotEmpty(t, entries[0].Values["published_at"])
}
