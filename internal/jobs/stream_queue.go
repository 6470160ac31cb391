package jobs

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// StreamQueue publishes tasks to a Redis stream drained by the worker binary.
type StreamQueue struct {
	client *redis.Client
	stream string
}

func NewStreamQueue(client *redis.Client, stream string) *StreamQueue {
	return &StreamQueue{client: client, stream: stream}
}

func (q *StreamQueue) Enqueue(ctx context.Context, task Task) error {
	_, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: encodeMessage(task),
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", q.stream, err)
	}
	return nil
}

func encodeMessage(task Task) map[string]any {
	values := map[string]any{"type": string(task.Type)}
	if len(task.Payload) > 0 {
		values["payload"] = string(task.Payload)
	}
	return values
}

func decodeMessage(msg redis.XMessage) (Task, error) {
	typ, ok := msg.Values["type"].(string)
	if !ok || typ == "" {
		return Task{}, fmt.Errorf("message %s has no type", msg.ID)
	}

	task := Task{Type: TaskType(typ)}
	if payload, ok := msg.Values["payload"].(string); ok && payload != "" {
		task.Payload = []byte(payload)
	}
	return task, nil
}
