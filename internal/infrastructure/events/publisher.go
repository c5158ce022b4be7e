package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const EventNotification = "notification"

type Event struct {
	Type      string    `json:"type"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RedisPublisher appends notifications to a Redis stream for a downstream
// mailer to consume.
type RedisPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisPublisher(client *redis.Client, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream, maxLen: 10000}
}

func (p *RedisPublisher) Publish(ctx context.Context, subject, message string) error {
	event := Event{
		Type:      EventNotification,
		Subject:   subject,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"event": eventJSON,
		},
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// LogPublisher writes notifications to the process log. Used when no Redis
// is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, subject, message string) error {
	log.Printf("notification: %s\n%s", subject, message)
	return nil
}
