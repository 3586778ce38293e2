package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aussiebroadwan/meshauth/internal/user/domain"
	"github.com/redis/go-redis/v9"
)

const (
	// payloadField is the stream entry field holding the JSON event body.
	payloadField = "payload"

	// streamMaxLen caps stream growth. Trimming is approximate (XADD with
	// MAXLEN ~) so redis can trim lazily.
	streamMaxLen = 10_000

	publishTimeout = 2 * time.Second
)

// RedisPublisher writes events to redis streams. Entries survive until a
// consumer group processes them, so a consumer that is down during publish
// still receives the event when it comes back.
type RedisPublisher struct {
	client *redis.Client
}

var _ Publisher = (*RedisPublisher)(nil)

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal user registered: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamUserRegistered,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]any{payloadField: body},
	}).Err()
	if err != nil {
		return fmt.Errorf("events: publish user registered: %w", err)
	}

	return nil
}
