package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/meshauth/internal/user/domain"
	"github.com/aussiebroadwan/meshauth/internal/user/events"
	"github.com/redis/go-redis/v9"
)

const (
	// readBlock is how long a single XREADGROUP call waits for new entries.
	// Short enough that ctx cancellation is noticed promptly.
	readBlock = 5 * time.Second

	readBatch = 16
)

// Consumer reads registration events from the bus and turns them into
// verification mail. Delivery is at-least-once: a crash between send and
// ack redelivers, and sending the same mail twice is harmless.
type Consumer struct {
	Client *redis.Client
	Group  string
	Name   string // consumer name within the group, typically the hostname
	Mailer Mailer
	Logger *slog.Logger
}

// Run consumes until ctx is cancelled. It creates the consumer group on
// first use.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		return err
	}

	c.Logger.Info("consumer started",
		slog.String("stream", events.StreamUserRegistered),
		slog.String("group", c.Group))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		streams, err := c.Client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.Group,
			Consumer: c.Name,
			Streams:  []string{events.StreamUserRegistered, ">"},
			Count:    readBatch,
			Block:    readBlock,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // block timed out, nothing new
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Logger.Error("read from stream failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				c.process(ctx, msg)
			}
		}
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.Client.XGroupCreateMkStream(ctx, events.StreamUserRegistered, c.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("notification: create consumer group: %w", err)
	}
	return nil
}

// process handles one entry and acks it. Undecodable entries are acked too:
// redelivering a poison message forever helps nobody.
func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	if err := c.handle(ctx, msg.Values); err != nil {
		c.Logger.Error("failed to handle registration event",
			slog.String("id", msg.ID),
			slog.String("error", err.Error()))

		var malformed *malformedEventError
		if !errors.As(err, &malformed) {
			// Transient failure: leave it pending for redelivery.
			return
		}
	}

	if err := c.Client.XAck(ctx, events.StreamUserRegistered, c.Group, msg.ID).Err(); err != nil {
		c.Logger.Error("failed to ack event", slog.String("id", msg.ID), "error", err)
	}
}

type malformedEventError struct {
	cause error
}

func (e *malformedEventError) Error() string {
	return "notification: malformed event: " + e.cause.Error()
}

func (e *malformedEventError) Unwrap() error { return e.cause }

// handle decodes and dispatches a single stream entry.
func (c *Consumer) handle(ctx context.Context, values map[string]any) error {
	raw, ok := values["payload"]
	if !ok {
		return &malformedEventError{cause: errors.New("missing payload field")}
	}

	payload, ok := raw.(string)
	if !ok {
		return &malformedEventError{cause: fmt.Errorf("payload has type %T, want string", raw)}
	}

	var event domain.UserRegisteredEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return &malformedEventError{cause: err}
	}
	if event.Email == "" || event.VerificationToken == "" {
		return &malformedEventError{cause: errors.New("missing email or verification token")}
	}

	if err := c.Mailer.SendVerificationMail(ctx, VerificationMail{
		To:       event.Email,
		Username: event.UserName,
		Token:    event.VerificationToken,
	}); err != nil {
		return fmt.Errorf("notification: send verification mail: %w", err)
	}

	c.Logger.Info("verification mail dispatched", slog.String("user_id", event.UserID))
	return nil
}
