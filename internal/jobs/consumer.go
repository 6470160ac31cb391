package jobs

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type ConsumerConfig struct {
	Stream        string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
}

// Consumer reads a Redis stream through a consumer group and hands each
// message to a Handler. Messages left pending by a crashed consumer are
// claimed once they have idled for ClaimInterval.
type Consumer struct {
	client  *redis.Client
	cfg     ConsumerConfig
	logger  zerolog.Logger
	handler Handler
}

func NewConsumer(client *redis.Client, cfg ConsumerConfig, logger zerolog.Logger, handler Handler) *Consumer {
	if cfg.ClaimInterval <= 0 {
		cfg.ClaimInterval = 10 * time.Second
	}
	return &Consumer{
		client:  client,
		cfg:     cfg,
		logger:  logger,
		handler: handler,
	}
}

// EnsureGroup creates the stream and consumer group when missing.
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.cfg.Stream, c.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	if err := c.EnsureGroup(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(c.cfg.ClaimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := c.read(ctx); err != nil && !errors.Is(err, context.Canceled) {
				c.logger.Error().Err(err).Msg("stream read error")
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(2 * time.Second):
				}
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.claimStalled(ctx); err != nil {
				c.logger.Warn().Err(err).Msg("claim stalled messages failed")
			}
		default:
		}
	}
}

func (c *Consumer) read(ctx context.Context) error {
	result, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.cfg.Group,
		Consumer: c.cfg.Consumer,
		Streams:  []string{c.cfg.Stream, ">"},
		Count:    10,
		Block:    5 * time.Second,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	for _, stream := range result {
		for _, msg := range stream.Messages {
			c.process(ctx, msg)
		}
	}
	return nil
}

func (c *Consumer) claimStalled(ctx context.Context) error {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.cfg.Stream,
		Group:  c.cfg.Group,
		Start:  "-",
		End:    "+",
		Count:  10,
	}).Result()
	if err != nil {
		return err
	}

	for _, entry := range pending {
		if entry.Idle < c.cfg.ClaimInterval {
			continue
		}
		msgs, err := c.client.XClaim(ctx, &redis.XClaimArgs{
			Stream:   c.cfg.Stream,
			Group:    c.cfg.Group,
			Consumer: c.cfg.Consumer,
			MinIdle:  c.cfg.ClaimInterval,
			Messages: []string{entry.ID},
		}).Result()
		if err != nil {
			c.logger.Error().Err(err).Str("message_id", entry.ID).Msg("claim error")
			continue
		}
		for _, msg := range msgs {
			c.process(ctx, msg)
		}
	}
	return nil
}

// process acks handled messages and malformed ones; handler failures stay
// pending so they can be claimed again.
func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	task, err := decodeMessage(msg)
	if err != nil {
		c.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("dropping malformed message")
		c.ack(ctx, msg.ID)
		return
	}

	if err := c.handler.Handle(ctx, task); err != nil {
		c.logger.Error().
			Err(err).
			Str("message_id", msg.ID).
			Str("task", string(task.Type)).
			Msg("handle message failed")
		return
	}
	c.ack(ctx, msg.ID)
}

func (c *Consumer) ack(ctx context.Context, id string) {
	if err := c.client.XAck(ctx, c.cfg.Stream, c.cfg.Group, id).Err(); err != nil {
		c.logger.Error().Err(err).Str("message_id", id).Msg("ack failed")
	}
}
