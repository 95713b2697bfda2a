package events

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisPublisher publishes JSON envelopes on a redis pub/sub channel
type RedisPublisher struct {
	rdb     *goredis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisPublisher creates a publisher on an already connected client
func NewRedisPublisher(rdb *goredis.Client, channel string, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel, logger: logger}
}

func (p *RedisPublisher) PublishLeadStageChanged(ctx context.Context, event LeadStageChanged) error {
	return p.publish(ctx, Envelope{
		Type:       TypeLeadStageChanged,
		OccurredAt: event.OccurredAt,
		Data:       event,
	})
}

func (p *RedisPublisher) publish(ctx context.Context, env Envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", env.Type, err)
	}
	receivers, err := p.rdb.Publish(ctx, p.channel, raw).Result()
	if err != nil {
		return fmt.Errorf("publish %s event: %w", env.Type, err)
	}
	p.logger.Debug("event published",
		zap.String("type", env.Type),
		zap.String("channel", p.channel),
		zap.Int64("receivers", receivers),
	)
	return nil
}

// Close is a no-op; the redis client is owned by the caller
func (p *RedisPublisher) Close() error {
	return nil
}
