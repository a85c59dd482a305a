package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/amantiwari57/freelance-backend/internal/infrastructure/broker/port"
)

const defaultPollInterval = 500 * time.Millisecond

// RedisListBroker realizes port.Broker on a plain Redis list for deployments
// without a queue server. Publish appends to the list; Subscribe pops from the
// head at a fixed interval, so delivery latency is bounded by the poll
// interval. A handler error pushes the payload back to the head of the list,
// preserving order and yielding at-least-once delivery.
type RedisListBroker struct {
	client   *redis.Client
	interval time.Duration
	log      zerolog.Logger
}

// NewRedisListBrokerFromEnv constructs a broker from REDIS_URL and the
// optional BROKER_POLL_INTERVAL (Go duration string).
func NewRedisListBrokerFromEnv(log zerolog.Logger) (*RedisListBroker, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, errors.New("redislist: REDIS_URL environment variable is not set")
	}
	interval := defaultPollInterval
	if v := os.Getenv("BROKER_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		}
	}
	return NewRedisListBroker(redisURL, interval, log)
}

// NewRedisListBroker constructs a broker from a Redis connection URL.
func NewRedisListBroker(redisURL string, interval time.Duration, log zerolog.Logger) (*RedisListBroker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redislist: parse redis url: %w", err)
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &RedisListBroker{
		client:   redis.NewClient(opt),
		interval: interval,
		log:      log.With().Str("component", "broker.redislist").Logger(),
	}, nil
}

var _ port.Broker = (*RedisListBroker)(nil)

func listKeyFor(channel string) string {
	return "broker:" + channel
}

func (b *RedisListBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	if channel == "" {
		return errors.New("redislist: channel is required")
	}
	if err := b.client.RPush(ctx, listKeyFor(channel), payload).Err(); err != nil {
		return fmt.Errorf("redislist: publish to %q: %w", channel, err)
	}
	return nil
}

// Subscribe polls the channel's list until ctx is canceled. Each tick drains
// the list one element at a time; a handler error stops the drain and returns
// the payload to the head so the next tick retries it in order.
func (b *RedisListBroker) Subscribe(ctx context.Context, channel string, h port.Handler) error {
	if channel == "" {
		return errors.New("redislist: channel is required")
	}
	key := listKeyFor(channel)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.drain(ctx, key, h)
		}
	}
}

func (b *RedisListBroker) drain(ctx context.Context, key string, h port.Handler) {
	for {
		if ctx.Err() != nil {
			return
		}
		payload, err := b.client.LPop(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return
		}
		if err != nil {
			// Connection-level failure; the next tick retries with the
			// client's own reconnect handling.
			b.log.Warn().Err(err).Msg("pop failed, retrying next poll")
			return
		}
		if err := h(ctx, payload); err != nil {
			b.log.Error().Err(err).Msg("handler failed, payload returned to queue")
			if pushErr := b.client.LPush(ctx, key, payload).Err(); pushErr != nil {
				b.log.Error().Err(pushErr).Msg("failed to return payload to queue, payload lost")
			}
			return
		}
	}
}

func (b *RedisListBroker) Close() error {
	return b.client.Close()
}
