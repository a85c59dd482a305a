package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/amantiwari57/freelance-backend/internal/infrastructure/broker/port"
)

// AsynqBroker realizes port.Broker on github.com/hibiken/asynq with Redis as
// the backing store. Each channel maps to its own asynq queue consumed with
// concurrency 1, which preserves publish order and gives consumer-group style
// at-least-once semantics: a handler error or a crash before completion leads
// to redelivery.
type AsynqBroker struct {
	client   *asynq.Client
	redisOpt asynq.RedisConnOpt
	log      zerolog.Logger
}

// NewAsynqBrokerFromEnv constructs a broker using the REDIS_URL env var.
func NewAsynqBrokerFromEnv(log zerolog.Logger) (*AsynqBroker, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, errors.New("asynq: REDIS_URL environment variable is not set")
	}
	return NewAsynqBroker(redisURL, log)
}

// NewAsynqBroker constructs a broker from a Redis connection URL.
func NewAsynqBroker(redisURL string, log zerolog.Logger) (*AsynqBroker, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("asynq: parse redis url: %w", err)
	}
	return &AsynqBroker{
		client:   asynq.NewClient(opt),
		redisOpt: opt,
		log:      log.With().Str("component", "broker.asynq").Logger(),
	}, nil
}

var _ port.Broker = (*AsynqBroker)(nil)

func taskTypeFor(channel string) string {
	return "broker:" + channel
}

func (b *AsynqBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	if channel == "" {
		return errors.New("asynq: channel is required")
	}
	t := asynq.NewTask(taskTypeFor(channel), payload)
	_, err := b.client.EnqueueContext(ctx, t, asynq.Queue(channel), asynq.MaxRetry(20))
	if err != nil {
		return fmt.Errorf("asynq: publish to %q: %w", channel, err)
	}
	return nil
}

// Subscribe runs an asynq server dedicated to the channel's queue and blocks
// until ctx is canceled. Concurrency is pinned to 1: the fan-out worker relies
// on strictly sequential handling for per-conversation write ordering.
func (b *AsynqBroker) Subscribe(ctx context.Context, channel string, h port.Handler) error {
	if channel == "" {
		return errors.New("asynq: channel is required")
	}

	srv := asynq.NewServer(b.redisOpt, asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{channel: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			b.log.Error().Err(err).Str("task", task.Type()).Msg("task handler failed, will be redelivered")
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(taskTypeFor(channel), func(ctx context.Context, t *asynq.Task) error {
		return h(ctx, t.Payload())
	})

	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("asynq: start subscriber for %q: %w", channel, err)
	}
	<-ctx.Done()
	srv.Shutdown()
	return ctx.Err()
}

func (b *AsynqBroker) Close() error {
	return b.client.Close()
}
