package event

import (
	"context"
	"fmt"

	"github.com/obra/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultReceiptStream is the Redis stream receipt events are appended to
const DefaultReceiptStream = "obra:receipt-events"

// defaultStreamMaxLen caps the stream with approximate trimming
const defaultStreamMaxLen = 10000

// RedisStreamPublisher forwards domain events to a Redis stream so other
// processes can follow the receipt lifecycle with XREAD or consumer groups.
type RedisStreamPublisher struct {
	client     redis.UniversalClient
	serializer *EventSerializer
	stream     string
	maxLen     int64
	logger     *zap.Logger
}

// StreamOption configures a RedisStreamPublisher
type StreamOption func(*RedisStreamPublisher)

// WithStream overrides the stream key
func WithStream(name string) StreamOption {
	return func(p *RedisStreamPublisher) {
		if name != "" {
			p.stream = name
		}
	}
}

// WithMaxLen overrides the approximate stream length cap; 0 disables trimming
func WithMaxLen(n int64) StreamOption {
	return func(p *RedisStreamPublisher) {
		p.maxLen = n
	}
}

// NewRedisStreamPublisher creates a handler appending events to a Redis stream
func NewRedisStreamPublisher(client redis.UniversalClient, serializer *EventSerializer, logger *zap.Logger, opts ...StreamOption) *RedisStreamPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &RedisStreamPublisher{
		client:     client,
		serializer: serializer,
		stream:     DefaultReceiptStream,
		maxLen:     defaultStreamMaxLen,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EventTypes returns nil: the publisher forwards every event
func (p *RedisStreamPublisher) EventTypes() []string {
	return nil
}

// Handle appends the event envelope to the stream
func (p *RedisStreamPublisher) Handle(ctx context.Context, event shared.DomainEvent) error {
	args, err := p.xaddArgs(event)
	if err != nil {
		return err
	}
	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to append %s to stream %s: %w", event.EventType(), p.stream, err)
	}
	p.logger.Debug("event appended to stream",
		zap.String("stream", p.stream),
		zap.String("entry_id", id),
		zap.String("event_type", event.EventType()),
	)
	return nil
}

func (p *RedisStreamPublisher) xaddArgs(event shared.DomainEvent) (*redis.XAddArgs, error) {
	env, err := p.serializer.Encode(event)
	if err != nil {
		return nil, err
	}
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"id":             env.ID.String(),
			"type":           env.Type,
			"aggregate_type": env.AggregateType,
			"aggregate_id":   env.AggregateID.String(),
			"occurred_at":    env.OccurredAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			"payload":        string(env.Payload),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	return args, nil
}
