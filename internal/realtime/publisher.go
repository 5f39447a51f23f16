package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/clinicdesk/clinicdesk/internal/events"
	"github.com/clinicdesk/clinicdesk/internal/observability/metrics"
)

const (
	channelPrefix = "appointments:"
	recentPrefix  = "notifications:"

	recentTTL = 7 * 24 * time.Hour
)

// Channel returns the pub/sub channel carrying one doctor's events.
func Channel(doctorID string) string {
	return channelPrefix + doctorID
}

func recentKey(doctorID string) string {
	return recentPrefix + doctorID
}

// Publisher fans appointment events out to per-doctor Redis channels and
// keeps a short recent-events list for reconnecting clients.
type Publisher struct {
	redis     *redis.Client
	metrics   *metrics.BookingMetrics
	tracer    trace.Tracer
	maxRecent int64
}

// NewPublisher creates a publisher. A nil redis client yields a no-op
// publisher so callers need no guards.
func NewPublisher(redisClient *redis.Client) *Publisher {
	if redisClient == nil {
		return nil
	}
	return &Publisher{
		redis:     redisClient,
		tracer:    otel.Tracer("clinicdesk.internal.realtime"),
		maxRecent: 50,
	}
}

// WithMetrics registers realtime event metrics.
func (p *Publisher) WithMetrics(m *metrics.BookingMetrics) *Publisher {
	if p != nil {
		p.metrics = m
	}
	return p
}

// Publish sends the envelope to the doctor's channel and appends it to
// the recent list. Subscribers are expected to refetch on receipt; the
// payload is advisory.
func (p *Publisher) Publish(ctx context.Context, doctorID string, env events.Envelope) error {
	if p == nil || p.redis == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if doctorID == "" {
		return errors.New("realtime: doctorID required")
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("realtime: marshal envelope: %w", err)
	}

	ctx, span := p.tracer.Start(ctx, "realtime.publish")
	defer span.End()

	key := recentKey(doctorID)
	pipe := p.redis.TxPipeline()
	pipe.Publish(ctx, Channel(doctorID), data)
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, p.maxRecent-1)
	pipe.Expire(ctx, key, recentTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("realtime: publish event: %w", err)
	}

	p.metrics.ObserveRealtimeEvent(env.EventType)
	return nil
}

// Recent returns the doctor's latest events, newest first.
func (p *Publisher) Recent(ctx context.Context, doctorID string, limit int64) ([]events.Envelope, error) {
	if p == nil || p.redis == nil {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if doctorID == "" {
		return nil, errors.New("realtime: doctorID required")
	}
	if limit <= 0 || limit > p.maxRecent {
		limit = p.maxRecent
	}

	ctx, span := p.tracer.Start(ctx, "realtime.recent")
	defer span.End()

	raw, err := p.redis.LRange(ctx, recentKey(doctorID), 0, limit-1).Result()
	if err != nil {
		span.RecordError(err)
		if err == redis.Nil {
			return []events.Envelope{}, nil
		}
		return nil, fmt.Errorf("realtime: list recent events: %w", err)
	}

	out := make([]events.Envelope, 0, len(raw))
	for _, item := range raw {
		var env events.Envelope
		if err := json.Unmarshal([]byte(item), &env); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, env)
	}
	return out, nil
}

// Subscribe opens a pub/sub subscription on the doctor's channel. The
// caller owns closing it.
func (p *Publisher) Subscribe(ctx context.Context, doctorID string) *redis.PubSub {
	if p == nil || p.redis == nil {
		return nil
	}
	return p.redis.Subscribe(ctx, Channel(doctorID))
}
