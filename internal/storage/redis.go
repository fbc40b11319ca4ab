package storage

import (
	"context"
	"errors"
	"time"

	"jobads/internal/infrastructure/metrics"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type redisSlot struct {
	client  *redis.Client
	metrics *metrics.SlotMetrics
	tracer  trace.Tracer
}

// NewRedisSlot returns a Slot stored as a single Redis key with no
// expiration.
func NewRedisSlot(client *redis.Client, metrics *metrics.SlotMetrics) Slot {
	tracer := otel.Tracer("jobads/storage")
	return &redisSlot{
		client:  client,
		metrics: metrics,
		tracer:  tracer,
	}
}

func (s *redisSlot) Read(ctx context.Context) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "Slot Read")
	defer span.End()

	span.SetAttributes(attribute.String("slot.name", SlotName))

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		s.metrics.OpCount.WithLabelValues("Read", status).Inc()
		s.metrics.OpDuration.WithLabelValues("Read", status).Observe(duration)
	}()

	data, err := s.client.Get(ctx, SlotName).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			status = "empty"
			return nil, ErrSlotEmpty
		}
		status = "error"
		span.RecordError(err)
		return nil, &ReadError{Err: err}
	}

	return data, nil
}

func (s *redisSlot) Write(ctx context.Context, data []byte) error {
	ctx, span := s.tracer.Start(ctx, "Slot Write")
	defer span.End()

	span.SetAttributes(
		attribute.String("slot.name", SlotName),
		attribute.Int("slot.bytes", len(data)),
	)

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		s.metrics.OpCount.WithLabelValues("Write", status).Inc()
		s.metrics.OpDuration.WithLabelValues("Write", status).Observe(duration)
	}()

	if err := s.client.Set(ctx, SlotName, data, 0).Err(); err != nil {
		status = "error"
		span.RecordError(err)
		return &WriteError{Err: err}
	}

	return nil
}
