package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jobads/internal/infrastructure/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type fileSlot struct {
	path    string
	metrics *metrics.SlotMetrics
	tracer  trace.Tracer
}

// NewFileSlot returns a Slot persisted as a single file at path. The parent
// directory is created on first write; writes go through a temp file and
// rename so a crash mid-write cannot leave a torn blob.
func NewFileSlot(path string, metrics *metrics.SlotMetrics) Slot {
	tracer := otel.Tracer("jobads/storage")
	return &fileSlot{
		path:    filepath.Clean(path),
		metrics: metrics,
		tracer:  tracer,
	}
}

func (s *fileSlot) Read(ctx context.Context) ([]byte, error) {
	_, span := s.tracer.Start(ctx, "Slot Read")
	defer span.End()

	span.SetAttributes(attribute.String("slot.path", s.path))

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		s.metrics.OpCount.WithLabelValues("Read", status).Inc()
		s.metrics.OpDuration.WithLabelValues("Read", status).Observe(duration)
	}()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			status = "empty"
			return nil, ErrSlotEmpty
		}
		status = "error"
		span.RecordError(err)
		return nil, &ReadError{Err: err}
	}

	return data, nil
}

func (s *fileSlot) Write(ctx context.Context, data []byte) error {
	_, span := s.tracer.Start(ctx, "Slot Write")
	defer span.End()

	span.SetAttributes(
		attribute.String("slot.path", s.path),
		attribute.Int("slot.bytes", len(data)),
	)

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		s.metrics.OpCount.WithLabelValues("Write", status).Inc()
		s.metrics.OpDuration.WithLabelValues("Write", status).Observe(duration)
	}()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		status = "error"
		span.RecordError(err)
		return &WriteError{Err: fmt.Errorf("failed to create slot directory: %w", err)}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		status = "error"
		span.RecordError(err)
		return &WriteError{Err: err}
	}

	if err := os.Rename(tmp, s.path); err != nil {
		status = "error"
		span.RecordError(err)
		os.Remove(tmp)
		return &WriteError{Err: err}
	}

	return nil
}
