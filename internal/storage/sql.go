package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobads/internal/infrastructure/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type sqlSlot struct {
	db      *sql.DB
	metrics *metrics.SlotMetrics
	tracer  trace.Tracer
}

// NewSQLSlot returns a Slot backed by a one-row kv table. The schema is kept
// portable across the sqlite and mysql drivers, so writes replace the row
// inside a transaction instead of relying on driver-specific upserts.
func NewSQLSlot(db *sql.DB, metrics *metrics.SlotMetrics) (Slot, error) {
	query := `
		CREATE TABLE IF NOT EXISTS slots (
			name VARCHAR(255) NOT NULL PRIMARY KEY,
			value BLOB NOT NULL
		)`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create slots table: %w", err)
	}

	tracer := otel.Tracer("jobads/storage")
	return &sqlSlot{
		db:      db,
		metrics: metrics,
		tracer:  tracer,
	}, nil
}

func (s *sqlSlot) Read(ctx context.Context) ([]byte, error) {
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

	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM slots WHERE name = ?", SlotName).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "empty"
			return nil, ErrSlotEmpty
		}
		status = "error"
		span.RecordError(err)
		return nil, &ReadError{Err: err}
	}

	return value, nil
}

func (s *sqlSlot) Write(ctx context.Context, data []byte) error {
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return &WriteError{Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM slots WHERE name = ?", SlotName); err != nil {
		tx.Rollback()
		status = "error"
		span.RecordError(err)
		return &WriteError{Err: fmt.Errorf("failed to clear slot: %w", err)}
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO slots (name, value) VALUES (?, ?)", SlotName, data); err != nil {
		tx.Rollback()
		status = "error"
		span.RecordError(err)
		return &WriteError{Err: fmt.Errorf("failed to insert slot: %w", err)}
	}

	if err := tx.Commit(); err != nil {
		status = "error"
		span.RecordError(err)
		return &WriteError{Err: fmt.Errorf("failed to commit slot write: %w", err)}
	}

	return nil
}
