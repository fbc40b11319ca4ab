// Package storage provides the single durable slot backing the
// advertisement list. The whole list is persisted as one serialized blob
// under one name; there is no per-record storage.
package storage

import (
	"context"
	"errors"
)

// SlotName is the one key the service persists under.
const SlotName = "advertisements"

// ErrSlotEmpty reports that the slot has never been written. It is a normal
// first-run condition, not a fault.
var ErrSlotEmpty = errors.New("durable slot is empty")

// Slot is one named durable location holding a single blob. Implementations
// classify failures as *ReadError or *WriteError so callers can tell a
// corrupted-or-unreachable read from a lost write.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// ReadError wraps a durable read or decode failure.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string { return "slot read failed: " + e.Err.Error() }
func (e *ReadError) Unwrap() error { return e.Err }

// WriteError wraps a durable write failure. State written before the failure
// remains authoritative.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return "slot write failed: " + e.Err.Error() }
func (e *WriteError) Unwrap() error { return e.Err }
