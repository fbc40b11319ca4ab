package storage

import (
	"context"
	"sync"
)

// MemorySlot is an in-process Slot for tests and ephemeral runs. It loses
// its contents at process exit.
type MemorySlot struct {
	mu      sync.Mutex
	data    []byte
	written bool
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Read(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.written {
		return nil, ErrSlotEmpty
	}

	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

func (s *MemorySlot) Write(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make([]byte, len(data))
	copy(s.data, data)
	s.written = true
	return nil
}
