package memory

import (
	"context"
	"sync"
)

// Slot is an in-memory ledger slot for tests and ephemeral runs.
type Slot struct {
	mu   sync.RWMutex
	data []byte
}

// NewSlot constructs an empty slot.
func NewSlot() *Slot {
	return &Slot{}
}

// NewSlotWith constructs a slot holding data.
func NewSlotWith(data []byte) *Slot {
	return &Slot{data: append([]byte(nil), data...)}
}

// Read returns a copy of the stored bytes.
func (s *Slot) Read(ctx context.Context) ([]byte, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, nil
	}
	return append([]byte(nil), s.data...), nil
}

// Write replaces the stored bytes.
func (s *Slot) Write(ctx context.Context, data []byte) error {
	_ = ctx
	copied := append([]byte(nil), data...)
	s.mu.Lock()
	s.data = copied
	s.mu.Unlock()
	return nil
}
