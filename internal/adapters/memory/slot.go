package memory

import (
	"context"
	"sync"

	"github.com/jinwsy/blood-pressure/internal/domain"
)

// Slot implements domain.Slot with in-memory storage
// This is perfect for development and tests - nothing touches disk
type Slot struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewSlot creates an empty in-memory slot
func NewSlot() *Slot {
	return &Slot{
		blobs: make(map[string][]byte),
	}
}

// Load returns a copy of the blob stored under key
func (s *Slot) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, exists := s.blobs[key]
	if !exists {
		return nil, domain.ErrSlotEmpty
	}

	return append([]byte(nil), blob...), nil
}

// Save stores a copy of blob under key
func (s *Slot) Save(ctx context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[key] = append([]byte(nil), blob...)
	return nil
}
