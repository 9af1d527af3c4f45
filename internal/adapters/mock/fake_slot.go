package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/jinwsy/blood-pressure/internal/adapters/memory"
)

// ErrQuotaExceeded simulates a full storage device
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// FakeSlot wraps an in-memory slot and can inject failures
// This implements the domain.Slot interface
type FakeSlot struct {
	*memory.Slot

	mu      sync.Mutex
	saveErr error
	loadErr error
	saves   int
}

// NewFakeSlot creates a fake slot that behaves like memory.Slot until told to fail
func NewFakeSlot() *FakeSlot {
	return &FakeSlot{Slot: memory.NewSlot()}
}

// FailSaves makes every following Save return err; nil restores normal saves
func (s *FakeSlot) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// FailLoads makes every following Load return err
func (s *FakeSlot) FailLoads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

// Saves returns how many saves succeeded
func (s *FakeSlot) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Load returns the injected error or the stored blob
func (s *FakeSlot) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	err := s.loadErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Slot.Load(ctx, key)
}

// Save returns the injected error or stores blob
func (s *FakeSlot) Save(ctx context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	return s.Slot.Save(ctx, key, blob)
}
