package repository

import (
	"context"
	"fmt"
	"github.com/nikolayk812/storefront/internal/port"
	"slices"
	"sync"
)

type memorySlot struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemorySlot() port.SlotStore {
	return &memorySlot{
		values: make(map[string][]byte),
	}
}

func (s *memorySlot) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, port.ErrSlotNotFound
	}
	return slices.Clone(value), nil
}

func (s *memorySlot) Put(_ context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = slices.Clone(value)
	return nil
}
