package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/baldhumanity/encog-neat/neat"
)

// MemoryStore keeps encoded snapshots in a map. Snapshots go through the
// codec so that callers never share state with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	populations map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.populations = make(map[string][]byte)
	return nil
}

func (s *MemoryStore) SavePopulation(_ context.Context, snapshot *neat.Snapshot) error {
	payload, err := EncodePopulation(snapshot)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.populations[snapshot.RunID] = payload
	return nil
}

func (s *MemoryStore) GetPopulation(_ context.Context, runID string) (*neat.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil, false, errors.New("store is not initialized")
	}

	payload, ok := s.populations[runID]
	if !ok {
		return nil, false, nil
	}
	snapshot, err := DecodePopulation(payload)
	if err != nil {
		return nil, false, err
	}
	return snapshot, true, nil
}

func (s *MemoryStore) DeletePopulation(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.populations, runID)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
