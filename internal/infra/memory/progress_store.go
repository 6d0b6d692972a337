package memory

import (
	"context"
	"sync"

	"reading-hero-service/internal/domain"
)

// ProgressStore keeps progress blobs in a map. Used for local runs and tests;
// nothing survives a restart.
type ProgressStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{blobs: make(map[string][]byte)}
}

func (s *ProgressStore) LoadProgress(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, domain.ErrProgressNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *ProgressStore) SaveProgress(_ context.Context, key string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = buf
	return nil
}
