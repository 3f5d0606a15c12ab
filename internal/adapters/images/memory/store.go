package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	imagesport "pet-reunite/internal/ports/images"
)

// Store es el image store in-memory para dev y tests.
// Write-once: igual que el store real, un ref no se reescribe.
type Store struct {
	mu    sync.RWMutex
	byRef map[string][]byte
}

func NewStore() *Store {
	return &Store{byRef: make(map[string][]byte)}
}

func (s *Store) Put(ctx context.Context, ref string, data []byte) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return errors.New("image ref required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byRef[ref]; exists {
		return imagesport.ErrExists
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	s.byRef[ref] = cp
	return nil
}

func (s *Store) Get(ctx context.Context, ref string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.byRef[ref]
	if !ok {
		return nil, imagesport.ErrNotFound
	}
	return data, nil
}
