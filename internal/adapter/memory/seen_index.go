package memory

import (
	"context"
	"sync"

	"github.com/user/registry-scraper/internal/repository"
)

// SeenIndex is the default run-local dedup set.
type SeenIndex struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

var _ repository.SeenIndex = (*SeenIndex)(nil)

func NewSeenIndex() *SeenIndex {
	return &SeenIndex{seen: make(map[string]struct{})}
}

func (s *SeenIndex) Seen(_ context.Context, registryID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[registryID]
	return ok, nil
}

func (s *SeenIndex) MarkSeen(_ context.Context, registryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[registryID] = struct{}{}
	return nil
}

// Len returns the number of ids marked so far.
func (s *SeenIndex) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
