package store

import (
	"context"
	"sync"

	"github.com/cognicore/stdtext/pkg/stdtext/internalerr"
)

// MemoryStore keeps at most one snapshot in process memory. It backs tests
// and deployments that refit from source on every start.
type MemoryStore struct {
	mu   sync.Mutex
	snap *Snapshot
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// Save replaces the stored snapshot.
func (s *MemoryStore) Save(_ context.Context, snap *Snapshot) error {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return nil
}

// Load returns the stored snapshot or internalerr.ErrNotFound.
func (s *MemoryStore) Load(_ context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil, internalerr.ErrNotFound
	}
	return s.snap, nil
}
