package localstate

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

type memoryRepo struct {
	mu      sync.RWMutex
	entries map[string]map[string][]byte
}

// NewMemory returns a process-local Repository.
func NewMemory() Repository {
	return &memoryRepo{entries: make(map[string]map[string][]byte)}
}

func (r *memoryRepo) Get(_ context.Context, session, name string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.entries[session][name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (r *memoryRepo) Put(_ context.Context, session, name string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bucket, ok := r.entries[session]
	if !ok {
		bucket = make(map[string][]byte)
		r.entries[session] = bucket
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	bucket[name] = stored
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, session, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries[session], name)
	return nil
}
