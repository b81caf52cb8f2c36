package provider

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps providers in process memory. It backs tests and
// single-node development runs.
type MemoryRepository struct {
	mu        sync.RWMutex
	providers map[uuid.UUID]Provider
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{providers: make(map[uuid.UUID]Provider)}
}

func (r *MemoryRepository) GetProviderByID(_ context.Context, id uuid.UUID) (*Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) ListActiveProviders(_ context.Context) ([]Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []Provider{}
	for _, p := range r.providers {
		if p.IsActive {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *MemoryRepository) CountProviders(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers), nil
}

func (r *MemoryRepository) CreateProvider(_ context.Context, p *Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.providers[p.ID] = *p
	return nil
}

func (r *MemoryRepository) SetProviderActive(_ context.Context, id uuid.UUID, active bool) (*Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, ErrProviderNotFound
	}
	p.IsActive = active
	p.UpdatedAt = time.Now().UTC()
	r.providers[id] = p
	return &p, nil
}
