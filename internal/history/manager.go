package history

import (
	"context"
	"sync"
)

// Manager hands out one Store per owner, loading each lazily from the
// shared persistence adapter. Anonymous sessions get distinct cookie-based
// owner ids, so two browsers never share a store.
type Manager struct {
	mu      sync.Mutex
	stores  map[string]*Store
	persist Persistence
	remote  Remote
	ranker  Ranker
}

func NewManager(persist Persistence, remote Remote, ranker Ranker) *Manager {
	return &Manager{
		stores:  make(map[string]*Store),
		persist: persist,
		remote:  remote,
		ranker:  ranker,
	}
}

func (m *Manager) ForOwner(ctx context.Context, ownerID string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stores[ownerID]; ok {
		return s, nil
	}
	s, err := NewStore(ctx, ownerID, m.persist, m.remote, m.ranker)
	if err != nil {
		return nil, err
	}
	m.stores[ownerID] = s
	return s, nil
}
