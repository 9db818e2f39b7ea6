package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/rl1809/inheritance/internal/core/domain"
	"github.com/rl1809/inheritance/internal/port"
)

// MemoryAdapter is a process-local LedgerRepository.
type MemoryAdapter struct {
	mu      sync.RWMutex
	ledgers map[string]*domain.Ledger
	events  map[string][]domain.Event
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		ledgers: make(map[string]*domain.Ledger),
		events:  make(map[string][]domain.Event),
	}
}

func (m *MemoryAdapter) Create(ctx context.Context, l domain.Ledger, ev domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ledgers[l.ID]; ok {
		return fmt.Errorf("ledger %s already exists", l.ID)
	}
	m.ledgers[l.ID] = l.Clone()
	m.events[l.ID] = append(m.events[l.ID], ev)
	return nil
}

func (m *MemoryAdapter) Get(ctx context.Context, id string) (*domain.Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.ledgers[id]
	if !ok {
		return nil, nil
	}
	return l.Clone(), nil
}

func (m *MemoryAdapter) Update(ctx context.Context, l domain.Ledger, ev domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.ledgers[l.ID]
	if !ok || cur.Version != l.Version-1 {
		return port.ErrOptimisticLock
	}
	m.ledgers[l.ID] = l.Clone()
	m.events[l.ID] = append(m.events[l.ID], ev)
	return nil
}

func (m *MemoryAdapter) ListEvents(ctx context.Context, id string) ([]domain.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]domain.Event(nil), m.events[id]...), nil
}
