package store

import (
	"context"
	"maps"
	"sync"

	"cinema-kiosk/model"
)

// MemoryStore keeps snapshots for the lifetime of the process.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]map[string]model.SeatStatus
	orders    []model.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]map[string]model.SeatStatus)}
}

func (s *MemoryStore) LoadSnapshot(_ context.Context, key string) (map[string]model.SeatStatus, error) {
	key = sanitizeKey(key)
	if key == "" {
		return nil, ErrEmptyKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[key]
	if !ok {
		return nil, nil
	}
	return maps.Clone(snapshot), nil
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, key string, snapshot map[string]model.SeatStatus) error {
	key = sanitizeKey(key)
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[key] = maps.Clone(snapshot)
	return nil
}

func (s *MemoryStore) RememberOrder(_ context.Context, order model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = prependOrder(s.orders, order)
	return nil
}

func (s *MemoryStore) RecentOrders(_ context.Context) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Order(nil), s.orders...), nil
}
