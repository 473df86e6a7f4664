package storage

import (
	"context"
	"sync"

	"grocer/core/types"
)

// MemoryStore is an in-memory storage backend (for testing)
type MemoryStore struct {
	lists []*StoredList
	seq   map[string]int
	mu    sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seq: make(map[string]int)}
}

func (s *MemoryStore) Save(ctx context.Context, list *StoredList) error {
	if err := prepare(list); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *list
	stored.Items = append([]types.ParsedItem(nil), list.Items...)
	s.seq[stored.ID] = len(s.lists)
	s.lists = append(s.lists, &stored)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, filter *ListFilter) ([]*StoredList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*StoredList
	for _, list := range s.lists {
		if filter.matches(list) {
			copied := *list
			results = append(results, &copied)
		}
	}

	newestFirst(results, s.seq)
	if n := filter.limit(); n > 0 && n < len(results) {
		results = results[:n]
	}
	return results, nil
}

// RecentStores implements history.Reader
func (s *MemoryStore) RecentStores(ctx context.Context, userID string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lists, err := s.List(ctx, &ListFilter{UserID: userID, Limit: limit})
	if err != nil {
		return nil, err
	}
	return storeNames(lists), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
