package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"grocer/internal/errors"
)

// FileStore is a file-based storage backend. Each saved list is one JSON
// document at <base>/<user>/<id>.json.
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file store
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (s *FileStore) userDir(userID string) string {
	return filepath.Join(s.basePath, url.PathEscape(userID))
}

func (s *FileStore) Save(ctx context.Context, list *StoredList) error {
	if err := prepare(list); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.userDir(list.UserID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create user directory: %w", err)
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal list: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, list.ID+".json"), data, 0644); err != nil {
		return errors.Storage("write list", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context, filter *ListFilter) ([]*StoredList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var dirs []string
	if filter != nil && filter.UserID != "" {
		dirs = []string{s.userDir(filter.UserID)}
	} else {
		entries, err := os.ReadDir(s.basePath)
		if err != nil {
			return nil, errors.Storage("read storage", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				dirs = append(dirs, filepath.Join(s.basePath, entry.Name()))
			}
		}
	}

	var results []*StoredList
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lists, err := readDir(dir)
		if err != nil {
			return nil, err
		}
		for _, list := range lists {
			if filter.matches(list) {
				results = append(results, list)
			}
		}
	}

	newestFirst(results, nil)
	if n := filter.limit(); n > 0 && n < len(results) {
		results = results[:n]
	}
	return results, nil
}

func readDir(dir string) ([]*StoredList, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var lists []*StoredList
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		var list StoredList
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("malformed record %s: %w", path, err)
		}
		lists = append(lists, &list)
	}
	return lists, nil
}

// RecentStores implements history.Reader
func (s *FileStore) RecentStores(ctx context.Context, userID string, limit int) ([]string, error) {
	lists, err := s.List(ctx, &ListFilter{UserID: userID, Limit: limit})
	if err != nil {
		return nil, err
	}
	return storeNames(lists), nil
}

func (s *FileStore) Close() error {
	return nil
}
