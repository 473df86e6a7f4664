// Package storage persists finalized recommendations and serves the
// read-only history query the engine uses to find a user's favorite store.
// Supports multiple backends: memory, file, SQLite, PostgreSQL.
package storage

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"grocer/core/history"
	"grocer/core/types"
	"grocer/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendFile     Backend = "file"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// StatusSaved is the default status of a stored list
const StatusSaved = "saved"

// Store is the storage interface
type Store interface {
	history.Reader
	io.Closer

	// Save stores a finalized recommendation
	Save(ctx context.Context, list *StoredList) error

	// List returns stored lists, newest first
	List(ctx context.Context, filter *ListFilter) ([]*StoredList, error)
}

// StoredList is a saved grocery list with its recommendation
type StoredList struct {
	ID               string             `json:"id"`
	UserID           string             `json:"userId"`
	RawText          string             `json:"rawText"`
	Items            []types.ParsedItem `json:"items"`
	TotalCost        decimal.Decimal    `json:"totalCost"`
	RecommendedStore string             `json:"recommendedStore"`
	ConfidenceScore  float64            `json:"confidenceScore"`
	Explanation      string             `json:"explanation"`
	Status           string             `json:"status"`
	CreatedAt        time.Time          `json:"createdAt"`
}

// FromRecommendation builds a StoredList for a user. Items may have been edited
// by the caller before saving.
func FromRecommendation(userID, rawText string, rec *types.Recommendation) *StoredList {
	return &StoredList{
		UserID:           userID,
		RawText:          rawText,
		Items:            rec.Items,
		TotalCost:        rec.TotalEstimatedCost,
		RecommendedStore: rec.RecommendedStore,
		ConfidenceScore:  rec.ConfidenceScore,
		Explanation:      rec.Explanation,
		Status:           StatusSaved,
	}
}

// ListFilter filters result listing
type ListFilter struct {
	UserID string
	Since  time.Time
	Limit  int
}

func (f *ListFilter) matches(list *StoredList) bool {
	if f == nil {
		return true
	}
	if f.UserID != "" && list.UserID != f.UserID {
		return false
	}
	if !f.Since.IsZero() && list.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}

func (f *ListFilter) limit() int {
	if f == nil {
		return 0
	}
	return f.Limit
}

// prepare fills the generated fields of a list about to be saved
func prepare(list *StoredList) error {
	if list == nil {
		return errors.Input("nil list")
	}
	if list.UserID == "" {
		return errors.Input("list has no user")
	}
	if list.RecommendedStore == "" {
		return errors.Input("list has no recommended store")
	}
	if list.ID == "" {
		list.ID = uuid.New().String()
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now().UTC()
	}
	if list.Status == "" {
		list.Status = StatusSaved
	}
	if list.Items == nil {
		list.Items = []types.ParsedItem{}
	}
	return nil
}

// newestFirst sorts by creation time, breaking ties by insertion order
func newestFirst(lists []*StoredList, seq map[string]int) {
	sort.SliceStable(lists, func(i, j int) bool {
		if !lists[i].CreatedAt.Equal(lists[j].CreatedAt) {
			return lists[i].CreatedAt.After(lists[j].CreatedAt)
		}
		return seq[lists[i].ID] > seq[lists[j].ID]
	})
}

func storeNames(lists []*StoredList) []string {
	names := make([]string, len(lists))
	for i, l := range lists {
		names[i] = l.RecommendedStore
	}
	return names
}

// StoreFactory creates stores by backend type
func StoreFactory(backend Backend, config map[string]string) (Store, error) {
	switch backend {
	case BackendFile:
		path := config["path"]
		if path == "" {
			path = ".grocer"
		}
		return NewFileStore(path)
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendSQLite, BackendPostgres:
		return OpenSQLStore(Dialect(backend), config["dsn"])
	default:
		return nil, errors.Config("unsupported history backend %q", backend)
	}
}
