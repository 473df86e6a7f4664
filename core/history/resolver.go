// Package history derives a user's favorite store from their recent
// recommendations. The read is best effort: a failure degrades to "no favorite"
// and never blocks a recommendation beyond the configured timeout.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"grocer/internal/errors"
)

// DefaultLimit is how many recent recommendations are considered.
const DefaultLimit = 5

// DefaultTimeout bounds the history read.
const DefaultTimeout = 2 * time.Second

// Reader returns up to limit recommended store names for a user, newest first.
type Reader interface {
	RecentStores(ctx context.Context, userID string, limit int) ([]string, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(ctx context.Context, userID string, limit int) ([]string, error)

// RecentStores calls f.
func (f ReaderFunc) RecentStores(ctx context.Context, userID string, limit int) ([]string, error) {
	return f(ctx, userID, limit)
}

// Status describes how a lookup ended.
type Status int

const (
	// StatusSkipped means no user was given.
	StatusSkipped Status = iota
	// StatusEmpty means the user has no history yet.
	StatusEmpty
	// StatusUnavailable means history could not be read.
	StatusUnavailable
	// StatusResolved means a favorite store was found.
	StatusResolved
)

// String returns string representation
func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusEmpty:
		return "empty"
	case StatusUnavailable:
		return "unavailable"
	case StatusResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Lookup is the outcome of resolving a favorite store.
type Lookup struct {
	Status   Status
	Favorite string
	Records  int

	// Err is set when Status is StatusUnavailable.
	Err error
}

// HasFavorite reports whether a favorite store was resolved.
func (l Lookup) HasFavorite() bool {
	return l.Status == StatusResolved && l.Favorite != ""
}

// Options configures a Resolver.
type Options struct {
	Limit   int
	Timeout time.Duration
	Logger  *zap.Logger
}

// Resolver computes favorite stores from a Reader.
type Resolver struct {
	reader  Reader
	limit   int
	timeout time.Duration
	logger  *zap.Logger
}

// NewResolver creates a resolver. A nil reader resolves every user to
// StatusEmpty.
func NewResolver(reader Reader, opts Options) *Resolver {
	r := &Resolver{
		reader:  reader,
		limit:   opts.Limit,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
	if r.limit <= 0 {
		r.limit = DefaultLimit
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

type readResult struct {
	stores []string
	err    error
}

// Resolve looks up the user's favorite store.
func (r *Resolver) Resolve(ctx context.Context, userID string) Lookup {
	if strings.TrimSpace(userID) == "" {
		return Lookup{Status: StatusSkipped}
	}
	if r.reader == nil {
		return Lookup{Status: StatusEmpty}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan readResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- readResult{err: errors.Internal("history reader panicked", fmt.Errorf("%v", p))}
			}
		}()
		stores, err := r.reader.RecentStores(ctx, userID, r.limit)
		done <- readResult{stores: stores, err: err}
	}()

	var res readResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	if res.err != nil {
		return r.unavailable(userID, errors.History("read recent stores", res.err))
	}

	if len(res.stores) > r.limit {
		res.stores = res.stores[:r.limit]
	}
	for i, store := range res.stores {
		if strings.TrimSpace(store) == "" {
			return r.unavailable(userID, errors.Newf(errors.TypeHistory, "record %d has no store name", i))
		}
	}

	favorite := Favorite(res.stores)
	if favorite == "" {
		return Lookup{Status: StatusEmpty}
	}

	r.logger.Debug("favorite store resolved",
		zap.String("user", userID),
		zap.String("store", favorite),
		zap.Int("records", len(res.stores)))

	return Lookup{Status: StatusResolved, Favorite: favorite, Records: len(res.stores)}
}

func (r *Resolver) unavailable(userID string, err error) Lookup {
	r.logger.Warn("history unavailable, continuing without favorite store",
		zap.String("user", userID),
		zap.Error(err))
	return Lookup{Status: StatusUnavailable, Err: err}
}

// Favorite returns the most frequent store. Names are visited in order of first
// appearance and a later name replaces the incumbent only with a strictly
// greater count, so ties go to the store seen first (the most recent).
func Favorite(stores []string) string {
	counts := make(map[string]int, len(stores))
	var order []string
	for _, store := range stores {
		if counts[store] == 0 {
			order = append(order, store)
		}
		counts[store]++
	}

	favorite := ""
	for _, store := range order {
		if favorite == "" || counts[store] > counts[favorite] {
			favorite = store
		}
	}
	return favorite
}
