package history

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"grocer/internal/errors"
)

func staticReader(stores ...string) Reader {
	return ReaderFunc(func(ctx context.Context, userID string, limit int) ([]string, error) {
		return stores, nil
	})
}

func TestFavorite(t *testing.T) {
	tests := []struct {
		name   string
		stores []string
		want   string
	}{
		{name: "none", stores: nil, want: ""},
		{name: "single", stores: []string{"SuperMart"}, want: "SuperMart"},
		{name: "majority", stores: []string{"A", "B", "B", "C", "B"}, want: "B"},
		{name: "tie keeps first seen", stores: []string{"A", "B", "B", "A"}, want: "A"},
		{name: "tie keeps first seen reversed", stores: []string{"B", "A", "A", "B", "C"}, want: "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Favorite(tt.stores))
		})
	}
}

func TestResolveSkipsAnonymousUser(t *testing.T) {
	called := false
	r := NewResolver(ReaderFunc(func(ctx context.Context, userID string, limit int) ([]string, error) {
		called = true
		return nil, nil
	}), Options{})

	lookup := r.Resolve(context.Background(), "  ")
	assert.Equal(t, StatusSkipped, lookup.Status)
	assert.False(t, lookup.HasFavorite())
	assert.False(t, called)
}

func TestResolveWithoutReader(t *testing.T) {
	lookup := NewResolver(nil, Options{}).Resolve(context.Background(), "alice")
	assert.Equal(t, StatusEmpty, lookup.Status)
}

func TestResolveEmptyHistory(t *testing.T) {
	lookup := NewResolver(staticReader(), Options{}).Resolve(context.Background(), "alice")
	assert.Equal(t, StatusEmpty, lookup.Status)
	assert.NoError(t, lookup.Err)
}

func TestResolveFavorite(t *testing.T) {
	var gotLimit int
	reader := ReaderFunc(func(ctx context.Context, userID string, limit int) ([]string, error) {
		gotLimit = limit
		return []string{"Wholesale Club", "SuperMart", "Wholesale Club"}, nil
	})

	lookup := NewResolver(reader, Options{}).Resolve(context.Background(), "alice")
	require.True(t, lookup.HasFavorite())
	assert.Equal(t, "Wholesale Club", lookup.Favorite)
	assert.Equal(t, 3, lookup.Records)
	assert.Equal(t, DefaultLimit, gotLimit)
}

func TestResolveTruncatesToLimit(t *testing.T) {
	// a reader that ignores the limit must not widen the window
	reader := staticReader("A", "A", "B", "B", "B")

	lookup := NewResolver(reader, Options{Limit: 3}).Resolve(context.Background(), "alice")
	assert.Equal(t, "A", lookup.Favorite)
	assert.Equal(t, 3, lookup.Records)
}

func TestResolveReaderError(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	reader := ReaderFunc(func(ctx context.Context, userID string, limit int) ([]string, error) {
		return nil, stderrors.New("connection refused")
	})

	lookup := NewResolver(reader, Options{Logger: zap.New(core)}).Resolve(context.Background(), "alice")

	assert.Equal(t, StatusUnavailable, lookup.Status)
	assert.False(t, lookup.HasFavorite())
	assert.True(t, errors.IsType(lookup.Err, errors.TypeHistory))
	assert.Equal(t, 1, logs.FilterMessage("history unavailable, continuing without favorite store").Len())
}

func TestResolveMalformedRecord(t *testing.T) {
	lookup := NewResolver(staticReader("SuperMart", ""), Options{}).Resolve(context.Background(), "alice")
	assert.Equal(t, StatusUnavailable, lookup.Status)
	assert.Error(t, lookup.Err)
}

func TestResolveRecoversPanic(t *testing.T) {
	reader := ReaderFunc(func(ctx context.Context, userID string, limit int) ([]string, error) {
		panic("driver bug")
	})

	lookup := NewResolver(reader, Options{}).Resolve(context.Background(), "alice")
	assert.Equal(t, StatusUnavailable, lookup.Status)
	assert.True(t, errors.IsType(lookup.Err, errors.TypeHistory))
	assert.Contains(t, lookup.Err.Error(), "[INTERNAL_ERROR] history reader panicked: driver bug")
}

func TestResolveTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	defer close(release)

	reader := ReaderFunc(func(ctx context.Context, userID string, limit int) ([]string, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-release:
			return []string{"SuperMart"}, nil
		}
	})

	start := time.Now()
	lookup := NewResolver(reader, Options{Timeout: 20 * time.Millisecond}).Resolve(context.Background(), "alice")

	assert.Equal(t, StatusUnavailable, lookup.Status)
	assert.True(t, stderrors.Is(lookup.Err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), time.Second)
}

func TestResolveTimeoutWithUncooperativeReader(t *testing.T) {
	release := make(chan struct{})
	reader := ReaderFunc(func(ctx context.Context, userID string, limit int) ([]string, error) {
		<-release
		return []string{"SuperMart"}, nil
	})

	lookup := NewResolver(reader, Options{Timeout: 20 * time.Millisecond}).Resolve(context.Background(), "alice")
	close(release)

	assert.Equal(t, StatusUnavailable, lookup.Status)
}

func TestResolveCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := ReaderFunc(func(ctx context.Context, userID string, limit int) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	lookup := NewResolver(reader, Options{}).Resolve(ctx, "alice")
	assert.Equal(t, StatusUnavailable, lookup.Status)
}
