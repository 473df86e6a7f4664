package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"grocer/internal/errors"
)

// Dialect selects the SQL driver and placeholder style
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const table = "grocery_lists"

var columns = []string{
	"id", "user_id", "raw_text", "parsed_items", "total_cost",
	"store_recommendation", "confidence_score", "explanation", "status", "created_at",
}

var schemas = map[Dialect]string{
	DialectSQLite: `
	CREATE TABLE IF NOT EXISTS grocery_lists (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		raw_text TEXT NOT NULL,
		parsed_items TEXT NOT NULL,
		total_cost TEXT NOT NULL,
		store_recommendation TEXT NOT NULL,
		confidence_score REAL NOT NULL,
		explanation TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'saved',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_grocery_lists_user ON grocery_lists(user_id, created_at);`,
	DialectPostgres: `
	CREATE TABLE IF NOT EXISTS grocery_lists (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		raw_text TEXT NOT NULL,
		parsed_items JSONB NOT NULL,
		total_cost NUMERIC(14,2) NOT NULL,
		store_recommendation TEXT NOT NULL,
		confidence_score DOUBLE PRECISION NOT NULL,
		explanation TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'saved',
		created_at BIGINT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_grocery_lists_user ON grocery_lists(user_id, created_at);`,
}

// SQLStore keeps lists in a grocery_lists table
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	builder sq.StatementBuilderType
}

var _ Store = (*SQLStore)(nil)

// OpenSQLStore opens a database and ensures the schema exists
func OpenSQLStore(dialect Dialect, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%s backend needs a dsn", dialect)
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, errors.Storage("open database", err)
	}

	store, err := NewSQLStore(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wraps an open database and creates the schema if needed
func NewSQLStore(db *sql.DB, dialect Dialect) (*SQLStore, error) {
	schema, ok := schemas[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}

	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if dialect == DialectPostgres {
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Storage("initialize schema", err)
	}

	return &SQLStore{db: db, dialect: dialect, builder: builder}, nil
}

func (s *SQLStore) Save(ctx context.Context, list *StoredList) error {
	if err := prepare(list); err != nil {
		return err
	}

	items, err := json.Marshal(list.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	query, args, err := s.builder.Insert(table).
		Columns(columns...).
		Values(
			list.ID,
			list.UserID,
			list.RawText,
			string(items),
			list.TotalCost.StringFixed(2),
			list.RecommendedStore,
			list.ConfidenceScore,
			list.Explanation,
			list.Status,
			list.CreatedAt.UnixNano(),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Storage("insert list", err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, filter *ListFilter) ([]*StoredList, error) {
	q := s.builder.Select(columns...).From(table).OrderBy("created_at DESC", "id DESC")
	if filter != nil {
		if filter.UserID != "" {
			q = q.Where(sq.Eq{"user_id": filter.UserID})
		}
		if !filter.Since.IsZero() {
			q = q.Where(sq.GtOrEq{"created_at": filter.Since.UnixNano()})
		}
		if filter.Limit > 0 {
			q = q.Limit(uint64(filter.Limit))
		}
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Storage("query lists", err)
	}
	defer rows.Close()

	var results []*StoredList
	for rows.Next() {
		var (
			list    StoredList
			items   string
			total   decimal.Decimal
			created int64
		)
		if err := rows.Scan(
			&list.ID,
			&list.UserID,
			&list.RawText,
			&items,
			&total,
			&list.RecommendedStore,
			&list.ConfidenceScore,
			&list.Explanation,
			&list.Status,
			&created,
		); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		if err := json.Unmarshal([]byte(items), &list.Items); err != nil {
			return nil, fmt.Errorf("malformed items for list %s: %w", list.ID, err)
		}
		list.TotalCost = total
		list.CreatedAt = time.Unix(0, created).UTC()
		results = append(results, &list)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return results, nil
}

// RecentStores implements history.Reader with a single indexed query
func (s *SQLStore) RecentStores(ctx context.Context, userID string, limit int) ([]string, error) {
	query, args, err := s.builder.
		Select("store_recommendation").
		From(table).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Storage("query history", err)
	}
	defer rows.Close()

	var stores []string
	for rows.Next() {
		var store sql.NullString
		if err := rows.Scan(&store); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if !store.Valid {
			return nil, fmt.Errorf("history record without store")
		}
		stores = append(stores, store.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return stores, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
