// Package history is the durable clipboard history: a SQLite row table with an
// FTS5 index kept in step by triggers, plus small settings and ignored-app
// tables.
//
// A Store is safe for concurrent use. Every write runs inside a transaction
// under one mutex over a single pooled connection, so a dedup check and the
// insert or refresh it decides on are atomic relative to other writers.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"go.klb.dev/clipstream/internal/content"
)

//go:embed schema.sql
var schemaSQL string

// DefaultSearchLimit is used when a search asks for zero or fewer results.
const DefaultSearchLimit = 50

var (
	ErrNotFound         = errors.New("entry not found")
	ErrEmptyContent     = errors.New("content is empty")
	ErrDuplicateContent = errors.New("content already exists in another entry")
	ErrEmptyKey         = errors.New("key is empty")
)

// StorageError is an I/O or constraint failure reported by the database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "history: " + e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) || errors.Is(err, ErrNotFound) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// Entry is one clipboard history record.
type Entry struct {
	ID          int64        `json:"id"`
	Content     string       `json:"content"`
	SourceApp   *string      `json:"source_app,omitempty"`
	ContentType content.Kind `json:"content_type"`
	CreatedAt   time.Time    `json:"created_at"`
	IsPinned    bool         `json:"is_pinned"`
	// Image is the PNG payload of image entries. Only Get loads it.
	Image []byte `json:"image,omitempty"`
}

type entryRow struct {
	bun.BaseModel `bun:"table:clipboard_history,alias:h"`

	ID          int64          `bun:"id,pk,autoincrement"`
	Content     string         `bun:"content,notnull"`
	SourceApp   sql.NullString `bun:"source_app"`
	ContentType string         `bun:"content_type,notnull"`
	CreatedAt   int64          `bun:"created_at,notnull"`
	IsPinned    bool           `bun:"is_pinned,notnull"`
	ImageData   []byte         `bun:"image_data"`
}

func (r *entryRow) entry() Entry {
	e := Entry{
		ID:          r.ID,
		Content:     r.Content,
		ContentType: content.ParseKind(r.ContentType),
		CreatedAt:   time.Unix(0, r.CreatedAt),
		IsPinned:    r.IsPinned,
		Image:       r.ImageData,
	}
	if r.SourceApp.Valid {
		s := r.SourceApp.String
		e.SourceApp = &s
	}
	return e
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now as the source of entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the clipboard history database.
type Store struct {
	db   *bun.DB
	path string
	now  func() time.Time

	// mu serialises writers.
	mu sync.Mutex
}

// Open opens (creating if needed) the history database at path.
func Open(path string, opts ...Option) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, pragma := range pragmas {
		if _, err := sqldb.Exec(pragma); err != nil {
			_ = sqldb.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := sqldb.Exec(schemaSQL); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s := &Store{
		db:   bun.NewDB(sqldb, sqlitedialect.New()),
		path: path,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// write runs fn in a transaction while holding the writer lock.
func (s *Store) write(ctx context.Context, op string, fn func(ctx context.Context, tx bun.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.RunInTx(ctx, nil, fn)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmptyContent) || errors.Is(err, ErrEmptyKey) {
		return err
	}
	return storageErr(op, err)
}
