package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// SchemaVersion identifies the on-disk layout. It is part of the cache file
// name, so files written by other versions are detected and removed on activation.
const SchemaVersion = "v1"

// DefaultQueryTimeout bounds a single store operation.
const DefaultQueryTimeout = 10 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS responses (
	key           TEXT PRIMARY KEY,
	method        TEXT NOT NULL,
	url           TEXT NOT NULL,
	status        INTEGER NOT NULL,
	header        BLOB NOT NULL,
	body          BLOB NOT NULL,
	etag          TEXT NOT NULL DEFAULT '',
	last_modified TEXT NOT NULL DEFAULT '',
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS responses_updated_at ON responses (updated_at);
`

// SQLiteStore is a [Store] in a single SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	closed atomic.Bool
}

// OpenSQLite opens or creates the store at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema in %s: %w", path, err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database file.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Get implements [Store].
func (s *SQLiteStore) Get(ctx context.Context, key string) (*Entry, bool, error) {
	if s.closed.Load() {
		return nil, false, ErrClosed
	}
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	e := Entry{Key: key}
	var header []byte
	var created, updated int64
	err := s.db.QueryRowContext(ctx,
		`SELECT method, url, status, header, body, etag, last_modified, created_at, updated_at
		 FROM responses WHERE key = ?`, key).
		Scan(&e.Method, &e.URL, &e.Status, &header, &e.Body, &e.ETag, &e.LastModified, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(header, &e.Header); err != nil {
		// unreadable row, treat as a miss and let the next Set replace it
		return nil, false, nil
	}
	if e.Header == nil {
		e.Header = http.Header{}
	}
	e.CreatedAt = time.Unix(0, created)
	e.UpdatedAt = time.Unix(0, updated)
	return &e, true, nil
}

// Set implements [Store]. Zero timestamps are set to the current time.
func (s *SQLiteStore) Set(ctx context.Context, e *Entry) error {
	if s.closed.Load() {
		return ErrClosed
	}
	header, err := json.Marshal(e.Header)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	now := time.Now()
	created, updated := e.CreatedAt, e.UpdatedAt
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = now
	}
	body := e.Body
	if body == nil {
		body = []byte{}
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO responses (key, method, url, status, header, body, etag, last_modified, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET
		   method = excluded.method, url = excluded.url, status = excluded.status,
		   header = excluded.header, body = excluded.body, etag = excluded.etag,
		   last_modified = excluded.last_modified, updated_at = excluded.updated_at`,
		e.Key, e.Method, e.URL, e.Status, header, body, e.ETag, e.LastModified,
		created.UnixNano(), updated.UnixNano())
	if err != nil {
		return fmt.Errorf("set %s: %w", e.Key, err)
	}
	return nil
}

// Touch implements [Store].
func (s *SQLiteStore) Touch(ctx context.Context, key string, at time.Time) error {
	return s.exec(ctx, "touch "+key, `UPDATE responses SET updated_at = ? WHERE key = ?`, at.UnixNano(), key)
}

// Delete implements [Store].
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	return s.exec(ctx, "delete "+key, `DELETE FROM responses WHERE key = ?`, key)
}

// Prune implements [Store].
func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()
	res, err := s.db.ExecContext(ctx, `DELETE FROM responses WHERE updated_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Len implements [Store].
func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Close implements [Store]. Calling Close more than once is a no-op.
func (s *SQLiteStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) exec(ctx context.Context, op, query string, args ...any) error {
	if s.closed.Load() {
		return ErrClosed
	}
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)
