package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS request (
	url     TEXT PRIMARY KEY,
	created INTEGER NOT NULL,
	content BLOB NOT NULL
)`

// SQLiteCache stores documents in a local SQLite database.
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// SQLiteOption configures a SQLiteCache.
type SQLiteOption func(*SQLiteCache)

// WithSQLiteTTL sets how long entries stay valid.
func WithSQLiteTTL(ttl time.Duration) SQLiteOption {
	return func(c *SQLiteCache) {
		c.ttl = ttl
	}
}

// withSQLiteNow overrides the time source (tests only).
func withSQLiteNow(now func() time.Time) SQLiteOption {
	return func(c *SQLiteCache) {
		c.now = now
	}
}

// NewSQLiteCache opens (creating if needed) the cache database at path.
func NewSQLiteCache(path string, opts ...SQLiteOption) (*SQLiteCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	// One connection avoids "database is locked" between our own writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close() // Best-effort close on schema failure
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	c := &SQLiteCache{
		db:  db,
		ttl: DefaultTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the cached document for key if present and not expired.
func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		created int64
		content []byte
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT created, content FROM request WHERE url = ?", key).Scan(&created, &content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite cache get: %w", err)
	}

	if c.ttl > 0 && c.now().Sub(time.Unix(created, 0)) > c.ttl {
		return nil, false, nil
	}
	return content, true, nil
}

// Set stores value under key, replacing any previous entry.
func (c *SQLiteCache) Set(ctx context.Context, key string, value []byte) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO request (url, created, content) VALUES (?, ?, ?)",
		key, c.now().Unix(), value)
	if err != nil {
		return fmt.Errorf("sqlite cache set: %w", err)
	}
	return nil
}

// Purge removes expired entries and returns how many were deleted.
func (c *SQLiteCache) Purge(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	cutoff := c.now().Add(-c.ttl).Unix()
	res, err := c.db.ExecContext(ctx, "DELETE FROM request WHERE created < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("sqlite cache purge: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
