package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/pagesnap"
)

// Ensure Cache implements pagesnap.ArticleCache at compile time.
var _ pagesnap.ArticleCache = (*Cache)(nil)

// Cache stores article results in a single entries table. Like the file
// store, reads recover every failure mode as a miss and writes are
// last-write-wins upserts.
type Cache struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for recovered read problems.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a Cache on top of an open DB.
func NewCache(db *DB, opts ...Option) *Cache {
	c := &Cache{
		db:     db,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the entry stored at key if present, decodable and no older
// than ttl.
func (c *Cache) Get(ctx context.Context, key string, ttl time.Duration) (*pagesnap.ArticleResult, bool) {
	var (
		storedAt int64
		data     []byte
	)
	row := c.db.QueryRowContext(ctx, `SELECT stored_at, data FROM entries WHERE key = ?`, key)
	if err := row.Scan(&storedAt, &data); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.logger.Warn("failed to read cache entry", "key", key, "err", err)
		}
		return nil, false
	}

	age := c.now().Sub(time.Unix(storedAt, 0))
	if age > ttl {
		c.logger.Info("cache entry expired", "key", key, "age", age, "ttl", ttl)
		return nil, false
	}

	var result pagesnap.ArticleResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("failed to decode cached result", "key", key, "err", err)
		return nil, false
	}
	return &result, true
}

// Put upserts result at key with the current timestamp.
func (c *Cache) Put(ctx context.Context, key string, result *pagesnap.ArticleResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO entries (key, stored_at, data) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			stored_at = excluded.stored_at,
			data = excluded.data
	`, key, c.now().Unix(), data)
	return err
}
