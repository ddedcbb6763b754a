// Package fs provides a file-based implementation of pagesnap.ArticleCache.
// Entries live one JSON file per key; expiration is evaluated at read time
// and expired files are left on disk — a space/time tradeoff, not a leak.
package fs

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/pagesnap"
)

// Ext is the file extension appended to cache keys.
const Ext = ".json"

// Ensure Cache implements pagesnap.ArticleCache at compile time.
var _ pagesnap.ArticleCache = (*Cache)(nil)

// Cache stores article results as <dir>/<key>.json files. There is no
// in-process locking: concurrent writers for the same key race with
// last-write-wins semantics, which is the documented contract.
type Cache struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for recovered read/decode problems.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithClock overrides the time source. Used in tests to probe the TTL
// boundary without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a Cache rooted at dir. The directory is created lazily
// on the first write.
func NewCache(dir string, opts ...Option) *Cache {
	c := &Cache{
		dir:    dir,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// entry is the persisted wrapper. The timestamp/data pair is the schema
// marker: files written by an older, wrapperless version decode with nil
// fields and are treated as absent rather than failing the request.
type entry struct {
	Timestamp *float64        `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Get returns the entry stored at key if it exists, parses, carries the
// schema marker, and is no older than ttl. Every failure mode degrades to
// a miss; none is ever surfaced as an error.
func (c *Cache) Get(_ context.Context, key string, ttl time.Duration) (*pagesnap.ArticleResult, bool) {
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("failed to read cache entry", "key", key, "err", err)
		}
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.logger.Warn("failed to decode cache entry", "key", key, "err", err)
		return nil, false
	}
	if e.Timestamp == nil || e.Data == nil {
		c.logger.Info("cache entry has old format without timestamp, treating as expired", "key", key)
		return nil, false
	}

	age := c.now().Sub(time.Unix(int64(*e.Timestamp), 0))
	if age > ttl {
		c.logger.Info("cache entry expired", "key", key, "age", age, "ttl", ttl)
		return nil, false
	}

	var result pagesnap.ArticleResult
	if err := json.Unmarshal(e.Data, &result); err != nil {
		c.logger.Warn("failed to decode cached result", "key", key, "err", err)
		return nil, false
	}
	return &result, true
}

// Put stores result at key with the current timestamp, overwriting any
// existing entry.
func (c *Cache) Put(_ context.Context, key string, result *pagesnap.ArticleResult) error {
	ts := float64(c.now().Unix())
	raw, err := json.Marshal(entry{Timestamp: &ts, Data: mustMarshal(result)})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(c.path(key), raw, 0644)
}

// Keys lists every key with an entry file on disk, including expired ones.
// Used to seed the bloom key filter at startup.
func (c *Cache) Keys() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(e.Name(), Ext))
	}
	return keys, nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+Ext)
}

func mustMarshal(result *pagesnap.ArticleResult) json.RawMessage {
	raw, err := json.Marshal(result)
	if err != nil {
		// Unreachable: ArticleResult contains only marshalable fields.
		panic(err)
	}
	return raw
}
