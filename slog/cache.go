package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagesnap"
)

// Ensure LoggingCache implements pagesnap.ArticleCache.
var _ pagesnap.ArticleCache = (*LoggingCache)(nil)

// LoggingCache wraps an ArticleCache with debug logging.
type LoggingCache struct {
	next   pagesnap.ArticleCache
	logger *slog.Logger
}

// NewLoggingCache creates a new LoggingCache.
func NewLoggingCache(next pagesnap.ArticleCache, logger *slog.Logger) *LoggingCache {
	return &LoggingCache{next: next, logger: logger}
}

// Get logs the lookup outcome and delegates to the wrapped cache.
func (c *LoggingCache) Get(ctx context.Context, key string, ttl time.Duration) (result *pagesnap.ArticleResult, ok bool) {
	defer func(begin time.Time) {
		c.logger.Info("cache get",
			"key", key,
			"hit", ok,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return c.next.Get(ctx, key, ttl)
}

// Put logs the write and delegates to the wrapped cache.
func (c *LoggingCache) Put(ctx context.Context, key string, result *pagesnap.ArticleResult) (err error) {
	defer func(begin time.Time) {
		c.logger.Info("cache put",
			"key", key,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Put(ctx, key, result)
}
